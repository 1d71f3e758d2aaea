// Package reliability backs up the three sqlite databases (ledger, cache,
// portfolio) using VACUUM INTO, verifies backups by reopening them and
// running an integrity check, and ships the daily backup tier to an
// S3-compatible bucket (Cloudflare R2) for off-host durability.
package reliability

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/database"
)

// DatabaseMetadata describes one database's on-disk backup.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupService manages local, tiered backups of the process's sqlite
// databases: hourly (ledger only, the append-only activity log), daily (all
// three), weekly, and monthly, each with its own retention window.
type BackupService struct {
	databases map[string]*database.DB
	backupDir string
	log       zerolog.Logger
}

// NewBackupService builds a BackupService over the given named databases,
// writing backups under backupDir/{hourly,daily,weekly,monthly}.
func NewBackupService(databases map[string]*database.DB, backupDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		backupDir: backupDir,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the configured database names in a stable order.
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HourlyBackup backs up ledger.db only, verifies it, and rotates backups
// older than 24 hours.
func (s *BackupService) HourlyBackup() error {
	s.log.Info().Msg("starting hourly backup")

	hourlyDir := filepath.Join(s.backupDir, "hourly")
	if err := os.MkdirAll(hourlyDir, 0755); err != nil {
		return fmt.Errorf("reliability: create hourly backup dir: %w", err)
	}

	backupPath := filepath.Join(hourlyDir, fmt.Sprintf("ledger_%s.db", time.Now().Format("2006-01-02_15")))
	if err := s.BackupDatabase("ledger", backupPath); err != nil {
		return fmt.Errorf("reliability: backup ledger: %w", err)
	}
	if err := s.VerifyBackup(backupPath); err != nil {
		os.Remove(backupPath)
		return fmt.Errorf("reliability: verify ledger backup: %w", err)
	}

	s.rotateByModTime(hourlyDir, 24*time.Hour, false)
	s.log.Info().Str("path", backupPath).Msg("hourly backup completed")
	return nil
}

// DailyBackup backs up every configured database into a dated directory,
// verifies each, and rotates directories older than 30 days.
func (s *BackupService) DailyBackup() (map[string]DatabaseMetadata, error) {
	s.log.Info().Msg("starting daily backup")

	dailyDir := filepath.Join(s.backupDir, "daily", time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("reliability: create daily backup dir: %w", err)
	}

	metadata := s.backupAllInto(dailyDir)
	s.rotateDirsByDateName(filepath.Join(s.backupDir, "daily"), "2006-01-02", 30*24*time.Hour)

	s.log.Info().Str("dir", dailyDir).Msg("daily backup completed")
	return metadata, nil
}

// WeeklyBackup backs up every configured database into an ISO-week-keyed
// directory and rotates directories older than 12 weeks.
func (s *BackupService) WeeklyBackup() error {
	s.log.Info().Msg("starting weekly backup")

	year, week := time.Now().ISOWeek()
	weeklyDir := filepath.Join(s.backupDir, "weekly", fmt.Sprintf("%d-W%02d", year, week))
	if err := os.MkdirAll(weeklyDir, 0755); err != nil {
		return fmt.Errorf("reliability: create weekly backup dir: %w", err)
	}

	s.backupAllInto(weeklyDir)
	s.rotateByModTime(filepath.Join(s.backupDir, "weekly"), 12*7*24*time.Hour, true)

	s.log.Info().Str("dir", weeklyDir).Msg("weekly backup completed")
	return nil
}

// MonthlyBackup backs up every configured database into a month-keyed
// directory and rotates directories older than retentionYears.
func (s *BackupService) MonthlyBackup(retentionYears int) error {
	s.log.Info().Msg("starting monthly backup")

	monthlyDir := filepath.Join(s.backupDir, "monthly", time.Now().Format("2006-01"))
	if err := os.MkdirAll(monthlyDir, 0755); err != nil {
		return fmt.Errorf("reliability: create monthly backup dir: %w", err)
	}

	s.backupAllInto(monthlyDir)
	s.rotateDirsByDateName(filepath.Join(s.backupDir, "monthly"), "2006-01", time.Duration(retentionYears)*365*24*time.Hour)

	s.log.Info().Str("dir", monthlyDir).Msg("monthly backup completed")
	return nil
}

// backupAllInto backs up every configured database into destDir, verifying
// each and discarding (but logging) any that fails. It returns metadata for
// every database that was backed up and verified successfully.
func (s *BackupService) backupAllInto(destDir string) map[string]DatabaseMetadata {
	metadata := make(map[string]DatabaseMetadata, len(s.databases))

	for name := range s.databases {
		backupPath := filepath.Join(destDir, name+".db")

		if err := s.BackupDatabase(name, backupPath); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("backup failed")
			continue
		}
		if err := s.VerifyBackup(backupPath); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("backup verification failed")
			os.Remove(backupPath)
			continue
		}

		info, err := os.Stat(backupPath)
		if err != nil {
			continue
		}
		checksum, err := checksumFile(backupPath)
		if err != nil {
			continue
		}
		metadata[name] = DatabaseMetadata{Name: name, Filename: name + ".db", SizeBytes: info.Size(), Checksum: checksum}
	}

	return metadata
}

// BackupDatabase copies dbName's current state to backupPath via SQLite's
// VACUUM INTO, which produces a defragmented, WAL-free snapshot in one
// atomic step.
func (s *BackupService) BackupDatabase(dbName, backupPath string) error {
	db, ok := s.databases[dbName]
	if !ok {
		return fmt.Errorf("reliability: unknown database %q", dbName)
	}

	if _, err := db.Conn().Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		return fmt.Errorf("reliability: VACUUM INTO %s: %w", backupPath, err)
	}
	return nil
}

// VerifyBackup reopens backupPath as its own sqlite connection and runs
// PRAGMA integrity_check against it, independent of the live connection.
func (s *BackupService) VerifyBackup(backupPath string) error {
	backupDB, err := sql.Open("sqlite", backupPath)
	if err != nil {
		return fmt.Errorf("reliability: open backup %s: %w", backupPath, err)
	}
	defer backupDB.Close()

	var result string
	if err := backupDB.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("reliability: integrity check query on %s: %w", backupPath, err)
	}
	if result != "ok" {
		return fmt.Errorf("reliability: integrity check failed for %s: %s", backupPath, result)
	}
	return nil
}

// rotateByModTime deletes entries under dir whose modification time is
// older than maxAge. When dirs is true it removes whole directories
// (os.RemoveAll); otherwise it removes individual files.
func (s *BackupService) rotateByModTime(dir string, maxAge time.Duration, dirs bool) {
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("failed to read backup directory for rotation")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() != dirs {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		var removeErr error
		if dirs {
			removeErr = os.RemoveAll(path)
		} else {
			removeErr = os.Remove(path)
		}
		if removeErr != nil {
			s.log.Warn().Err(removeErr).Str("path", path).Msg("failed to delete old backup")
		}
	}
}

// rotateDirsByDateName deletes subdirectories of dir whose name, parsed
// with layout, is older than maxAge. Directories whose name doesn't match
// layout are left untouched.
func (s *BackupService) rotateDirsByDateName(dir, layout string, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("failed to read backup directory for rotation")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirDate, err := time.Parse(layout, entry.Name())
		if err != nil {
			continue
		}
		if dirDate.Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				s.log.Warn().Err(err).Str("path", path).Msg("failed to delete old backup directory")
			}
		}
	}
}
