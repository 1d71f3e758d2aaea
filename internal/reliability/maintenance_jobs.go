package reliability

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/database"
	"github.com/aristath/wealthfolio-core/internal/scheduler/base"
)

// DailyMaintenanceJob runs the full daily sweep: integrity check, WAL
// checkpoint, disk space check, yesterday's backup verification, and
// growth logging, over every configured database.
type DailyMaintenanceJob struct {
	base.JobBase
	databases map[string]*database.DB
	backups   *BackupService
	log       zerolog.Logger
}

// NewDailyMaintenanceJob builds a DailyMaintenanceJob.
func NewDailyMaintenanceJob(databases map[string]*database.DB, backups *BackupService, log zerolog.Logger) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		databases: databases,
		backups:   backups,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Run executes the daily maintenance job. A failed integrity check or a
// critical disk-space shortage aborts immediately; every other step logs
// and continues so one database's trouble doesn't block the rest.
func (j *DailyMaintenanceJob) Run() error {
	j.log.Info().Msg("starting daily maintenance")
	started := time.Now()
	ctx := context.Background()

	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Str("database", name).Err(err).Msg("integrity check failed")
			return fmt.Errorf("reliability: integrity check failed for %s: %w", name, err)
		}
	}

	for name, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Str("database", name).Err(err).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.verifyYesterdaysBackup()
	j.logGrowth()

	j.log.Info().Dur("duration", time.Since(started)).Msg("daily maintenance completed")
	return nil
}

func (j *DailyMaintenanceJob) Name() string { return "daily_maintenance" }

// checkDiskSpace statfs's the backup directory's filesystem and halts the
// job with an error once free space drops below half a gigabyte.
func (j *DailyMaintenanceJob) checkDiskSpace() error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(j.backups.backupDir, &stat); err != nil {
		return fmt.Errorf("reliability: statfs backup dir: %w", err)
	}

	availableGB := float64(stat.Bavail*uint64(stat.Bsize)) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("disk space check")

	if availableGB < 0.5 {
		j.log.Error().Float64("available_gb", availableGB).Msg("critically low disk space, halting maintenance")
		return fmt.Errorf("reliability: only %.2f GB free, halting", availableGB)
	}
	if availableGB < 10.0 {
		j.log.Warn().Float64("available_gb", availableGB).Msg("disk space running low")
	}
	return nil
}

// verifyYesterdaysBackup reopens yesterday's daily backup for every
// database and runs an integrity check. Failures are logged, not fatal —
// today's backup will run regardless.
func (j *DailyMaintenanceJob) verifyYesterdaysBackup() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	dir := filepath.Join(j.backups.backupDir, "daily", yesterday)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		j.log.Warn().Str("dir", dir).Msg("yesterday's backup directory not found")
		return
	}

	for name := range j.databases {
		path := filepath.Join(dir, name+".db")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			j.log.Error().Str("database", name).Str("path", path).Msg("backup file missing")
			continue
		}
		if err := j.backups.VerifyBackup(path); err != nil {
			j.log.Error().Str("database", name).Err(err).Msg("backup integrity check failed")
			continue
		}
		j.log.Debug().Str("database", name).Msg("backup verified")
	}
}

func (j *DailyMaintenanceJob) logGrowth() {
	for name, db := range j.databases {
		stats, err := db.GetStats()
		if err != nil {
			j.log.Error().Str("database", name).Err(err).Msg("failed to get stats")
			continue
		}
		j.log.Info().
			Str("database", name).
			Float64("size_mb", float64(stats.SizeBytes)/1024/1024).
			Float64("wal_size_mb", float64(stats.WALSizeBytes)/1024/1024).
			Msg("database size")
	}
}

// nonLedgerDatabases are the databases it's safe to VACUUM: ledger is
// append-only and large enough that rewriting it weekly isn't worth the
// lock time.
func nonLedgerDatabases(databases map[string]*database.DB) map[string]*database.DB {
	out := make(map[string]*database.DB, len(databases))
	for name, db := range databases {
		if name == "ledger" {
			continue
		}
		out[name] = db
	}
	return out
}

func vacuumAll(databases map[string]*database.DB, log zerolog.Logger) {
	for name, db := range databases {
		before, _ := db.GetStats()

		log.Info().Str("database", name).Msg("running VACUUM")
		if err := db.Vacuum(); err != nil {
			log.Error().Str("database", name).Err(err).Msg("VACUUM failed")
			continue
		}

		after, statErr := db.GetStats()
		if statErr != nil || before == nil {
			continue
		}
		log.Info().
			Str("database", name).
			Float64("size_before_mb", float64(before.SizeBytes)/1024/1024).
			Float64("size_after_mb", float64(after.SizeBytes)/1024/1024).
			Msg("VACUUM completed")
	}
}

// WeeklyMaintenanceJob VACUUMs every non-ledger database to reclaim space
// from the week's churn.
type WeeklyMaintenanceJob struct {
	base.JobBase
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWeeklyMaintenanceJob builds a WeeklyMaintenanceJob.
func NewWeeklyMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *WeeklyMaintenanceJob {
	return &WeeklyMaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "weekly_maintenance").Logger(),
	}
}

func (j *WeeklyMaintenanceJob) Run() error {
	j.log.Info().Msg("starting weekly maintenance")
	started := time.Now()

	vacuumAll(nonLedgerDatabases(j.databases), j.log)

	j.log.Info().Dur("duration", time.Since(started)).Msg("weekly maintenance completed")
	return nil
}

func (j *WeeklyMaintenanceJob) Name() string { return "weekly_maintenance" }

// MonthlyMaintenanceJob VACUUMs every non-ledger database, restores the
// most recent daily backup to a temp directory to verify it end-to-end,
// and logs long-run growth.
type MonthlyMaintenanceJob struct {
	base.JobBase
	databases map[string]*database.DB
	backups   *BackupService
	log       zerolog.Logger
}

// NewMonthlyMaintenanceJob builds a MonthlyMaintenanceJob.
func NewMonthlyMaintenanceJob(databases map[string]*database.DB, backups *BackupService, log zerolog.Logger) *MonthlyMaintenanceJob {
	return &MonthlyMaintenanceJob{
		databases: databases,
		backups:   backups,
		log:       log.With().Str("job", "monthly_maintenance").Logger(),
	}
}

func (j *MonthlyMaintenanceJob) Run() error {
	j.log.Info().Msg("starting monthly maintenance")
	started := time.Now()

	vacuumAll(nonLedgerDatabases(j.databases), j.log)

	if err := j.fullBackupVerification(); err != nil {
		j.log.Error().Err(err).Msg("full backup verification failed")
		return fmt.Errorf("reliability: full backup verification: %w", err)
	}

	j.log.Info().Dur("duration", time.Since(started)).Msg("monthly maintenance completed")
	return nil
}

func (j *MonthlyMaintenanceJob) Name() string { return "monthly_maintenance" }

// fullBackupVerification copies the most recent daily backup of every
// database into a temp directory and runs an integrity check against the
// copy, exercising the exact restore path an operator would use.
func (j *MonthlyMaintenanceJob) fullBackupVerification() error {
	dailyDir := filepath.Join(j.backups.backupDir, "daily")
	entries, err := os.ReadDir(dailyDir)
	if err != nil {
		return fmt.Errorf("read daily backup directory: %w", err)
	}

	var mostRecent string
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsDir() {
			mostRecent = entries[i].Name()
			break
		}
	}
	if mostRecent == "" {
		return fmt.Errorf("no daily backups found")
	}

	tempDir, err := os.MkdirTemp("", "backup-verification-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	backupDir := filepath.Join(dailyDir, mostRecent)
	for name := range j.databases {
		src := filepath.Join(backupDir, name+".db")
		dst := filepath.Join(tempDir, name+".db")

		if err := copyFile(src, dst); err != nil {
			j.log.Warn().Str("database", name).Err(err).Msg("failed to copy backup for verification, skipping")
			continue
		}
		if err := j.backups.VerifyBackup(dst); err != nil {
			return fmt.Errorf("integrity check failed for %s: %w", name, err)
		}
		j.log.Debug().Str("database", name).Msg("backup verified")
	}

	j.log.Info().Str("backup_date", mostRecent).Msg("full backup verification completed")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
