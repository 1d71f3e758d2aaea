package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// archivePrefix namespaces every object this service writes under the
// configured bucket, so a shared bucket can hold backups from more than one
// deployment without key collisions.
const archivePrefix = "portfolio-core-backup-"

// CloudBackupMetadata is the JSON sidecar bundled into every uploaded
// archive, letting a restore verify it picked up the right generation.
type CloudBackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// CloudBackupInfo describes one archive found in the bucket.
type CloudBackupInfo struct {
	Key       string
	Timestamp time.Time
	SizeBytes int64
	Age       time.Duration
}

// CloudBackupService takes a fresh backup of every configured database,
// packs the copies into a single tar.gz archive and ships it to an
// S3-compatible bucket, giving the local hourly/daily/weekly/monthly tiers
// an off-host copy.
type CloudBackupService struct {
	s3      *S3Client
	backups *BackupService
	stageDir string
	log     zerolog.Logger
}

// NewCloudBackupService builds a CloudBackupService that stages archives
// under stageDir before upload.
func NewCloudBackupService(s3 *S3Client, backups *BackupService, stageDir string, log zerolog.Logger) *CloudBackupService {
	return &CloudBackupService{
		s3:       s3,
		backups:  backups,
		stageDir: stageDir,
		log:      log.With().Str("service", "cloud_backup").Logger(),
	}
}

// CreateAndUpload backs up every configured database, bundles the results
// into one checksummed tar.gz archive, and uploads it to the bucket.
func (s *CloudBackupService) CreateAndUpload(ctx context.Context) error {
	s.log.Info().Msg("starting cloud backup")
	started := time.Now()

	staging := filepath.Join(s.stageDir, "cloud-staging")
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("reliability: create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	metadata := CloudBackupMetadata{Timestamp: time.Now().UTC()}
	names := s.backups.DatabaseNames()
	sort.Strings(names)

	for _, name := range names {
		dbPath := filepath.Join(staging, name+".db")
		if err := s.backups.BackupDatabase(name, dbPath); err != nil {
			return fmt.Errorf("reliability: backup %s for upload: %w", name, err)
		}
		if err := s.backups.VerifyBackup(dbPath); err != nil {
			return fmt.Errorf("reliability: verify %s before upload: %w", name, err)
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return fmt.Errorf("reliability: stat %s: %w", dbPath, err)
		}
		checksum, err := checksumFile(dbPath)
		if err != nil {
			return fmt.Errorf("reliability: checksum %s: %w", dbPath, err)
		}
		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name: name, Filename: name + ".db", SizeBytes: info.Size(), Checksum: checksum,
		})
	}

	metadataPath := filepath.Join(staging, "backup-metadata.json")
	if err := writeJSON(metadataPath, metadata); err != nil {
		return fmt.Errorf("reliability: write metadata: %w", err)
	}

	archiveName := fmt.Sprintf("%s%s.tar.gz", archivePrefix, time.Now().Format("2006-01-02-150405"))
	archivePath := filepath.Join(staging, archiveName)
	members := append(append([]string{}, names...), "backup-metadata")
	if err := createArchive(archivePath, staging, members); err != nil {
		return fmt.Errorf("reliability: create archive: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("reliability: open archive: %w", err)
	}
	defer archiveFile.Close()

	archiveInfo, err := archiveFile.Stat()
	if err != nil {
		return fmt.Errorf("reliability: stat archive: %w", err)
	}

	if err := s.s3.Upload(ctx, archiveName, archiveFile, archiveInfo.Size()); err != nil {
		return fmt.Errorf("reliability: upload archive: %w", err)
	}

	s.log.Info().
		Dur("duration", time.Since(started)).
		Str("archive", archiveName).
		Int64("size_mb", archiveInfo.Size()/1024/1024).
		Msg("cloud backup completed")
	return nil
}

// List returns every archive in the bucket, newest first.
func (s *CloudBackupService) List(ctx context.Context) ([]CloudBackupInfo, error) {
	objects, err := s.s3.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("reliability: list archives: %w", err)
	}

	now := time.Now()
	backups := make([]CloudBackupInfo, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".tar.gz") {
			continue
		}
		ts := strings.TrimSuffix(strings.TrimPrefix(obj.Key, archivePrefix), ".tar.gz")
		timestamp, err := time.Parse("2006-01-02-150405", ts)
		if err != nil {
			s.log.Warn().Str("key", obj.Key).Msg("failed to parse timestamp from archive name")
			continue
		}
		backups = append(backups, CloudBackupInfo{
			Key: obj.Key, Timestamp: timestamp, SizeBytes: obj.SizeBytes, Age: now.Sub(timestamp),
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Timestamp.After(backups[j].Timestamp) })
	return backups, nil
}

// Rotate deletes archives older than retentionDays, always keeping at
// least minBackupsToKeep regardless of age.
func (s *CloudBackupService) Rotate(ctx context.Context, retentionDays int) error {
	const minBackupsToKeep = 3

	backups, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= minBackupsToKeep || retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for i, backup := range backups {
		if i < minBackupsToKeep || !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.s3.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("failed to delete old archive")
			continue
		}
		deleted++
	}

	s.log.Info().Int("deleted", deleted).Int("remaining", len(backups)-deleted).Msg("cloud backup rotation completed")
	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// createArchive tars and gzips the named members (".db" files plus the
// "backup-metadata" sidecar) from sourceDir into archivePath.
func createArchive(archivePath, sourceDir string, members []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer archiveFile.Close()

	gz := gzip.NewWriter(archiveFile)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, member := range members {
		filename := member + ".db"
		if member == "backup-metadata" {
			filename = "backup-metadata.json"
		}
		if err := addFileToArchive(tw, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("add %s to archive: %w", filename, err)
		}
	}
	return nil
}

func addFileToArchive(tw *tar.Writer, filePath, nameInArchive string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	if err := tw.WriteHeader(&tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}); err != nil {
		return err
	}

	if _, err := io.Copy(tw, f); err != nil {
		return err
	}
	return nil
}
