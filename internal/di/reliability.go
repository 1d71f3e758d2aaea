package di

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/config"
	"github.com/aristath/wealthfolio-core/internal/database"
	"github.com/aristath/wealthfolio-core/internal/health"
	"github.com/aristath/wealthfolio-core/internal/reliability"
)

// InitializeReliability builds the local backup tiers, maintenance jobs, and
// (when R2 credentials are configured) the cloud archive uploader, then
// wires them into the scheduler. It never fails the whole process: a
// misconfigured or unreachable bucket disables cloud backup but leaves
// local backups and maintenance running.
func InitializeReliability(container *Container, cfg *config.Config, log zerolog.Logger) {
	databases := map[string]*database.DB{
		"ledger":    container.LedgerDB,
		"cache":     container.CacheDB,
		"portfolio": container.PortfolioDB,
	}

	container.Backups = reliability.NewBackupService(databases, cfg.DataDir+"/backups", log)
	container.Scheduler.WithBackups(container.Backups)

	container.Scheduler.WithMaintenance(
		reliability.NewDailyMaintenanceJob(databases, container.Backups, log),
		reliability.NewWeeklyMaintenanceJob(databases, log),
		reliability.NewMonthlyMaintenanceJob(databases, container.Backups, log),
	)

	container.Health = health.New(databases, container.Scheduler, container.MarketData)

	if !cfg.R2BackupEnabled || cfg.R2BucketName == "" {
		return
	}

	s3Client, err := reliability.NewS3Client(context.Background(), cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2BucketName, log)
	if err != nil {
		log.Warn().Err(err).Msg("cloud backup disabled: could not reach configured bucket")
		return
	}

	container.CloudBackup = reliability.NewCloudBackupService(s3Client, container.Backups, cfg.DataDir, log)
	container.Scheduler.WithCloudBackup(container.CloudBackup)
}
