// Package scheduler drives the background quote-sync run on a fixed
// interval, publishing SyncStarted/SyncCompleted/SyncFailed events around
// each run so other components (and any attached UI) can observe progress
// without polling.
package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/clientdata"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/reliability"
	"github.com/aristath/wealthfolio-core/internal/sync"
)

// DefaultSyncSchedule runs the sync job once every four hours.
const DefaultSyncSchedule = "@every 4h"

// ClientDataCleanupSchedule runs the client data cache cleanup once a day.
const ClientDataCleanupSchedule = "@every 24h"

// outboxRetention is how long a delivered event outbox row is kept before
// the daily cleanup tick prunes it.
const outboxRetention = 14 * 24 * time.Hour

// Backup and maintenance tiers, staggered so they don't contend for the
// same sqlite connections at the same moment.
const (
	HourlyBackupSchedule       = "0 * * * *"  // top of every hour
	DailyBackupSchedule        = "0 1 * * *"  // 01:00
	DailyMaintenanceSchedule   = "0 2 * * *"  // 02:00, after the daily backup
	CloudBackupSchedule        = "30 2 * * *" // 02:30, after daily maintenance
	WeeklyMaintenanceSchedule  = "0 3 * * 0"  // Sunday 03:00
	MonthlyMaintenanceSchedule = "0 4 1 * *"  // 1st of the month, 04:00

	// CloudBackupRetentionDays is how long an uploaded archive is kept
	// before rotation deletes it (subject to the 3-backup floor).
	CloudBackupRetentionDays = 30
)

// StartupDelay is how long the scheduler waits after Start before running
// the sync job for the first time, giving the rest of the process (HTTP
// server, database connections) time to come up cleanly.
const StartupDelay = 60 * time.Second

// Scheduler runs the sync service on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sync    *sync.Service
	bus     *events.Bus
	cleanup *clientdata.CleanupJob

	backups *reliability.BackupService
	daily   *reliability.DailyMaintenanceJob
	weekly  *reliability.WeeklyMaintenanceJob
	monthly *reliability.MonthlyMaintenanceJob
	cloud   *reliability.CloudBackupService

	mu                stdsync.RWMutex
	lastSyncCompleted time.Time
	lastSyncErr       string

	log zerolog.Logger
}

// New constructs a Scheduler bound to a sync.Service and event bus.
func New(syncService *sync.Service, bus *events.Bus, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		sync: syncService,
		bus:  bus,
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// WithClientDataCleanup attaches a daily cache-expiry sweep for the
// exchange-rate/price/ISIN lookup caches; nil disables it.
func (s *Scheduler) WithClientDataCleanup(job *clientdata.CleanupJob) *Scheduler {
	s.cleanup = job
	return s
}

// WithBackups attaches the local backup tiers (hourly ledger, daily/weekly/
// monthly full); nil disables all of them.
func (s *Scheduler) WithBackups(backups *reliability.BackupService) *Scheduler {
	s.backups = backups
	return s
}

// WithMaintenance attaches the daily, weekly and monthly database
// maintenance jobs; any of them may be nil to disable it independently.
func (s *Scheduler) WithMaintenance(daily *reliability.DailyMaintenanceJob, weekly *reliability.WeeklyMaintenanceJob, monthly *reliability.MonthlyMaintenanceJob) *Scheduler {
	s.daily = daily
	s.weekly = weekly
	s.monthly = monthly
	return s
}

// WithCloudBackup attaches the off-host archive upload; nil disables it.
func (s *Scheduler) WithCloudBackup(cloud *reliability.CloudBackupService) *Scheduler {
	s.cloud = cloud
	return s
}

// Start registers the sync job on DefaultSyncSchedule and starts the cron
// loop, plus a one-shot timer for the initial StartupDelay run.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DefaultSyncSchedule, func() {
		s.runSync(context.Background())
	}); err != nil {
		return err
	}

	if s.cleanup != nil {
		if _, err := s.cron.AddFunc(ClientDataCleanupSchedule, func() {
			if err := s.cleanup.Run(); err != nil {
				s.log.Error().Err(err).Msg("client data cleanup failed")
			}
		}); err != nil {
			return err
		}
	}

	if _, err := s.cron.AddFunc(ClientDataCleanupSchedule, func() {
		pruned, err := s.bus.PruneOutbox(outboxRetention)
		if err != nil {
			s.log.Error().Err(err).Msg("event outbox prune failed")
			return
		}
		if pruned > 0 {
			s.log.Info().Int64("pruned", pruned).Msg("event outbox pruned")
		}
	}); err != nil {
		return err
	}

	if s.backups != nil {
		if _, err := s.cron.AddFunc(HourlyBackupSchedule, func() {
			if err := s.backups.HourlyBackup(); err != nil {
				s.log.Error().Err(err).Msg("hourly backup failed")
			}
		}); err != nil {
			return err
		}
		if _, err := s.cron.AddFunc(DailyBackupSchedule, func() {
			if _, err := s.backups.DailyBackup(); err != nil {
				s.log.Error().Err(err).Msg("daily backup failed")
			}
		}); err != nil {
			return err
		}
	}

	if s.daily != nil {
		if _, err := s.cron.AddFunc(DailyMaintenanceSchedule, func() {
			if err := s.daily.Run(); err != nil {
				s.log.Error().Err(err).Msg("daily maintenance failed")
			}
		}); err != nil {
			return err
		}
	}
	if s.weekly != nil {
		if _, err := s.cron.AddFunc(WeeklyMaintenanceSchedule, func() {
			if err := s.weekly.Run(); err != nil {
				s.log.Error().Err(err).Msg("weekly maintenance failed")
			}
		}); err != nil {
			return err
		}
	}
	if s.monthly != nil {
		if _, err := s.cron.AddFunc(MonthlyMaintenanceSchedule, func() {
			if err := s.monthly.Run(); err != nil {
				s.log.Error().Err(err).Msg("monthly maintenance failed")
			}
		}); err != nil {
			return err
		}
	}

	if s.cloud != nil {
		if _, err := s.cron.AddFunc(CloudBackupSchedule, func() {
			ctx := context.Background()
			if err := s.cloud.CreateAndUpload(ctx); err != nil {
				s.log.Error().Err(err).Msg("cloud backup failed")
				return
			}
			if err := s.cloud.Rotate(ctx, CloudBackupRetentionDays); err != nil {
				s.log.Error().Err(err).Msg("cloud backup rotation failed")
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.Info().Str("schedule", DefaultSyncSchedule).Dur("startup_delay", StartupDelay).Msg("scheduler started")

	go func() {
		timer := time.NewTimer(StartupDelay)
		defer timer.Stop()
		<-timer.C
		s.runSync(context.Background())
	}()

	return nil
}

// Stop drains in-flight cron invocations and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow triggers a sync run immediately, outside the cron schedule. Used by
// the manual "resync" HTTP endpoint.
func (s *Scheduler) RunNow(ctx context.Context) []sync.Outcome {
	return s.runSync(ctx)
}

// LastSync reports when the most recent sync run finished and, if it
// finished in error, what that error was. The zero time means no run has
// completed yet since process start.
func (s *Scheduler) LastSync() (finished time.Time, errMsg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSyncCompleted, s.lastSyncErr
}

func (s *Scheduler) runSync(ctx context.Context) []sync.Outcome {
	runID := uuid.NewString()
	started := time.Now()

	s.bus.Publish(events.Event{
		Type:      events.SyncStarted,
		Emitter:   "scheduler",
		Timestamp: started,
		Data:      &events.SyncStatusData{RunID: runID, Started: started},
	})

	outcomes, err := s.sync.Run(ctx)
	finished := time.Now()

	if err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("sync run failed")
		s.mu.Lock()
		s.lastSyncCompleted = finished
		s.lastSyncErr = err.Error()
		s.mu.Unlock()
		s.bus.Publish(events.Event{
			Type:      events.SyncFailed,
			Emitter:   "scheduler",
			Timestamp: finished,
			Data:      &events.SyncStatusData{RunID: runID, Started: started, Finished: finished, Error: err.Error()},
		})
		return outcomes
	}

	failed := 0
	for _, o := range outcomes {
		if o.Kind == sync.OutcomeFailed {
			failed++
		}
	}
	s.log.Info().Str("run_id", runID).Int("symbols", len(outcomes)).Int("failed", failed).Dur("duration", finished.Sub(started)).Msg("sync run completed")

	s.mu.Lock()
	s.lastSyncCompleted = finished
	s.lastSyncErr = ""
	s.mu.Unlock()

	s.bus.Publish(events.Event{
		Type:      events.SyncCompleted,
		Emitter:   "scheduler",
		Timestamp: finished,
		Data:      &events.SyncStatusData{RunID: runID, Started: started, Finished: finished},
	})

	return outcomes
}
