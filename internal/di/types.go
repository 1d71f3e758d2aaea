// Package di wires every engine, repository, and database connection into
// one Container, the composition root the server and scheduler are built
// from.
package di

import (
	"github.com/aristath/wealthfolio-core/internal/activity"
	"github.com/aristath/wealthfolio-core/internal/allocation"
	"github.com/aristath/wealthfolio-core/internal/clientdata"
	"github.com/aristath/wealthfolio-core/internal/clock"
	"github.com/aristath/wealthfolio-core/internal/database"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/health"
	"github.com/aristath/wealthfolio-core/internal/holdings"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
	"github.com/aristath/wealthfolio-core/internal/modules/settings"
	"github.com/aristath/wealthfolio-core/internal/reliability"
	"github.com/aristath/wealthfolio-core/internal/resolver"
	"github.com/aristath/wealthfolio-core/internal/scheduler"
	"github.com/aristath/wealthfolio-core/internal/snapshot"
	"github.com/aristath/wealthfolio-core/internal/storage"
	"github.com/aristath/wealthfolio-core/internal/sync"
	"github.com/aristath/wealthfolio-core/internal/valuation"
)

// Container holds every database connection, repository, and engine the
// process needs, fully wired. Callers reach engines through it rather than
// constructing their own copies.
type Container struct {
	LedgerDB    *database.DB
	CacheDB     *database.DB
	PortfolioDB *database.DB

	Clock *clock.Clock

	Accounts  *storage.AccountRepository
	Assets    *storage.AssetRepository
	Activities *storage.ActivityRepository
	Quotes    *storage.QuoteRepository
	Fx        *storage.FxRepository
	Snapshots *storage.SnapshotRepository
	Valuations *storage.ValuationRepository
	Taxonomies *storage.TaxonomyRepository
	SyncPlans *storage.SyncPlanRepository
	Overrides *storage.OverrideRepository
	Settings  *settings.Repository
	ClientData *clientdata.Repository

	Resolver  *resolver.Chain
	FxGraph   *fx.Graph
	MarketData *marketdata.Registry

	Compiler   *activity.Compiler
	Snapshotter *snapshot.Engine
	Valuator   *valuation.Engine
	Holdings   *holdings.Projector
	Allocator  *allocation.Engine

	SyncService *sync.Service
	Bus         *events.Bus
	Scheduler   *scheduler.Scheduler

	Backups     *reliability.BackupService
	CloudBackup *reliability.CloudBackupService

	Health *health.Checker
}

// allDBs returns every open database connection, used for ordered cleanup.
func (c *Container) allDBs() []*database.DB {
	var out []*database.DB
	for _, db := range []*database.DB{c.LedgerDB, c.CacheDB, c.PortfolioDB} {
		if db != nil {
			out = append(out, db)
		}
	}
	return out
}

// Close shuts down every open database connection in reverse open order.
func (c *Container) Close() {
	dbs := c.allDBs()
	for i := len(dbs) - 1; i >= 0; i-- {
		dbs[i].Close()
	}
}
