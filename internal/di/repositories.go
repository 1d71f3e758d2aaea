package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/clientdata"
	"github.com/aristath/wealthfolio-core/internal/modules/settings"
	"github.com/aristath/wealthfolio-core/internal/storage"
)

// InitializeRepositories constructs every storage repository from the
// container's open database connections.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.Accounts = storage.NewAccountRepository(container.LedgerDB.Conn(), log)
	container.Assets = storage.NewAssetRepository(container.LedgerDB.Conn(), log)
	container.Activities = storage.NewActivityRepository(container.LedgerDB.Conn(), log)
	container.Taxonomies = storage.NewTaxonomyRepository(container.LedgerDB.Conn(), log)
	container.Overrides = storage.NewOverrideRepository(container.LedgerDB.Conn(), log)
	container.Settings = settings.NewRepository(container.LedgerDB.Conn(), log)

	container.Quotes = storage.NewQuoteRepository(container.CacheDB.Conn(), log)
	container.Fx = storage.NewFxRepository(container.CacheDB.Conn(), log)
	container.SyncPlans = storage.NewSyncPlanRepository(container.CacheDB.Conn(), log)
	container.ClientData = clientdata.NewRepository(container.CacheDB.Conn())

	container.Snapshots = storage.NewSnapshotRepository(container.PortfolioDB.Conn(), log)
	container.Valuations = storage.NewValuationRepository(container.PortfolioDB.Conn(), log)

	return nil
}
