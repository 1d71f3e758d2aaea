package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/config"
	"github.com/aristath/wealthfolio-core/internal/database"
)

// InitializeDatabases opens the three sqlite databases and applies their
// schemas, cleaning up whatever has already been opened if a later step
// fails.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	ledgerDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/ledger.db",
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return nil, fmt.Errorf("di: initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("di: initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	portfolioDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/portfolio.db",
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		ledgerDB.Close()
		cacheDB.Close()
		return nil, fmt.Errorf("di: initialize portfolio database: %w", err)
	}
	container.PortfolioDB = portfolioDB

	for _, db := range container.allDBs() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("di: apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("all databases initialized and schemas applied")

	return container, nil
}
