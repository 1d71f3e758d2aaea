package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/config"
)

// Wire initializes databases, repositories, and services in order and
// returns a fully constructed Container. On any failure, every database
// opened so far is closed before the error is returned.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("di: initialize databases: %w", err)
	}

	if err := InitializeRepositories(container, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("di: initialize repositories: %w", err)
	}

	if err := cfg.UpdateFromSettings(container.Settings); err != nil {
		container.Close()
		return nil, fmt.Errorf("di: apply settings overrides: %w", err)
	}

	if err := InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("di: initialize services: %w", err)
	}

	InitializeReliability(container, cfg, log)

	log.Info().Msg("dependency injection wiring completed")

	return container, nil
}
