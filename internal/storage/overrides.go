package storage

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// OverrideRepository persists explicit per-asset, per-provider symbol
// overrides in the ledger database and implements resolver.Overrides.
type OverrideRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewOverrideRepository(db *sql.DB, log zerolog.Logger) *OverrideRepository {
	return &OverrideRepository{db: db, log: log.With().Str("repo", "symbol_overrides").Logger()}
}

// Lookup implements resolver.Overrides.
func (r *OverrideRepository) Lookup(assetID, provider string) (string, bool) {
	row := r.db.QueryRow(`SELECT symbol FROM symbol_overrides WHERE asset_id = ? AND provider = ?`, assetID, provider)
	var symbol string
	if err := row.Scan(&symbol); err != nil {
		if err != sql.ErrNoRows {
			r.log.Warn().Err(err).Str("asset_id", assetID).Str("provider", provider).Msg("override lookup failed")
		}
		return "", false
	}
	return symbol, true
}

// Set upserts one asset's provider-facing symbol override.
func (r *OverrideRepository) Set(assetID, provider, symbol string) error {
	_, err := r.db.Exec(`
		INSERT INTO symbol_overrides (asset_id, provider, symbol) VALUES (?, ?, ?)
		ON CONFLICT(asset_id, provider) DO UPDATE SET symbol = excluded.symbol
	`, assetID, provider, symbol)
	if err != nil {
		return fmt.Errorf("storage: set symbol override %s/%s: %w", assetID, provider, err)
	}
	return nil
}

// Delete removes a previously recorded override, falling the resolver back
// to rule-based derivation for this (asset, provider) pair.
func (r *OverrideRepository) Delete(assetID, provider string) error {
	_, err := r.db.Exec(`DELETE FROM symbol_overrides WHERE asset_id = ? AND provider = ?`, assetID, provider)
	if err != nil {
		return fmt.Errorf("storage: delete symbol override %s/%s: %w", assetID, provider, err)
	}
	return nil
}
