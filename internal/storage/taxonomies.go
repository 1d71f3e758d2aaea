package storage

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/allocation"
)

// TaxonomyRepository persists taxonomies and per-asset category weights in
// the ledger database and implements allocation.ClassificationStore.
type TaxonomyRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewTaxonomyRepository(db *sql.DB, log zerolog.Logger) *TaxonomyRepository {
	return &TaxonomyRepository{db: db, log: log.With().Str("repo", "taxonomies").Logger()}
}

// ClassificationsForAsset implements allocation.ClassificationStore.
func (r *TaxonomyRepository) ClassificationsForAsset(assetID string) ([]allocation.Classification, error) {
	rows, err := r.db.Query(`
		SELECT taxonomy_id, category_id, weight FROM taxonomy_assignments WHERE asset_id = ?
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("storage: query classifications for %s: %w", assetID, err)
	}
	defer rows.Close()

	var out []allocation.Classification
	for rows.Next() {
		var c allocation.Classification
		var weight string
		if err := rows.Scan(&c.TaxonomyID, &c.CategoryID, &weight); err != nil {
			return nil, fmt.Errorf("storage: scan classification: %w", err)
		}
		w, err := decimal.NewFromString(weight)
		if err != nil {
			return nil, fmt.Errorf("storage: parse classification weight %q: %w", weight, err)
		}
		c.Weight = w
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryMeta implements allocation.ClassificationStore, resolving display
// name and color for a (taxonomy, category) pair from one assignment row
// carrying it; no ordering is applied, so when rows disagree which one is
// used is not defined.
func (r *TaxonomyRepository) CategoryMeta(taxonomyID, categoryID string) (allocation.CategoryMeta, bool, error) {
	row := r.db.QueryRow(`
		SELECT category_name, category_color FROM taxonomy_assignments
		WHERE taxonomy_id = ? AND category_id = ? LIMIT 1
	`, taxonomyID, categoryID)

	var meta allocation.CategoryMeta
	if err := row.Scan(&meta.Name, &meta.Color); err != nil {
		if err == sql.ErrNoRows {
			return allocation.CategoryMeta{}, false, nil
		}
		return allocation.CategoryMeta{}, false, fmt.Errorf("storage: get category meta %s/%s: %w", taxonomyID, categoryID, err)
	}
	return meta, true, nil
}

// CustomTaxonomies implements allocation.ClassificationStore, returning
// every user-defined taxonomy beyond the five fixed ones.
func (r *TaxonomyRepository) CustomTaxonomies() ([]allocation.TaxonomyDef, error) {
	rows, err := r.db.Query(`SELECT id, name, color FROM taxonomies WHERE is_custom = 1`)
	if err != nil {
		return nil, fmt.Errorf("storage: query custom taxonomies: %w", err)
	}
	defer rows.Close()

	var out []allocation.TaxonomyDef
	for rows.Next() {
		var t allocation.TaxonomyDef
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("storage: scan taxonomy: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AssignClassification upserts one asset's weight within a taxonomy
// category, creating the taxonomy row if it doesn't already exist.
func (r *TaxonomyRepository) AssignClassification(taxonomyID, taxonomyName, taxonomyColor string, isCustom bool, categoryID, categoryName, categoryColor, assetID string, weight decimal.Decimal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin classification assignment: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO taxonomies (id, name, color, is_custom) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, taxonomyID, taxonomyName, taxonomyColor, boolToInt(isCustom)); err != nil {
		return fmt.Errorf("storage: ensure taxonomy %s: %w", taxonomyID, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO taxonomy_assignments (taxonomy_id, category_id, category_name, category_color, asset_id, weight)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(taxonomy_id, category_id, asset_id) DO UPDATE SET
			category_name = excluded.category_name, category_color = excluded.category_color, weight = excluded.weight
	`, taxonomyID, categoryID, categoryName, categoryColor, assetID, weight.String()); err != nil {
		return fmt.Errorf("storage: assign classification %s/%s for %s: %w", taxonomyID, categoryID, assetID, err)
	}

	return tx.Commit()
}
