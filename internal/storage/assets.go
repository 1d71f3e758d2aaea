package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/identifier"
)

// AssetRepository persists assets in the ledger database. It also serves as
// the holdings.AssetStore and the allocation/resolver layers' asset lookup.
type AssetRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewAssetRepository(db *sql.DB, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{db: db, log: log.With().Str("repo", "assets").Logger()}
}

func (r *AssetRepository) Create(a domain.Asset) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var purchasePrice *string
	if a.PurchasePrice != nil {
		s := a.PurchasePrice.String()
		purchasePrice = &s
	}
	_, err := r.db.Exec(`
		INSERT INTO assets (id, symbol, isin, name, currency, kind, pricing_mode, preferred_provider, purchase_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Symbol, a.ISIN, a.Name, a.Currency, string(a.Kind), string(a.PricingMode), nullIfEmpty(a.PreferredProvider), purchasePrice, now, now)
	if err != nil {
		return fmt.Errorf("storage: create asset %s: %w", a.ID, err)
	}
	return nil
}

// Asset implements holdings.AssetStore.
func (r *AssetRepository) Asset(assetID string) (domain.Asset, bool, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, isin, name, currency, kind, pricing_mode, COALESCE(preferred_provider, ''), purchase_price
		FROM assets WHERE id = ?
	`, assetID)

	var a domain.Asset
	var kind, pricingMode string
	var purchasePrice sql.NullString
	if err := row.Scan(&a.ID, &a.Symbol, &a.ISIN, &a.Name, &a.Currency, &kind, &pricingMode, &a.PreferredProvider, &purchasePrice); err != nil {
		if err == sql.ErrNoRows {
			return domain.Asset{}, false, nil
		}
		return domain.Asset{}, false, fmt.Errorf("storage: get asset %s: %w", assetID, err)
	}
	a.Kind = identifier.Kind(kind)
	a.PricingMode = domain.PricingMode(pricingMode)
	if purchasePrice.Valid {
		d, err := decimal.NewFromString(purchasePrice.String)
		if err != nil {
			return domain.Asset{}, false, fmt.Errorf("storage: parse purchase_price for %s: %w", assetID, err)
		}
		a.PurchasePrice = &d
	}
	return a, true, nil
}

// PurchasePrice implements valuation.PurchasePriceStore: the fallback
// market value used for holdings-mode alternative assets with no quote.
func (r *AssetRepository) PurchasePrice(assetID string) (decimal.Decimal, string, bool, error) {
	asset, ok, err := r.Asset(assetID)
	if err != nil || !ok || asset.PurchasePrice == nil {
		return decimal.Decimal{}, "", false, err
	}
	return *asset.PurchasePrice, asset.Currency, true, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
