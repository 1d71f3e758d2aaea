package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
)

// QuoteRepository persists quotes in the cache database and implements
// valuation.QuoteStore, holdings.QuoteStore, and sync.QuoteWriter.
type QuoteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewQuoteRepository(db *sql.DB, log zerolog.Logger) *QuoteRepository {
	return &QuoteRepository{db: db, log: log.With().Str("repo", "quotes").Logger()}
}

// StoreQuote implements sync.QuoteWriter. Manual quotes and provider quotes
// coexist under distinct source values at the same (asset, timestamp); a
// re-fetch of the same provider quote overwrites in place.
func (r *QuoteRepository) StoreQuote(q domain.Quote) error {
	_, err := r.db.Exec(`
		INSERT INTO quotes (asset_id, timestamp, price, currency, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id, timestamp, source) DO UPDATE SET
			price = excluded.price, currency = excluded.currency, fetched_at = excluded.fetched_at
	`, q.AssetID, q.Date.UTC().Format("2006-01-02"), q.Price.String(), q.Currency, string(q.Source), q.FetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storage: store quote %s@%s: %w", q.AssetID, q.Date, err)
	}
	return nil
}

// LatestQuoteOnOrBefore implements valuation.QuoteStore and holdings.QuoteStore.
// A manual quote on the same date as a provider quote shadows it — this is
// the policy seam spec.md leaves to the store, implemented here by simply
// preferring source = 'MANUAL' on ties via ORDER BY.
func (r *QuoteRepository) LatestQuoteOnOrBefore(assetID string, date time.Time) (domain.Quote, bool, error) {
	row := r.db.QueryRow(`
		SELECT asset_id, timestamp, price, currency, source, fetched_at
		FROM quotes
		WHERE asset_id = ? AND timestamp <= ?
		ORDER BY timestamp DESC, (source = 'MANUAL') DESC
		LIMIT 1
	`, assetID, date.UTC().Format("2006-01-02"))
	return scanQuote(row)
}

// PreviousClose returns the latest quote strictly before date, used to
// compute day-change.
func (r *QuoteRepository) PreviousClose(assetID string, date time.Time) (domain.Quote, bool, error) {
	row := r.db.QueryRow(`
		SELECT asset_id, timestamp, price, currency, source, fetched_at
		FROM quotes
		WHERE asset_id = ? AND timestamp < ?
		ORDER BY timestamp DESC, (source = 'MANUAL') DESC
		LIMIT 1
	`, assetID, date.UTC().Format("2006-01-02"))
	return scanQuote(row)
}

func scanQuote(row *sql.Row) (domain.Quote, bool, error) {
	var q domain.Quote
	var timestamp, price, source, fetchedAt string
	if err := row.Scan(&q.AssetID, &timestamp, &price, &q.Currency, &source, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Quote{}, false, nil
		}
		return domain.Quote{}, false, fmt.Errorf("storage: scan quote: %w", err)
	}
	var err error
	if q.Date, err = time.Parse("2006-01-02", timestamp); err != nil {
		return domain.Quote{}, false, fmt.Errorf("parse quote date %q: %w", timestamp, err)
	}
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Quote{}, false, fmt.Errorf("parse quote price %q: %w", price, err)
	}
	q.Source = domain.DataSource(source)
	q.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return q, true, nil
}

// FxRepository persists FX rates in the cache database and implements fx.Store.
type FxRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewFxRepository(db *sql.DB, log zerolog.Logger) *FxRepository {
	return &FxRepository{db: db, log: log.With().Str("repo", "fx").Logger()}
}

func (r *FxRepository) UpsertRate(from, to string, date time.Time, rate decimal.Decimal, source string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(`
		INSERT INTO fx_quotes (base_currency, quote_currency, timestamp, rate, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(base_currency, quote_currency, timestamp, source) DO UPDATE SET
			rate = excluded.rate, fetched_at = excluded.fetched_at
	`, from, to, date.UTC().Format("2006-01-02"), rate.String(), source, now)
	if err != nil {
		return fmt.Errorf("storage: upsert fx rate %s->%s: %w", from, to, err)
	}
	return nil
}

func (r *FxRepository) LatestRate(from, to string) (decimal.Decimal, time.Time, bool, error) {
	row := r.db.QueryRow(`
		SELECT timestamp, rate FROM fx_quotes
		WHERE base_currency = ? AND quote_currency = ?
		ORDER BY timestamp DESC LIMIT 1
	`, from, to)
	return scanFxRate(row)
}

func (r *FxRepository) RateOnOrBefore(from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	row := r.db.QueryRow(`
		SELECT timestamp, rate FROM fx_quotes
		WHERE base_currency = ? AND quote_currency = ? AND timestamp <= ?
		ORDER BY timestamp DESC LIMIT 1
	`, from, to, asOf.UTC().Format("2006-01-02"))
	return scanFxRate(row)
}

func scanFxRate(row *sql.Row) (decimal.Decimal, time.Time, bool, error) {
	var timestamp, rate string
	if err := row.Scan(&timestamp, &rate); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Decimal{}, time.Time{}, false, nil
		}
		return decimal.Decimal{}, time.Time{}, false, fmt.Errorf("storage: scan fx rate: %w", err)
	}
	date, err := time.Parse("2006-01-02", timestamp)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, false, fmt.Errorf("parse fx date %q: %w", timestamp, err)
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, false, fmt.Errorf("parse fx rate %q: %w", rate, err)
	}
	return d, date, true, nil
}

// RegisteredPairs returns every pair ever registered, regardless of whether
// a rate has been fetched for it yet.
func (r *FxRepository) RegisteredPairs() ([][2]string, error) {
	rows, err := r.db.Query(`SELECT base_currency, quote_currency FROM fx_registered_pairs`)
	if err != nil {
		return nil, fmt.Errorf("storage: list fx pairs: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("storage: scan fx pair: %w", err)
		}
		out = append(out, [2]string{from, to})
	}
	return out, rows.Err()
}

// RegisterPair records from->to as a pair the sync layer should keep
// fetching going forward.
func (r *FxRepository) RegisterPair(from, to string) error {
	_, err := r.db.Exec(`
		INSERT INTO fx_registered_pairs (base_currency, quote_currency) VALUES (?, ?)
		ON CONFLICT(base_currency, quote_currency) DO NOTHING
	`, from, to)
	if err != nil {
		return fmt.Errorf("storage: register fx pair %s->%s: %w", from, to, err)
	}
	return nil
}
