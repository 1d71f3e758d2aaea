package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
)

// ActivityRepository persists activities in the ledger database and
// implements activity.Store for the compiler.
type ActivityRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewActivityRepository(db *sql.DB, log zerolog.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, log: log.With().Str("repo", "activities").Logger()}
}

// Insert adds one activity, silently doing nothing if its idempotency key
// already exists — re-importing the same external activity is a no-op, not
// an error.
func (r *ActivityRepository) Insert(a domain.Activity) error {
	_, err := r.db.Exec(`
		INSERT INTO activities (
			id, account_id, asset_id, activity_type, timestamp, quantity, unit_price, amount,
			fee, currency, counterparty_id, split_numerator, split_denominator, idempotency_key,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idempotency_key) DO NOTHING
	`,
		a.ID, a.AccountID, nullIfEmpty(a.AssetID), string(a.Type), a.Timestamp.UTC().Format(time.RFC3339),
		decimalPtrToString(a.Quantity), decimalPtrToString(a.UnitPrice), decimalPtrToString(a.Amount),
		a.Fee.String(), a.Currency, nullIfEmpty(a.CounterpartyID),
		nullIfZero(a.SplitNumerator), nullIfZero(a.SplitDenominator), a.IdempotencyKey,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storage: insert activity %s: %w", a.ID, err)
	}
	return nil
}

// ActivitiesForAccount implements activity.Store.
func (r *ActivityRepository) ActivitiesForAccount(accountID string) ([]domain.Activity, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, COALESCE(asset_id, ''), activity_type, timestamp, quantity, unit_price,
			amount, fee, currency, COALESCE(counterparty_id, ''), split_numerator, split_denominator,
			idempotency_key
		FROM activities WHERE account_id = ? ORDER BY timestamp, id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("storage: query activities for %s: %w", accountID, err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanActivity(rows *sql.Rows) (domain.Activity, error) {
	var a domain.Activity
	var timestamp, typ string
	var quantity, unitPrice, amount sql.NullString
	var fee string
	var splitNum, splitDenom sql.NullInt64

	if err := rows.Scan(
		&a.ID, &a.AccountID, &a.AssetID, &typ, &timestamp, &quantity, &unitPrice,
		&amount, &fee, &a.Currency, &a.CounterpartyID, &splitNum, &splitDenom, &a.IdempotencyKey,
	); err != nil {
		return domain.Activity{}, err
	}

	a.Type = domain.ActivityType(typ)
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}
	a.Timestamp = ts

	if a.Quantity, err = nullStringToDecimalPtr(quantity); err != nil {
		return domain.Activity{}, err
	}
	if a.UnitPrice, err = nullStringToDecimalPtr(unitPrice); err != nil {
		return domain.Activity{}, err
	}
	if a.Amount, err = nullStringToDecimalPtr(amount); err != nil {
		return domain.Activity{}, err
	}
	feeDec, err := decimal.NewFromString(fee)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("parse fee %q: %w", fee, err)
	}
	a.Fee = feeDec
	a.SplitNumerator = splitNum.Int64
	a.SplitDenominator = splitDenom.Int64

	return a, nil
}

func decimalPtrToString(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullStringToDecimalPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", ns.String, err)
	}
	return &d, nil
}

func nullIfZero(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
