// Package storage implements the persistence layer every engine's Store
// interface is defined against: plain database/sql over the three sqlite
// databases internal/database opens (ledger, cache, portfolio), no ORM.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
)

// AccountRepository persists accounts in the ledger database.
type AccountRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewAccountRepository(db *sql.DB, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{db: db, log: log.With().Str("repo", "accounts").Logger()}
}

func (r *AccountRepository) Create(a domain.Account) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(`
		INSERT INTO accounts (id, name, currency, account_type, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 'investment', ?, ?, ?)
	`, a.ID, a.Name, a.Currency, boolToInt(a.IsActive), now, now)
	if err != nil {
		return fmt.Errorf("storage: create account %s: %w", a.ID, err)
	}
	return nil
}

func (r *AccountRepository) Get(id string) (domain.Account, bool, error) {
	row := r.db.QueryRow(`SELECT id, name, currency, is_active, created_at FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("storage: get account %s: %w", id, err)
	}
	return a, true, nil
}

func (r *AccountRepository) ListActive() ([]domain.Account, error) {
	rows, err := r.db.Query(`SELECT id, name, currency, is_active, created_at FROM accounts WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("storage: list active accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var isActive int
	var createdAt string
	if err := row.Scan(&a.ID, &a.Name, &a.Currency, &isActive, &createdAt); err != nil {
		return domain.Account{}, err
	}
	a.IsActive = isActive != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decimalFromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}
