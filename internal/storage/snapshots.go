package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/snapshot"
)

// SnapshotRepository persists AccountStateSnapshots in the portfolio
// database and implements snapshot.Store.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, log: log.With().Str("repo", "snapshots").Logger()}
}

// LatestBefore implements snapshot.Store, returning nil if the account has
// no snapshot strictly before date.
func (r *SnapshotRepository) LatestBefore(accountID string, date time.Time) (*snapshot.AccountStateSnapshot, error) {
	row := r.db.QueryRow(`
		SELECT account_id, date, currency, source, positions_json, cash_balances_json,
			cost_basis, net_contribution, net_contribution_base, cash_total_account_currency,
			cash_total_base_currency, realized_gain_json, calculated_at
		FROM snapshots WHERE account_id = ? AND date < ?
		ORDER BY date DESC LIMIT 1
	`, accountID, date.UTC().Format("2006-01-02"))

	s, err := scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: latest snapshot before %s for %s: %w", date, accountID, err)
	}
	return s, nil
}

// Overwrite implements snapshot.Store: replaces every snapshot for
// accountID in [start, end] atomically.
func (r *SnapshotRepository) Overwrite(accountID string, start, end time.Time, snapshots []snapshot.AccountStateSnapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin snapshot overwrite: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE account_id = ? AND date >= ? AND date <= ?`,
		accountID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02")); err != nil {
		return fmt.Errorf("storage: clear snapshot range: %w", err)
	}

	for _, s := range snapshots {
		positionsJSON, err := json.Marshal(s.Positions)
		if err != nil {
			return fmt.Errorf("storage: marshal positions for %s@%s: %w", accountID, s.Date, err)
		}
		cashJSON, err := json.Marshal(s.CashBalances)
		if err != nil {
			return fmt.Errorf("storage: marshal cash balances: %w", err)
		}
		realizedJSON, err := json.Marshal(s.RealizedGain)
		if err != nil {
			return fmt.Errorf("storage: marshal realized gain: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO snapshots (
				account_id, date, currency, source, positions_json, cash_balances_json,
				cost_basis, net_contribution, net_contribution_base, cash_total_account_currency,
				cash_total_base_currency, realized_gain_json, calculated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(account_id, date) DO UPDATE SET
				currency = excluded.currency, source = excluded.source,
				positions_json = excluded.positions_json, cash_balances_json = excluded.cash_balances_json,
				cost_basis = excluded.cost_basis, net_contribution = excluded.net_contribution,
				net_contribution_base = excluded.net_contribution_base,
				cash_total_account_currency = excluded.cash_total_account_currency,
				cash_total_base_currency = excluded.cash_total_base_currency,
				realized_gain_json = excluded.realized_gain_json, calculated_at = excluded.calculated_at
		`,
			s.AccountID, s.Date.UTC().Format("2006-01-02"), s.Currency, string(s.Source),
			string(positionsJSON), string(cashJSON),
			s.CostBasis.String(), s.NetContribution.String(), s.NetContributionBase.String(),
			s.CashTotalAccountCurrency.String(), s.CashTotalBaseCurrency.String(),
			string(realizedJSON), s.CalculatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("storage: insert snapshot %s@%s: %w", accountID, s.Date, err)
		}
	}

	return tx.Commit()
}

// SnapshotsInRange returns every snapshot for accountID in [start, end],
// ordered by date. Not part of snapshot.Store; used by callers (the server)
// that need to feed a freshly rebuilt range into the valuation engine.
func (r *SnapshotRepository) SnapshotsInRange(accountID string, start, end time.Time) ([]snapshot.AccountStateSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT account_id, date, currency, source, positions_json, cash_balances_json,
			cost_basis, net_contribution, net_contribution_base, cash_total_account_currency,
			cash_total_base_currency, realized_gain_json, calculated_at
		FROM snapshots WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, accountID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("storage: query snapshots in range for %s: %w", accountID, err)
	}
	defer rows.Close()

	var out []snapshot.AccountStateSnapshot
	for rows.Next() {
		var s snapshot.AccountStateSnapshot
		var date, source, positionsJSON, cashJSON, realizedJSON, calculatedAt string
		var costBasis, netContribution, netContributionBase, cashAccount, cashBase string

		if err := rows.Scan(
			&s.AccountID, &date, &s.Currency, &source, &positionsJSON, &cashJSON,
			&costBasis, &netContribution, &netContributionBase, &cashAccount, &cashBase,
			&realizedJSON, &calculatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan snapshot row: %w", err)
		}

		if s.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("parse snapshot date %q: %w", date, err)
		}
		s.Source = snapshot.Source(source)
		if err := json.Unmarshal([]byte(positionsJSON), &s.Positions); err != nil {
			return nil, fmt.Errorf("unmarshal positions: %w", err)
		}
		if err := json.Unmarshal([]byte(cashJSON), &s.CashBalances); err != nil {
			return nil, fmt.Errorf("unmarshal cash balances: %w", err)
		}
		if err := json.Unmarshal([]byte(realizedJSON), &s.RealizedGain); err != nil {
			return nil, fmt.Errorf("unmarshal realized gain: %w", err)
		}
		if s.CostBasis, err = decimal.NewFromString(costBasis); err != nil {
			return nil, fmt.Errorf("parse cost_basis: %w", err)
		}
		if s.NetContribution, err = decimal.NewFromString(netContribution); err != nil {
			return nil, fmt.Errorf("parse net_contribution: %w", err)
		}
		if s.NetContributionBase, err = decimal.NewFromString(netContributionBase); err != nil {
			return nil, fmt.Errorf("parse net_contribution_base: %w", err)
		}
		if s.CashTotalAccountCurrency, err = decimal.NewFromString(cashAccount); err != nil {
			return nil, fmt.Errorf("parse cash_total_account_currency: %w", err)
		}
		if s.CashTotalBaseCurrency, err = decimal.NewFromString(cashBase); err != nil {
			return nil, fmt.Errorf("parse cash_total_base_currency: %w", err)
		}
		if s.CalculatedAt, err = time.Parse(time.RFC3339, calculatedAt); err != nil {
			return nil, fmt.Errorf("parse calculated_at: %w", err)
		}

		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSnapshot(row *sql.Row) (*snapshot.AccountStateSnapshot, error) {
	var s snapshot.AccountStateSnapshot
	var date, source, positionsJSON, cashJSON, realizedJSON, calculatedAt string
	var costBasis, netContribution, netContributionBase, cashAccount, cashBase string

	if err := row.Scan(
		&s.AccountID, &date, &s.Currency, &source, &positionsJSON, &cashJSON,
		&costBasis, &netContribution, &netContributionBase, &cashAccount, &cashBase,
		&realizedJSON, &calculatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if s.Date, err = time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("parse snapshot date %q: %w", date, err)
	}
	s.Source = snapshot.Source(source)

	if err := json.Unmarshal([]byte(positionsJSON), &s.Positions); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	if err := json.Unmarshal([]byte(cashJSON), &s.CashBalances); err != nil {
		return nil, fmt.Errorf("unmarshal cash balances: %w", err)
	}
	if err := json.Unmarshal([]byte(realizedJSON), &s.RealizedGain); err != nil {
		return nil, fmt.Errorf("unmarshal realized gain: %w", err)
	}

	if s.CostBasis, err = decimal.NewFromString(costBasis); err != nil {
		return nil, fmt.Errorf("parse cost_basis: %w", err)
	}
	if s.NetContribution, err = decimal.NewFromString(netContribution); err != nil {
		return nil, fmt.Errorf("parse net_contribution: %w", err)
	}
	if s.NetContributionBase, err = decimal.NewFromString(netContributionBase); err != nil {
		return nil, fmt.Errorf("parse net_contribution_base: %w", err)
	}
	if s.CashTotalAccountCurrency, err = decimal.NewFromString(cashAccount); err != nil {
		return nil, fmt.Errorf("parse cash_total_account_currency: %w", err)
	}
	if s.CashTotalBaseCurrency, err = decimal.NewFromString(cashBase); err != nil {
		return nil, fmt.Errorf("parse cash_total_base_currency: %w", err)
	}
	if s.CalculatedAt, err = time.Parse(time.RFC3339, calculatedAt); err != nil {
		return nil, fmt.Errorf("parse calculated_at: %w", err)
	}

	return &s, nil
}
