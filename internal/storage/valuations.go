package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/valuation"
)

// ValuationRepository persists DailyAccountValuations in the portfolio
// database and implements valuation.Store.
type ValuationRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewValuationRepository(db *sql.DB, log zerolog.Logger) *ValuationRepository {
	return &ValuationRepository{db: db, log: log.With().Str("repo", "valuations").Logger()}
}

// Overwrite implements valuation.Store: replaces every valuation row for
// accountID in [start, end] atomically.
func (r *ValuationRepository) Overwrite(accountID string, start, end time.Time, rows []valuation.DailyAccountValuation) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin valuation overwrite: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_account_valuations WHERE account_id = ? AND date >= ? AND date <= ?`,
		accountID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02")); err != nil {
		return fmt.Errorf("storage: clear valuation range: %w", err)
	}

	for _, v := range rows {
		staleAssetsJSON, err := json.Marshal(v.StaleAssets)
		if err != nil {
			return fmt.Errorf("storage: marshal stale assets: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO daily_account_valuations (
				account_id, date, account_currency, base_currency, fx_to_base, cash_balance_base,
				investment_market_value, total_value, cost_basis, net_contribution, net_contribution_base,
				calculated_at, stale, stale_assets_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(account_id, date) DO UPDATE SET
				account_currency = excluded.account_currency, base_currency = excluded.base_currency,
				fx_to_base = excluded.fx_to_base, cash_balance_base = excluded.cash_balance_base,
				investment_market_value = excluded.investment_market_value, total_value = excluded.total_value,
				cost_basis = excluded.cost_basis, net_contribution = excluded.net_contribution,
				net_contribution_base = excluded.net_contribution_base, calculated_at = excluded.calculated_at,
				stale = excluded.stale, stale_assets_json = excluded.stale_assets_json
		`,
			v.AccountID, v.Date.UTC().Format("2006-01-02"), v.AccountCurrency, v.BaseCurrency,
			v.FxToBase.String(), v.CashBalanceBase.String(), v.InvestmentMarketValue.String(),
			v.TotalValue.String(), v.CostBasis.String(), v.NetContribution.String(), v.NetContributionBase.String(),
			v.CalculatedAt.UTC().Format(time.RFC3339), boolToInt(v.Stale), string(staleAssetsJSON),
		); err != nil {
			return fmt.Errorf("storage: insert valuation %s@%s: %w", accountID, v.Date, err)
		}
	}

	return tx.Commit()
}

// ValuationsForAccount returns every valuation row in [start, end], ordered
// by date. Used by the performance engine and by API responses.
func (r *ValuationRepository) ValuationsForAccount(accountID string, start, end time.Time) ([]valuation.DailyAccountValuation, error) {
	rows, err := r.db.Query(`
		SELECT account_id, date, account_currency, base_currency, fx_to_base, cash_balance_base,
			investment_market_value, total_value, cost_basis, net_contribution, net_contribution_base,
			calculated_at, stale, stale_assets_json
		FROM daily_account_valuations
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, accountID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("storage: query valuations for %s: %w", accountID, err)
	}
	defer rows.Close()

	var out []valuation.DailyAccountValuation
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan valuation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanValuation(rows *sql.Rows) (valuation.DailyAccountValuation, error) {
	var v valuation.DailyAccountValuation
	var date, fxToBase, cashBase, marketValue, totalValue, costBasis, netContribution, netContributionBase string
	var calculatedAt, staleAssetsJSON string
	var stale int

	if err := rows.Scan(
		&v.AccountID, &date, &v.AccountCurrency, &v.BaseCurrency, &fxToBase, &cashBase,
		&marketValue, &totalValue, &costBasis, &netContribution, &netContributionBase,
		&calculatedAt, &stale, &staleAssetsJSON,
	); err != nil {
		return valuation.DailyAccountValuation{}, err
	}

	var err error
	if v.Date, err = time.Parse("2006-01-02", date); err != nil {
		return valuation.DailyAccountValuation{}, fmt.Errorf("parse date: %w", err)
	}
	if v.FxToBase, err = decimalFromString(fxToBase); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.CashBalanceBase, err = decimalFromString(cashBase); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.InvestmentMarketValue, err = decimalFromString(marketValue); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.TotalValue, err = decimalFromString(totalValue); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.CostBasis, err = decimalFromString(costBasis); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.NetContribution, err = decimalFromString(netContribution); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.NetContributionBase, err = decimalFromString(netContributionBase); err != nil {
		return valuation.DailyAccountValuation{}, err
	}
	if v.CalculatedAt, err = time.Parse(time.RFC3339, calculatedAt); err != nil {
		return valuation.DailyAccountValuation{}, fmt.Errorf("parse calculated_at: %w", err)
	}
	v.Stale = stale != 0
	if err := json.Unmarshal([]byte(staleAssetsJSON), &v.StaleAssets); err != nil {
		return valuation.DailyAccountValuation{}, fmt.Errorf("unmarshal stale assets: %w", err)
	}

	return v, nil
}
