// Package valuation marks a snapshot engine's account state to market:
// it turns positions and cash balances into base-currency monetary values.
// It never mutates a position and never decides what a price "should" be —
// price selection delegates to QuoteStore, FX translation to fx.Graph.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/snapshot"
)

// DailyAccountValuation is one account's mark-to-market state for one date,
// entirely in base currency except the carried account-currency fields.
type DailyAccountValuation struct {
	AccountID          string
	Date               time.Time
	AccountCurrency    string
	BaseCurrency       string
	FxToBase           decimal.Decimal
	CashBalanceBase    decimal.Decimal
	InvestmentMarketValue decimal.Decimal
	TotalValue         decimal.Decimal
	CostBasis          decimal.Decimal
	NetContribution    decimal.Decimal
	NetContributionBase decimal.Decimal
	CalculatedAt       time.Time

	// Stale is true when at least one position had no resolvable price on
	// or before Date, or when an FX rate to the base currency could not be
	// found (for the account currency, a cash balance, or a price
	// currency). Such positions and cash balances are excluded from the
	// totals rather than counted as zero and are listed in StaleAssets
	// (cash as "CASH:<currency>").
	Stale        bool
	StaleAssets  []string
}

// QuoteStore resolves the latest priced observation for an asset on or
// before a date, applying the manual-quote-shadows-provider-quote rule
// internally — callers never see more than one candidate per asset.
type QuoteStore interface {
	LatestQuoteOnOrBefore(assetID string, date time.Time) (domain.Quote, bool, error)
}

// PurchasePriceStore supplies the last-resort fallback price for
// alternative assets (property, vehicle, collectible, precious metal,
// other) that carry no market quote history.
type PurchasePriceStore interface {
	PurchasePrice(assetID string) (decimal.Decimal, string, bool, error) // price, currency, ok
}

// Store persists valuation rows across an atomic overwrite window,
// mirroring the snapshot engine's overwrite-for-range contract.
type Store interface {
	Overwrite(accountID string, start, end time.Time, rows []DailyAccountValuation) error
}

// Engine computes DailyAccountValuation rows from AccountStateSnapshots.
type Engine struct {
	quotes    QuoteStore
	purchase  PurchasePriceStore
	fxGraph   *fx.Graph
	store     Store
	baseCcy   string
}

func New(quotes QuoteStore, purchase PurchasePriceStore, fxGraph *fx.Graph, store Store, baseCurrency string) *Engine {
	return &Engine{quotes: quotes, purchase: purchase, fxGraph: fxGraph, store: store, baseCcy: baseCurrency}
}

// Value computes and persists a DailyAccountValuation for every snapshot
// given, overwriting [start, end] atomically.
func (e *Engine) Value(accountID string, start, end time.Time, snapshots []snapshot.AccountStateSnapshot) error {
	rows := make([]DailyAccountValuation, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, e.valueOne(s))
	}
	return e.store.Overwrite(accountID, start, end, rows)
}

func (e *Engine) valueOne(s snapshot.AccountStateSnapshot) DailyAccountValuation {
	row := DailyAccountValuation{
		AccountID:           s.AccountID,
		Date:                s.Date,
		AccountCurrency:     s.Currency,
		BaseCurrency:        e.baseCcy,
		CostBasis:           s.CostBasis,
		NetContribution:     s.NetContribution,
		NetContributionBase: s.NetContributionBase,
		CalculatedAt:        time.Now(),
	}

	fxRate, err := e.fxGraph.At(s.Currency, e.baseCcy, s.Date)
	if err != nil {
		fxRate = decimal.Zero
		row.Stale = true
	}
	row.FxToBase = fxRate

	cashBase := decimal.Zero
	for ccy, bal := range s.CashBalances {
		rate, err := e.fxGraph.At(ccy, e.baseCcy, s.Date)
		if err != nil {
			row.Stale = true
			row.StaleAssets = append(row.StaleAssets, "CASH:"+ccy)
			continue
		}
		cashBase = cashBase.Add(bal.Mul(rate))
	}
	row.CashBalanceBase = cashBase

	investmentValue := decimal.Zero
	for assetID, pos := range s.Positions {
		if pos.Quantity.IsZero() {
			continue
		}
		price, priceCcy, ok := e.resolvePrice(assetID, s.Date)
		if !ok {
			row.Stale = true
			row.StaleAssets = append(row.StaleAssets, assetID)
			continue
		}
		rate, err := e.fxGraph.At(priceCcy, e.baseCcy, s.Date)
		if err != nil {
			row.Stale = true
			row.StaleAssets = append(row.StaleAssets, assetID)
			continue
		}
		investmentValue = investmentValue.Add(pos.Quantity.Mul(price).Mul(rate))
	}
	row.InvestmentMarketValue = investmentValue

	row.TotalValue = row.InvestmentMarketValue.Add(row.CashBalanceBase)
	return row
}

// resolvePrice applies the price selection policy: latest quote with
// timestamp <= date from the QuoteStore (which already applies the
// manual-shadows-provider rule), falling back to the asset's recorded
// purchase price only when no quote exists at all.
func (e *Engine) resolvePrice(assetID string, date time.Time) (price decimal.Decimal, currency string, ok bool) {
	if q, found, err := e.quotes.LatestQuoteOnOrBefore(assetID, date); err == nil && found {
		return q.Price, q.Currency, true
	}
	if e.purchase != nil {
		if p, ccy, found, err := e.purchase.PurchasePrice(assetID); err == nil && found {
			return p, ccy, true
		}
	}
	return decimal.Zero, "", false
}
