// Package snapshot folds a compiled activity stream into one
// AccountStateSnapshot per date with a material change. It is the only
// engine that understands FIFO lot accounting and realized gain; everything
// downstream (valuation, performance, holdings) reads its output and never
// re-derives a position from raw activities.
package snapshot

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source distinguishes a snapshot computed from compiled activities from
// one ingested directly by the user for a Holdings-mode account. The
// performance engine refuses TWR/MWR for accounts whose history mixes or
// consists entirely of SourceManualHoldings rows, since their cash-flow
// history is incomplete by construction.
type Source string

const (
	SourceCompiled        Source = "COMPILED"
	SourceManualHoldings  Source = "MANUAL_HOLDINGS"
)

// Lot is a single FIFO tax lot: a quantity acquired at a per-unit cost on a
// given date. SELL and TRANSFER_OUT consume lots oldest-first; a lot with
// Quantity == 0 has been fully consumed and is dropped from the deque.
type Lot struct {
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	AcquiredAt time.Time
}

// Position is one asset's open lots and their aggregate quantity and cost
// basis as of the snapshot date.
type Position struct {
	Quantity  decimal.Decimal
	Lots      []Lot
	CostBasis decimal.Decimal // Σ lot.Quantity * lot.UnitCost
}

// AccountStateSnapshot is the account's complete position and cash state as
// of a single date. Field names mirror the persisted row: positions and
// cash balances keyed by asset id / currency code, amounts in their native
// currency except the *Base fields.
type AccountStateSnapshot struct {
	ID        string
	AccountID string
	Date      time.Time
	Currency  string
	Source    Source

	Positions    map[string]Position    // asset id -> position
	CashBalances map[string]decimal.Decimal // currency -> balance

	CostBasis                decimal.Decimal
	NetContribution          decimal.Decimal // in account currency
	NetContributionBase      decimal.Decimal // in base currency, FX at contribution date
	CashTotalAccountCurrency decimal.Decimal
	CashTotalBaseCurrency    decimal.Decimal

	// RealizedGain is a running total per asset, aggregated across every
	// SELL this snapshot has ever folded in, never reset.
	RealizedGain map[string]decimal.Decimal

	CalculatedAt time.Time
}

func newSnapshot(accountID, currency string, date time.Time) *AccountStateSnapshot {
	return &AccountStateSnapshot{
		AccountID:    accountID,
		Date:         date,
		Currency:     currency,
		Source:       SourceCompiled,
		Positions:    make(map[string]Position),
		CashBalances: make(map[string]decimal.Decimal),
		RealizedGain: make(map[string]decimal.Decimal),
	}
}

// clone produces a deep-enough copy to carry forward as the next date's
// starting state without aliasing the previous snapshot's slices/maps.
func (s *AccountStateSnapshot) clone(date time.Time) *AccountStateSnapshot {
	out := newSnapshot(s.AccountID, s.Currency, date)
	out.Source = s.Source
	out.CostBasis = s.CostBasis
	out.NetContribution = s.NetContribution
	out.NetContributionBase = s.NetContributionBase
	out.CashTotalAccountCurrency = s.CashTotalAccountCurrency
	out.CashTotalBaseCurrency = s.CashTotalBaseCurrency

	for asset, pos := range s.Positions {
		lots := make([]Lot, len(pos.Lots))
		copy(lots, pos.Lots)
		out.Positions[asset] = Position{Quantity: pos.Quantity, Lots: lots, CostBasis: pos.CostBasis}
	}
	for ccy, bal := range s.CashBalances {
		out.CashBalances[ccy] = bal
	}
	for asset, gain := range s.RealizedGain {
		out.RealizedGain[asset] = gain
	}
	return out
}
