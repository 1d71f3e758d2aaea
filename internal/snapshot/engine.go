package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/activity"
	"github.com/aristath/wealthfolio-core/internal/corerr"
)

// Store is the persistence contract the engine needs. Overwrite is the one
// write path: an atomic delete-and-insert over [start, end] that makes
// recomputation idempotent regardless of how many times a range is rebuilt.
type Store interface {
	LatestBefore(accountID string, date time.Time) (*AccountStateSnapshot, error) // nil if none
	Overwrite(accountID string, start, end time.Time, snapshots []AccountStateSnapshot) error
}

// Engine folds a compiled activity stream into one AccountStateSnapshot per
// date with a material change, FIFO lot accounting and realized gain
// included.
type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

// Rebuild recomputes snapshots for accountID over [start, end] from events
// (already ordered by the activity compiler) and overwrites that range
// atomically. events outside [start, end] are ignored by the caller's
// responsibility — the engine trusts the range it's given.
func (e *Engine) Rebuild(accountID, currency string, start, end time.Time, events []activity.Event) error {
	prior, err := e.store.LatestBefore(accountID, start)
	if err != nil {
		return err
	}

	state := newSnapshot(accountID, currency, start)
	if prior != nil {
		state = prior.clone(start)
	}

	byDate := groupByDate(events)
	dates := sortedDates(byDate)

	snapshots := make([]AccountStateSnapshot, 0, len(dates))
	for _, d := range dates {
		state = state.clone(d)
		for _, ev := range byDate[d] {
			if err := apply(state, ev); err != nil {
				return err
			}
		}
		recomputeTotals(state)
		state.CalculatedAt = time.Now()
		snapshots = append(snapshots, *state)
	}

	return e.store.Overwrite(accountID, start, end, snapshots)
}

func groupByDate(events []activity.Event) map[time.Time][]activity.Event {
	out := make(map[time.Time][]activity.Event)
	for _, ev := range events {
		d := ev.Activity.Timestamp.Truncate(24 * time.Hour)
		out[d] = append(out[d], ev)
	}
	return out
}

func sortedDates(byDate map[time.Time][]activity.Event) []time.Time {
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// apply folds one event into state per the activity taxonomy's (cash Δ,
// quantity Δ, lot Δ) contract. The compiler has already validated and
// resolved the event; this is purely mechanical bookkeeping.
func apply(state *AccountStateSnapshot, ev activity.Event) error {
	a := ev.Activity

	if !ev.CashDelta.IsZero() {
		state.CashBalances[a.Currency] = state.CashBalances[a.Currency].Add(ev.CashDelta)
	}
	if ev.IsContribution {
		state.NetContribution = state.NetContribution.Add(ev.CashDelta)
	}

	switch ev.LotEffect {
	case activity.LotEffectNone:
		// no position change
	case activity.LotEffectPushNew:
		pos := state.Positions[a.AssetID]
		price := decimal.Zero
		if a.UnitPrice != nil {
			price = *a.UnitPrice
		}
		pos.Lots = append(pos.Lots, Lot{Quantity: ev.QuantityDelta, UnitCost: price, AcquiredAt: a.Timestamp})
		pos.Quantity = pos.Quantity.Add(ev.QuantityDelta)
		pos.CostBasis = pos.CostBasis.Add(ev.QuantityDelta.Mul(price))
		state.Positions[a.AssetID] = pos
	case activity.LotEffectConsumeFIFO:
		pos, ok := state.Positions[a.AssetID]
		consume := ev.QuantityDelta.Neg() // QuantityDelta is negative for consuming events
		if !ok || pos.Quantity.LessThan(consume) {
			available := decimal.Zero
			if ok {
				available = pos.Quantity
			}
			return &corerr.InsufficientSharesError{AssetID: a.AssetID, Requested: consume.String(), Available: available.String()}
		}

		proceeds := decimal.Zero
		if a.Type == "SELL" && a.UnitPrice != nil {
			proceeds = consume.Mul(*a.UnitPrice).Sub(a.Fee)
		}

		remaining := consume
		costConsumed := decimal.Zero
		lots := pos.Lots
		i := 0
		for remaining.IsPositive() && i < len(lots) {
			lot := lots[i]
			if lot.Quantity.IsZero() {
				i++
				continue
			}
			take := lot.Quantity
			if take.GreaterThan(remaining) {
				take = remaining
			}
			costConsumed = costConsumed.Add(take.Mul(lot.UnitCost))
			lots[i].Quantity = lot.Quantity.Sub(take)
			remaining = remaining.Sub(take)
			if lots[i].Quantity.IsZero() {
				i++
			}
		}
		pos.Lots = compactLots(lots[i:])
		pos.Quantity = pos.Quantity.Sub(consume)
		pos.CostBasis = pos.CostBasis.Sub(costConsumed)
		state.Positions[a.AssetID] = pos

		if a.Type == "SELL" {
			gain := proceeds.Sub(costConsumed)
			state.RealizedGain[a.AssetID] = state.RealizedGain[a.AssetID].Add(gain)
		}
	case activity.LotEffectScale:
		pos, ok := state.Positions[a.AssetID]
		if !ok {
			return fmt.Errorf("snapshot: split on %s with no open position", a.AssetID)
		}
		ratio := decimal.NewFromInt(a.SplitNumerator).Div(decimal.NewFromInt(a.SplitDenominator))
		for i, lot := range pos.Lots {
			pos.Lots[i].Quantity = lot.Quantity.Mul(ratio)
			if !ratio.IsZero() {
				pos.Lots[i].UnitCost = lot.UnitCost.Div(ratio)
			}
		}
		pos.Quantity = pos.Quantity.Mul(ratio)
		// CostBasis is invariant under a split by definition.
		state.Positions[a.AssetID] = pos
	}

	return nil
}

func compactLots(lots []Lot) []Lot {
	out := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// recomputeTotals derives the aggregate fields from the folded position and
// cash state. CashTotalAccountCurrency is the plain sum of every currency's
// balance, with no FX translation. CashTotalBaseCurrency and
// NetContributionBase need FX translation, which this engine does not
// perform; they stay at their carried-forward value here.
func recomputeTotals(state *AccountStateSnapshot) {
	total := decimal.Zero
	for _, bal := range state.CashBalances {
		total = total.Add(bal)
	}
	state.CashTotalAccountCurrency = total

	costBasis := decimal.Zero
	for _, pos := range state.Positions {
		costBasis = costBasis.Add(pos.CostBasis)
	}
	state.CostBasis = costBasis
}
