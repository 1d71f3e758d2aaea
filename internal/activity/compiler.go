package activity

import (
	"time"

	"github.com/aristath/wealthfolio-core/internal/domain"
)

// Store is the read side the compiler needs: every stored activity for an
// account, regardless of date range (the compiler applies the range filter
// itself so callers get identical semantics whether the range is applied
// in SQL or in memory).
type Store interface {
	ActivitiesForAccount(accountID string) ([]domain.Activity, error)
}

// Compiler transforms stored activities into the canonical event stream.
type Compiler struct {
	store Store
}

func New(store Store) *Compiler {
	return &Compiler{store: store}
}

// Compile returns the ordered, validated event stream for accountID. from
// and to are inclusive bounds on the activity timestamp; either may be nil
// for an open-ended range. Duplicate idempotency keys are dropped, keeping
// the first occurrence in the order the Store returns activities; an
// activity with an empty idempotency key is never treated as a duplicate.
func (c *Compiler) Compile(accountID string, from, to *time.Time) ([]Event, error) {
	activities, err := c.store.ActivitiesForAccount(accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(activities))
	events := make([]Event, 0, len(activities))

	for _, a := range activities {
		if from != nil && a.Timestamp.Before(*from) {
			continue
		}
		if to != nil && a.Timestamp.After(*to) {
			continue
		}

		key := a.IdempotencyKey
		if key != "" && seen[key] {
			continue
		}

		ev, err := compileOne(a)
		if err != nil {
			return nil, err
		}
		seen[key] = true
		events = append(events, ev)
	}

	sortEvents(events)
	return events, nil
}

// compileOne validates a single activity and resolves its (cash Δ,
// quantity Δ, lot Δ) effect per the activity taxonomy table. This is the
// single place that table is implemented; the snapshot engine only ever
// reads the resolved Event, never re-derives these semantics.
func compileOne(a domain.Activity) (Event, error) {
	switch a.Type {
	case domain.ActivityBuy:
		return compileBuy(a)
	case domain.ActivitySell:
		return compileSell(a)
	case domain.ActivityDividend:
		return compileIncome(a, false)
	case domain.ActivityInterest:
		return compileIncome(a, false)
	case domain.ActivityDeposit:
		return compileIncome(a, true)
	case domain.ActivityWithdrawal:
		return compileWithdrawal(a)
	case domain.ActivityTransferIn:
		return compileTransferIn(a)
	case domain.ActivityTransferOut:
		return compileTransferOut(a)
	case domain.ActivityFee:
		return compileCharge(a)
	case domain.ActivityTax:
		return compileCharge(a)
	case domain.ActivitySplit:
		return compileSplit(a)
	case domain.ActivityAddHolding:
		return compileAddHolding(a)
	case domain.ActivityRemoveHolding:
		return compileRemoveHolding(a)
	case domain.ActivityConversion:
		return compileConversion(a)
	default:
		return Event{}, validationError(a, "unrecognized activity type")
	}
}

// BUY: cash −(q·p + fee), quantity +q, push new lot.
func compileBuy(a domain.Activity) (Event, error) {
	if err := requireAsset(a); err != nil {
		return Event{}, err
	}
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	price, err := requireUnitPrice(a)
	if err != nil {
		return Event{}, err
	}
	cash := qty.Mul(price).Add(a.Fee).Neg()
	return Event{Activity: a, CashDelta: cash, QuantityDelta: qty, LotEffect: LotEffectPushNew}, nil
}

// SELL: cash +(q·p − fee), quantity −q, FIFO consume, realized gain emitted
// by the snapshot engine from the consumed lots' cost basis.
func compileSell(a domain.Activity) (Event, error) {
	if err := requireAsset(a); err != nil {
		return Event{}, err
	}
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	price, err := requireUnitPrice(a)
	if err != nil {
		return Event{}, err
	}
	cash := qty.Mul(price).Sub(a.Fee)
	return Event{Activity: a, CashDelta: cash, QuantityDelta: qty.Neg(), LotEffect: LotEffectConsumeFIFO}, nil
}

// DIVIDEND, INTEREST, DEPOSIT: cash +amount, no position change. DEPOSIT is
// additionally marked as a contribution.
func compileIncome(a domain.Activity, isContribution bool) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	amount, err := requireAmount(a)
	if err != nil {
		return Event{}, err
	}
	if amount.IsNegative() {
		return Event{}, validationError(a, "amount must be >= 0")
	}
	return Event{Activity: a, CashDelta: amount, IsContribution: isContribution}, nil
}

// WITHDRAWAL: cash −amount, counted as a negative contribution.
func compileWithdrawal(a domain.Activity) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	amount, err := requireAmount(a)
	if err != nil {
		return Event{}, err
	}
	if amount.IsNegative() {
		return Event{}, validationError(a, "amount must be >= 0")
	}
	return Event{Activity: a, CashDelta: amount.Neg(), IsContribution: true}, nil
}

// TRANSFER_IN: cash +amount or quantity +q with cost basis preserved.
// Contribution only when CounterpartyID is empty (the source is external,
// not another tracked account).
func compileTransferIn(a domain.Activity) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	isContribution := a.CounterpartyID == ""

	if a.AssetID == "" {
		amount, err := requireAmount(a)
		if err != nil {
			return Event{}, err
		}
		return Event{Activity: a, CashDelta: amount, IsContribution: isContribution}, nil
	}

	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	return Event{Activity: a, QuantityDelta: qty, LotEffect: LotEffectPushNew, IsContribution: isContribution}, nil
}

// TRANSFER_OUT: cash −amount or quantity −q, FIFO consume with basis
// exported to the receiving side (the snapshot engine, not this compiler,
// records the exported basis).
func compileTransferOut(a domain.Activity) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	isContribution := a.CounterpartyID == ""

	if a.AssetID == "" {
		amount, err := requireAmount(a)
		if err != nil {
			return Event{}, err
		}
		return Event{Activity: a, CashDelta: amount.Neg(), IsContribution: isContribution}, nil
	}

	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	return Event{Activity: a, QuantityDelta: qty.Neg(), LotEffect: LotEffectConsumeFIFO, IsContribution: isContribution}, nil
}

// FEE, TAX: cash −fee/−tax, no position change, never a contribution.
func compileCharge(a domain.Activity) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	amount, err := requireAmount(a)
	if err != nil {
		return Event{}, err
	}
	if amount.IsNegative() {
		return Event{}, validationError(a, "amount must be >= 0")
	}
	return Event{Activity: a, CashDelta: amount.Neg()}, nil
}

// SPLIT: no cash or net value change. Quantity delta is q·(r−1), where r is
// the split ratio numerator/denominator; the snapshot engine scales every
// existing lot's quantity and per-unit basis by r, not just the running
// total, so this event carries the ratio rather than a resolved quantity
// delta computed against the current position (the compiler doesn't know
// the current position; only the snapshot engine does).
func compileSplit(a domain.Activity) (Event, error) {
	if err := requireAsset(a); err != nil {
		return Event{}, err
	}
	if a.SplitNumerator <= 0 || a.SplitDenominator <= 0 {
		return Event{}, validationError(a, "split ratio numerator and denominator must be > 0")
	}
	return Event{Activity: a, LotEffect: LotEffectScale}, nil
}

// ADD_HOLDING: cash −fee only, quantity +q, push a lot at the supplied
// price. Not a contribution — it's a gift or an opening-balance correction,
// not capital the owner moved into the account.
func compileAddHolding(a domain.Activity) (Event, error) {
	if err := requireAsset(a); err != nil {
		return Event{}, err
	}
	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	if _, err := requireUnitPrice(a); err != nil {
		return Event{}, err
	}
	return Event{Activity: a, CashDelta: a.Fee.Neg(), QuantityDelta: qty, LotEffect: LotEffectPushNew}, nil
}

// REMOVE_HOLDING: cash −fee only, quantity −q, FIFO consume with no
// realized gain (a gift-out, not a sale).
func compileRemoveHolding(a domain.Activity) (Event, error) {
	if err := requireAsset(a); err != nil {
		return Event{}, err
	}
	qty, err := requireQuantity(a)
	if err != nil {
		return Event{}, err
	}
	return Event{Activity: a, CashDelta: a.Fee.Neg(), QuantityDelta: qty.Neg(), LotEffect: LotEffectConsumeFIFO}, nil
}

// CONVERSION: cash movement between two currencies within the same
// account. CashDelta is this activity's Amount as recorded, in its own
// Currency: a negative Amount debits that currency, a positive one credits
// it. Quantity and lots are untouched; no position to speak of. Not a
// contribution — capital never left the account. The other leg of the
// conversion is a separate Activity row in the other currency.
func compileConversion(a domain.Activity) (Event, error) {
	if err := requireCurrency(a); err != nil {
		return Event{}, err
	}
	amount, err := requireAmount(a)
	if err != nil {
		return Event{}, err
	}
	return Event{Activity: a, CashDelta: amount}, nil
}
