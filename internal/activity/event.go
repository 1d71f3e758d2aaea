// Package activity compiles stored activities into the ordered, validated
// event stream the snapshot engine folds into per-account daily state. It
// never touches quotes or FX rates and never computes a position — it only
// decides what happened, in what order, and whether a row is a duplicate of
// one already compiled.
package activity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/domain"
)

// Event is one compiled, order-stable entry in the stream the snapshot
// engine consumes. It carries the source Activity plus the effect table
// from the activity taxonomy, pre-resolved so the snapshot engine never
// re-derives (cash Δ, quantity Δ, lot Δ) semantics itself.
type Event struct {
	Activity domain.Activity

	// CashDelta is the signed effect on the account's cash balance, in
	// Activity.Currency. Zero for pure position events (SPLIT).
	CashDelta decimal.Decimal

	// QuantityDelta is the signed effect on the asset's held quantity.
	// Zero for pure cash events.
	QuantityDelta decimal.Decimal

	// LotEffect classifies how QuantityDelta should be applied to the
	// FIFO lot deque.
	LotEffect LotEffect

	// IsContribution marks cash movements the performance engine treats as
	// external contributions/withdrawals rather than investment return.
	IsContribution bool
}

// LotEffect tells the snapshot engine how to apply an event's QuantityDelta
// to an asset's FIFO lot deque.
type LotEffect int

const (
	// LotEffectNone means the event carries no position change.
	LotEffectNone LotEffect = iota
	// LotEffectPushNew pushes a new lot (BUY, ADD_HOLDING, TRANSFER_IN with
	// quantity, cost basis preserved from the activity's unit price).
	LotEffectPushNew
	// LotEffectConsumeFIFO consumes existing lots oldest-first (SELL,
	// TRANSFER_OUT, REMOVE_HOLDING).
	LotEffectConsumeFIFO
	// LotEffectScale rescales every existing lot's quantity and per-unit
	// cost basis by a split ratio, without changing total cost.
	LotEffectScale
)

// IdempotencyKey hashes the externally meaningful fields of an activity:
// account, asset, type, timestamp truncated to seconds, quantity, price,
// currency, and an external origin marker. Two imported rows that agree on
// all of these are the same external fact and collapse to one.
func IdempotencyKey(a domain.Activity, externalOrigin string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s|%s|%s|%s",
		a.AccountID,
		a.AssetID,
		a.Type,
		a.Timestamp.Truncate(time.Second).Unix(),
		decimalOrEmpty(a.Quantity),
		decimalOrEmpty(a.UnitPrice),
		a.Currency,
		externalOrigin,
	)
	return hex.EncodeToString(h.Sum(nil))
}

func decimalOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// sortEvents orders events by (timestamp, stable activity id) so
// recomputation from the same input is always reproducible.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].Activity.Timestamp, events[j].Activity.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return events[i].Activity.ID < events[j].Activity.ID
	})
}

// isValidCurrencyCode reports whether s looks like a 3-letter ISO 4217 (or
// synthetic crypto/metal ticker) currency code. It does not validate
// against an actual ISO 4217 table; it only rejects obviously malformed
// input, which is all the compiler's contract requires.
func isValidCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func validationError(a domain.Activity, reason string) error {
	return fmt.Errorf("%w: activity %s (%s): %s", corerr.ErrInvalidActivity, a.ID, a.Type, reason)
}

func requireQuantity(a domain.Activity) (decimal.Decimal, error) {
	if a.Quantity == nil {
		return decimal.Zero, validationError(a, "quantity is required")
	}
	if a.Quantity.IsNegative() {
		return decimal.Zero, validationError(a, "quantity must be >= 0")
	}
	return *a.Quantity, nil
}

func requireUnitPrice(a domain.Activity) (decimal.Decimal, error) {
	if a.UnitPrice == nil {
		return decimal.Zero, validationError(a, "unit price is required")
	}
	if a.UnitPrice.IsNegative() {
		return decimal.Zero, validationError(a, "unit price must be >= 0")
	}
	return *a.UnitPrice, nil
}

func requireAmount(a domain.Activity) (decimal.Decimal, error) {
	if a.Amount == nil {
		return decimal.Zero, validationError(a, "amount is required")
	}
	return *a.Amount, nil
}

func requireCurrency(a domain.Activity) error {
	cur := strings.ToUpper(a.Currency)
	if !isValidCurrencyCode(cur) {
		return validationError(a, fmt.Sprintf("malformed currency code %q", a.Currency))
	}
	return nil
}

func requireAsset(a domain.Activity) error {
	if a.AssetID == "" {
		return validationError(a, "asset id is required")
	}
	return nil
}
