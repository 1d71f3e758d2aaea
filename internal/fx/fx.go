// Package fx maintains the latest and historical exchange rates needed to
// translate account-currency amounts into the reporting base currency.
//
// Rates are encoded as specialized quotes under the "CCY1:CCY2" asset id so
// they share the quote store, sync cadence, and audit trail with market
// quotes (see internal/identifier.FxID). The graph stores each pair
// explicitly in both directions, so conversion is always a single
// multiplication, never a two-hop walk through a third currency.
package fx

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
)

// Store is the persistence boundary the Graph reads and writes through.
// Concrete implementations live in internal/storage.
type Store interface {
	// UpsertRate records (or overwrites) the rate for from->to on date.
	UpsertRate(from, to string, date time.Time, rate decimal.Decimal, source string) error
	// LatestRate returns the most recent rate for from->to, if any.
	LatestRate(from, to string) (decimal.Decimal, time.Time, bool, error)
	// RateOnOrBefore returns the most recent rate for from->to with a date
	// at or before asOf.
	RateOnOrBefore(from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error)
	// RegisteredPairs returns every (from, to) pair ever registered, so the
	// sync layer knows what to keep fetching.
	RegisteredPairs() ([][2]string, error)
	// RegisterPair records that a pair should be kept in sync going forward.
	RegisterPair(from, to string) error
}

// Graph resolves currency conversions against a Store.
type Graph struct {
	store Store
}

// New builds a Graph backed by store.
func New(store Store) *Graph {
	return &Graph{store: store}
}

// Latest returns the most recent known rate for base->quote.
func (g *Graph) Latest(base, quote string) (decimal.Decimal, error) {
	if base == quote {
		return decimal.NewFromInt(1), nil
	}
	rate, _, ok, err := g.store.LatestRate(base, quote)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: latest rate %s/%s: %w", base, quote, err)
	}
	if !ok {
		return decimal.Zero, &corerr.FxUnresolvedError{From: base, To: quote, Date: time.Now()}
	}
	return rate, nil
}

// At returns the most recent rate for base->quote observed on or before
// date. It never fabricates a future rate: if the earliest known rate is
// after date, resolution fails.
func (g *Graph) At(base, quote string, date time.Time) (decimal.Decimal, error) {
	if base == quote {
		return decimal.NewFromInt(1), nil
	}
	rate, _, ok, err := g.store.RateOnOrBefore(base, quote, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: rate %s/%s at %s: %w", base, quote, date.Format("2006-01-02"), err)
	}
	if !ok {
		return decimal.Zero, &corerr.FxUnresolvedError{From: base, To: quote, Date: date}
	}
	return rate, nil
}

// Convert converts amount from one currency to another, optionally as of a
// historical date. With no date, the latest known rate is used.
func (g *Graph) Convert(amount decimal.Decimal, from, to string, date ...time.Time) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	var rate decimal.Decimal
	var err error
	if len(date) > 0 {
		rate, err = g.At(from, to, date[0])
	} else {
		rate, err = g.Latest(from, to)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// RegisterPair ensures the provider sync layer fetches from:to going
// forward. It also seeds the inverse pair's registration so both directions
// stay explicit in the store, per the "never a two-hop" invariant.
func (g *Graph) RegisterPair(a, b string) error {
	if a == b {
		return nil
	}
	if err := g.store.RegisterPair(a, b); err != nil {
		return fmt.Errorf("fx: register pair %s/%s: %w", a, b, err)
	}
	if err := g.store.RegisterPair(b, a); err != nil {
		return fmt.Errorf("fx: register inverse pair %s/%s: %w", b, a, err)
	}
	return nil
}

// RecordRate stores an observed rate for from->to and its arithmetic
// inverse for to->from, keeping both directions current in a single write.
func (g *Graph) RecordRate(from, to string, date time.Time, rate decimal.Decimal, source string) error {
	if from == to {
		return nil
	}
	if err := g.store.UpsertRate(from, to, date, rate, source); err != nil {
		return fmt.Errorf("fx: record rate %s/%s: %w", from, to, err)
	}
	inverse := decimal.NewFromInt(1).Div(rate)
	if err := g.store.UpsertRate(to, from, date, inverse, source); err != nil {
		return fmt.Errorf("fx: record inverse rate %s/%s: %w", to, from, err)
	}
	return nil
}

// RegisteredPairs returns every distinct currency pair the graph has been
// asked to keep synced, sorted for deterministic iteration by callers that
// fan out one sync request per pair.
func (g *Graph) RegisteredPairs() ([][2]string, error) {
	pairs, err := g.store.RegisteredPairs()
	if err != nil {
		return nil, fmt.Errorf("fx: registered pairs: %w", err)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs, nil
}

// ParseSymbol accepts the canonical "EUR:USD" encoding as well as three
// legacy encodings — slash ("EUR/USD"), bare pair ("EURUSD"), and the Yahoo
// suffix form ("EURUSD=X") — and returns the canonical (from, to) pair.
func ParseSymbol(symbol string) (from, to string, err error) {
	s := symbol
	if len(s) > 2 && s[len(s)-2:] == "=X" {
		s = s[:len(s)-2]
	}
	for i, r := range s {
		if r == ':' || r == '/' {
			return s[:i], s[i+1:], nil
		}
	}
	if len(s) == 6 {
		return s[:3], s[3:], nil
	}
	return "", "", fmt.Errorf("fx: %q is not a recognized FX symbol encoding", symbol)
}

// MakeSymbol builds the canonical "FROM:TO" FX asset id.
func MakeSymbol(from, to string) string {
	return identifier.FxID(from, to)
}
