// Package corerr defines the structured error taxonomy shared by every
// engine in the portfolio core. Callers distinguish error classes with
// errors.Is / errors.As rather than string matching.
package corerr

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors callers can compare against with errors.Is.
var (
	ErrNotFound            = errors.New("corerr: resource not found")
	ErrConcurrencyConflict = errors.New("corerr: concurrent modification conflict")
	ErrInvalidActivity     = errors.New("corerr: activity fails validation")
)

// FxUnresolvedError reports that no exchange rate path exists between two
// currencies on or before a given date.
type FxUnresolvedError struct {
	From string
	To   string
	Date time.Time
}

func (e *FxUnresolvedError) Error() string {
	return fmt.Sprintf("corerr: no FX rate path %s->%s on or before %s", e.From, e.To, e.Date.Format("2006-01-02"))
}

// QuoteUnavailableError reports that no quote could be resolved for an asset
// on or before a given date, even after applying the historical-quote
// fallback window.
type QuoteUnavailableError struct {
	AssetID string
	Date    time.Time
}

func (e *QuoteUnavailableError) Error() string {
	return fmt.Sprintf("corerr: no quote available for %s on or before %s", e.AssetID, e.Date.Format("2006-01-02"))
}

// InsufficientSharesError reports that a SELL or TRANSFER_OUT activity would
// take a FIFO lot ledger negative.
type InsufficientSharesError struct {
	AssetID   string
	Requested string // decimal.Decimal.String(), kept as string to avoid importing decimal here
	Available string
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("corerr: insufficient shares of %s: requested %s, available %s", e.AssetID, e.Requested, e.Available)
}

// RetryClass classifies how a market-data provider error should be handled
// by the provider registry's failover logic.
type RetryClass int

const (
	// RetryNever means the error is terminal for this request; do not retry
	// on any provider (e.g. malformed symbol, unsupported asset kind).
	RetryNever RetryClass = iota
	// RetryFailoverWithPenalty means try the next provider in priority order
	// and record a circuit-breaker failure against the current one (e.g.
	// HTTP 429, timeout, 5xx).
	RetryFailoverWithPenalty
	// RetryNextProvider means try the next provider, but do not penalize the
	// current one (e.g. the provider legitimately does not cover this asset
	// kind or market).
	RetryNextProvider
	// RetryCircuitOpen means the provider's breaker is already open; skip it
	// without attempting the call.
	RetryCircuitOpen
)

func (c RetryClass) String() string {
	switch c {
	case RetryNever:
		return "never"
	case RetryFailoverWithPenalty:
		return "failover_with_penalty"
	case RetryNextProvider:
		return "next_provider"
	case RetryCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// ProviderError wraps an error from a market-data provider with the
// RetryClass the provider registry should apply.
type ProviderError struct {
	Provider string
	Class    RetryClass
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("corerr: provider %s (%s): %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
