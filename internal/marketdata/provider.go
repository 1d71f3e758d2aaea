// Package marketdata fetches quotes from external providers through a
// priority-ordered, circuit-breaker-protected registry. It never decides
// what symbol to ask a provider for — that is internal/resolver's job — and
// never decides whether a rate is fresh enough to use — that is
// internal/sync's job. It only answers "can provider P serve asset A right
// now, and if so what did it return".
package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/corerr"
)

// Quote is a single priced observation returned by a provider.
type Quote struct {
	Price    decimal.Decimal
	Currency string
	AsOf     time.Time
}

// Provider fetches a quote for a provider-specific symbol. Implementations
// never retry internally; retry/failover policy lives in the Registry.
type Provider interface {
	// ID is the provider's stable identifier, e.g. "YAHOO", "ALPHA_VANTAGE".
	ID() string
	// FetchQuote fetches the latest quote for symbol. On failure it returns
	// a *corerr.ProviderError carrying the RetryClass the registry should
	// apply.
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

// classify extracts the RetryClass from err, defaulting to
// RetryFailoverWithPenalty for errors a provider implementation did not
// explicitly classify (the conservative choice: penalize and move on,
// rather than silently retrying a broken provider forever).
func classify(err error) corerr.RetryClass {
	if pe, ok := err.(*corerr.ProviderError); ok {
		return pe.Class
	}
	return corerr.RetryFailoverWithPenalty
}
