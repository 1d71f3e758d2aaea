package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/resolver"
)

// CapabilityAware is implemented by providers that only serve a subset of
// asset kinds (e.g. a metals API that can't price an equity). A provider
// that doesn't implement it is treated as capable of every kind.
type CapabilityAware interface {
	Capabilities() []identifier.Kind
}

func supportsKind(provider Provider, kind identifier.Kind) bool {
	ca, ok := provider.(CapabilityAware)
	if !ok {
		return true
	}
	for _, k := range ca.Capabilities() {
		if k == kind {
			return true
		}
	}
	return false
}

const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 5 * time.Minute
)

// entry pairs a Provider with its own rate limiter and circuit breaker.
// Providers are tried in registration order, which callers should set to
// their preferred priority (e.g. a paid provider before a free fallback).
type entry struct {
	provider Provider
	limiter  *rate.Limiter
	breaker  *circuitBreaker
}

// Registry orders providers by priority and, for each quote request, tries
// them in turn: resolve the asset's symbol for that provider, check the
// breaker and rate limiter, call it, and classify the outcome. A
// ResolutionFailed from the resolver chain is treated exactly like
// RetryNextProvider — it just means this provider can't serve this asset.
type Registry struct {
	entries []*entry
	chain   *resolver.Chain
	log     zerolog.Logger
}

// NewRegistry builds an empty registry. Call Register for each provider in
// priority order.
func NewRegistry(chain *resolver.Chain, log zerolog.Logger) *Registry {
	return &Registry{
		chain: chain,
		log:   log.With().Str("component", "marketdata_registry").Logger(),
	}
}

// Register adds a provider at the end of the priority order with a token
// bucket allowing ratePerSecond requests/sec (burst of 1) and a circuit
// breaker that opens after defaultMaxFailures consecutive penalized
// failures and probes again after defaultResetTimeout.
func (r *Registry) Register(p Provider, ratePerSecond float64) {
	r.entries = append(r.entries, &entry{
		provider: p,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		breaker:  newCircuitBreaker(p.ID(), defaultMaxFailures, defaultResetTimeout, r.log),
	})
}

// FetchQuote walks the provider chain for assetID, resolving a
// provider-specific symbol at each step. The asset's preferred provider, if
// any, is tried first provided it's capable of this asset's kind and its
// circuit is closed; every other provider is tried in registration order.
// It returns the first successful quote, or a combined error once every
// provider has been tried (or skipped because its breaker is open or it
// lacks the capability).
func (r *Registry) FetchQuote(ctx context.Context, asset resolver.AssetRef) (Quote, error) {
	var lastErr error
	attempted := 0

	for _, e := range r.orderedEntries(asset) {
		if !supportsKind(e.provider, asset.Kind) {
			r.log.Debug().Str("provider", e.provider.ID()).Str("kind", string(asset.Kind)).Msg("skipping provider, kind unsupported")
			continue
		}

		if !e.breaker.canAttempt() {
			r.log.Debug().Str("provider", e.provider.ID()).Msg("skipping provider, circuit open")
			continue
		}

		symbol, ok := r.chain.Resolve(asset, e.provider.ID())
		if !ok {
			// ResolutionFailed: this provider has no way to represent the
			// asset. Not a breaker-relevant failure.
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return Quote{}, fmt.Errorf("marketdata: rate limiter wait for %s: %w", e.provider.ID(), err)
		}

		attempted++
		quote, err := e.provider.FetchQuote(ctx, symbol.Symbol)
		if err == nil {
			e.breaker.recordSuccess()
			return quote, nil
		}

		lastErr = err
		switch classify(err) {
		case corerr.RetryNever:
			return Quote{}, err
		case corerr.RetryFailoverWithPenalty:
			e.breaker.recordFailure()
		case corerr.RetryNextProvider:
			// no penalty, just move on
		case corerr.RetryCircuitOpen:
			// provider already reported its own breaker open; nothing to record
		}
	}

	if attempted == 0 {
		return Quote{}, fmt.Errorf("marketdata: no provider could resolve or serve asset %s: %w", asset.ID, corerr.ErrNotFound)
	}
	return Quote{}, fmt.Errorf("marketdata: all providers exhausted for asset %s: %w", asset.ID, lastErr)
}

// orderedEntries returns the registry's entries with asset.PreferredProvider
// moved to the front, when it names a registered provider that can serve
// this asset's kind and whose breaker currently allows an attempt.
// Otherwise the registration-order slice is returned unchanged.
func (r *Registry) orderedEntries(asset resolver.AssetRef) []*entry {
	if asset.PreferredProvider == "" {
		return r.entries
	}

	rest := make([]*entry, 0, len(r.entries))
	var preferred *entry
	for _, e := range r.entries {
		if preferred == nil && e.provider.ID() == asset.PreferredProvider {
			preferred = e
			continue
		}
		rest = append(rest, e)
	}

	if preferred == nil || !supportsKind(preferred.provider, asset.Kind) || !preferred.breaker.canAttempt() {
		return r.entries
	}

	ordered := make([]*entry, 0, len(r.entries))
	ordered = append(ordered, preferred)
	return append(ordered, rest...)
}

// CircuitStates reports every registered provider's current breaker state
// ("closed", "half_open", or "open"), keyed by provider ID.
func (r *Registry) CircuitStates() map[string]string {
	states := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		states[e.provider.ID()] = e.breaker.State()
	}
	return states
}
