// Package resolver turns a canonical asset id into the provider-specific
// symbol a market-data client needs to request a quote, using a
// chain-of-responsibility: an explicit per-asset override is tried first,
// then deterministic rules derived from the asset's exchange/kind. A
// resolver that cannot handle a request returns ResolutionFailed, which is
// not a chain-level error — it tells the market-data client to try the next
// provider in priority order, not to abort the quote request.
package resolver

import (
	"fmt"

	"github.com/aristath/wealthfolio-core/internal/identifier"
)

// Source records which resolver in the chain produced a ResolvedSymbol.
type Source string

const (
	SourceOverride Source = "override"
	SourceRules    Source = "rules"
)

// ResolvedSymbol is the provider-facing symbol a resolver produced, along
// with where it came from.
type ResolvedSymbol struct {
	Symbol string
	Source Source
}

// ResolutionFailed signals that a resolver in the chain could not produce a
// symbol for this (asset, provider) pair. It is deliberately not wrapped as
// a Go error returned from Resolve — callers check the ok bool instead —
// since "this provider can't serve this asset" is routine chain-of-
// responsibility control flow, not a failure worth logging as an error.
type ResolutionFailed struct {
	AssetID  string
	Provider string
}

func (r ResolutionFailed) String() string {
	return fmt.Sprintf("resolver: no resolution for %s on provider %s", r.AssetID, r.Provider)
}

// Overrides maps assetID -> provider -> explicit provider-facing symbol. It
// is consulted before any rule-based derivation.
type Overrides interface {
	Lookup(assetID, provider string) (symbol string, ok bool)
}

// AssetRef is the minimal information a resolver needs about the asset
// being resolved. Kind comes from the stored Asset record rather than being
// re-derived from the id string, since a bare "<primary>:<qualifier>" id
// cannot reliably distinguish a security from a crypto pair.
type AssetRef struct {
	ID                string
	Kind              identifier.Kind
	ISIN              string // optional; enables the OpenFIGI fallback link when RulesResolver has no MIC mapping
	PreferredProvider string // empty means use provider priority order
}

// Resolver is one link in the chain. Resolve returns ok=false when this
// resolver cannot handle the request, signaling the chain to try the next
// link; it never treats "cannot handle" as an error.
type Resolver interface {
	Resolve(asset AssetRef, provider string) (ResolvedSymbol, bool)
}

// Chain tries each Resolver in order and returns the first hit.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds the standard resolution chain: AssetResolver (explicit
// overrides), then RulesResolver (deterministic MIC/currency-pair rules),
// then any extra resolvers supplied (e.g. an OpenFIGIResolver fallback for
// securities RulesResolver has no MIC mapping for).
func NewChain(overrides Overrides, extra ...Resolver) *Chain {
	resolvers := []Resolver{
		&AssetResolver{overrides: overrides},
		&RulesResolver{},
	}
	resolvers = append(resolvers, extra...)
	return &Chain{resolvers: resolvers}
}

// Resolve walks the chain and returns the first resolver's hit. If no
// resolver in the chain can handle the request, ok is false and the caller
// should treat this as ResolutionFailed for the given provider.
func (c *Chain) Resolve(asset AssetRef, provider string) (ResolvedSymbol, bool) {
	for _, r := range c.resolvers {
		if resolved, ok := r.Resolve(asset, provider); ok {
			return resolved, true
		}
	}
	return ResolvedSymbol{}, false
}

// AssetResolver is the first link: it returns a symbol only when the asset
// has an explicit provider override recorded.
type AssetResolver struct {
	overrides Overrides
}

func (a *AssetResolver) Resolve(asset AssetRef, provider string) (ResolvedSymbol, bool) {
	if a.overrides == nil {
		return ResolvedSymbol{}, false
	}
	symbol, ok := a.overrides.Lookup(asset.ID, provider)
	if !ok {
		return ResolvedSymbol{}, false
	}
	return ResolvedSymbol{Symbol: symbol, Source: SourceOverride}, true
}

// RulesResolver is the second link: it derives a provider symbol
// deterministically from the canonical asset id's kind, applying
// MIC->suffix mapping for securities and provider-specific pair formats for
// FX, crypto, and precious metals. It has no knowledge of any particular
// asset beyond what the id and kind encode.
type RulesResolver struct{}

func (r *RulesResolver) Resolve(asset AssetRef, provider string) (ResolvedSymbol, bool) {
	id, err := identifier.Parse(asset.ID)
	if err != nil {
		return ResolvedSymbol{}, false
	}
	id.Kind = asset.Kind

	switch id.Kind {
	case identifier.KindSecurity:
		return r.resolveSecurity(id, provider)
	case identifier.KindFxRate:
		return r.resolveFX(id, provider)
	case identifier.KindCrypto:
		return r.resolveCrypto(id, provider)
	case identifier.KindPrecious:
		return r.resolvePrecious(id, provider)
	default:
		return ResolvedSymbol{}, false
	}
}

func (r *RulesResolver) resolveSecurity(id identifier.AssetID, provider string) (ResolvedSymbol, bool) {
	switch provider {
	case "YAHOO":
		suffix, ok := identifier.YahooSuffixForMIC(id.Qualifier)
		if !ok {
			return ResolvedSymbol{}, false
		}
		return ResolvedSymbol{Symbol: id.Primary + suffix.Suffix, Source: SourceRules}, true
	case "ALPHA_VANTAGE":
		// Alpha Vantage's global-quote endpoint takes the bare ticker for
		// US-listed equities and does not support MIC-suffixed symbols for
		// most non-US exchanges.
		if id.Qualifier == "XNYS" || id.Qualifier == "XNAS" || id.Qualifier == "ARCX" {
			return ResolvedSymbol{Symbol: id.Primary, Source: SourceRules}, true
		}
		return ResolvedSymbol{}, false
	default:
		return ResolvedSymbol{}, false
	}
}

func (r *RulesResolver) resolveFX(id identifier.AssetID, provider string) (ResolvedSymbol, bool) {
	switch provider {
	case "YAHOO":
		return ResolvedSymbol{Symbol: id.Primary + id.Qualifier + "=X", Source: SourceRules}, true
	case "EXCHANGE_RATE_HOST":
		return ResolvedSymbol{Symbol: id.Primary + "/" + id.Qualifier, Source: SourceRules}, true
	default:
		return ResolvedSymbol{}, false
	}
}

func (r *RulesResolver) resolveCrypto(id identifier.AssetID, provider string) (ResolvedSymbol, bool) {
	switch provider {
	case "YAHOO":
		return ResolvedSymbol{Symbol: id.Primary + "-" + id.Qualifier, Source: SourceRules}, true
	default:
		return ResolvedSymbol{}, false
	}
}

func (r *RulesResolver) resolvePrecious(id identifier.AssetID, provider string) (ResolvedSymbol, bool) {
	switch provider {
	case "METAL_PRICE_API":
		// id.Qualifier holds the opaque metal ticker (e.g. "XAU") for a
		// "PREC:<id>" synthetic asset id.
		return ResolvedSymbol{Symbol: id.Qualifier, Source: SourceRules}, true
	default:
		return ResolvedSymbol{}, false
	}
}
