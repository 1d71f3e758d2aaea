package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/clients/openfigi"
	"github.com/aristath/wealthfolio-core/internal/identifier"
)

type fakeISINLookup struct {
	result *openfigi.MappingResult
	err    error
}

func (f fakeISINLookup) LookupISINForExchange(isin, exchCode string) (*openfigi.MappingResult, error) {
	return f.result, f.err
}

func TestOpenFIGIResolverResolvesTickerFromISIN(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}}

	resolved, ok := r.Resolve(AssetRef{ID: "UNKNOWN:XTSE", Kind: identifier.KindSecurity, ISIN: "CA82509L1076"}, "ALPHA_VANTAGE")
	require.True(t, ok)
	assert.Equal(t, "SHOP", resolved.Symbol)
	assert.Equal(t, SourceRules, resolved.Source)
}

func TestOpenFIGIResolverRequiresISIN(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}}

	_, ok := r.Resolve(AssetRef{ID: "UNKNOWN:XTSE", Kind: identifier.KindSecurity}, "ALPHA_VANTAGE")
	assert.False(t, ok)
}

func TestOpenFIGIResolverSkipsUnsupportedProvider(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}}

	_, ok := r.Resolve(AssetRef{ID: "UNKNOWN:XTSE", Kind: identifier.KindSecurity, ISIN: "CA82509L1076"}, "YAHOO")
	assert.False(t, ok)
}

func TestOpenFIGIResolverSkipsNonSecurityKinds(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}}

	_, ok := r.Resolve(AssetRef{ID: "EUR:USD", Kind: identifier.KindFxRate, ISIN: "CA82509L1076"}, "ALPHA_VANTAGE")
	assert.False(t, ok)
}

func TestOpenFIGIResolverUnknownMICFails(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}}

	_, ok := r.Resolve(AssetRef{ID: "UNKNOWN:ZZZZ", Kind: identifier.KindSecurity, ISIN: "CA82509L1076"}, "ALPHA_VANTAGE")
	assert.False(t, ok)
}

func TestOpenFIGIResolverFailsOnClientError(t *testing.T) {
	r := &OpenFIGIResolver{client: fakeISINLookup{err: errors.New("rate limited")}}

	_, ok := r.Resolve(AssetRef{ID: "UNKNOWN:XTSE", Kind: identifier.KindSecurity, ISIN: "CA82509L1076"}, "ALPHA_VANTAGE")
	assert.False(t, ok)
}

func TestChainWiresOpenFIGIResolverAsFallback(t *testing.T) {
	chain := NewChain(nil, &OpenFIGIResolver{client: fakeISINLookup{result: &openfigi.MappingResult{Ticker: "SHOP"}}})

	resolved, ok := chain.Resolve(AssetRef{ID: "UNKNOWN:XTSE", Kind: identifier.KindSecurity, ISIN: "CA82509L1076"}, "ALPHA_VANTAGE")
	require.True(t, ok)
	assert.Equal(t, "SHOP", resolved.Symbol)
}
