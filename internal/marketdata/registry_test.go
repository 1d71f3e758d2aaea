package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/resolver"
)

type stubProvider struct {
	id      string
	quote   Quote
	err     error
	calls   int
}

func (s *stubProvider) ID() string { return s.id }

func (s *stubProvider) FetchQuote(ctx context.Context, symbol string) (Quote, error) {
	s.calls++
	if s.err != nil {
		return Quote{}, s.err
	}
	return s.quote, nil
}

type noOverrides struct{}

func (noOverrides) Lookup(assetID, provider string) (string, bool) { return "", false }

func TestRegistryReturnsFirstSuccess(t *testing.T) {
	chain := resolver.NewChain(noOverrides{})
	reg := NewRegistry(chain, zerolog.Nop())

	primary := &stubProvider{id: "YAHOO", quote: Quote{Price: decimal.NewFromInt(100), Currency: "USD", AsOf: time.Now()}}
	reg.Register(primary, 100)

	q, err := reg.FetchQuote(context.Background(), resolver.AssetRef{ID: "AAPL:XNAS", Kind: identifier.KindSecurity})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(q.Price))
	assert.Equal(t, 1, primary.calls)
}

func TestRegistryFailsOverOnPenalizedFailure(t *testing.T) {
	chain := resolver.NewChain(noOverrides{})
	reg := NewRegistry(chain, zerolog.Nop())

	broken := &stubProvider{id: "YAHOO", err: &corerr.ProviderError{Provider: "YAHOO", Class: corerr.RetryFailoverWithPenalty, Err: assertErr("boom")}}
	fallback := &stubProvider{id: "ALPHA_VANTAGE", quote: Quote{Price: decimal.NewFromInt(50), Currency: "USD"}}
	reg.Register(broken, 100)
	reg.Register(fallback, 100)

	q, err := reg.FetchQuote(context.Background(), resolver.AssetRef{ID: "AAPL:XNAS", Kind: identifier.KindSecurity})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(q.Price))
	assert.Equal(t, 1, fallback.calls)
}

func TestRegistryStopsOnRetryNever(t *testing.T) {
	chain := resolver.NewChain(noOverrides{})
	reg := NewRegistry(chain, zerolog.Nop())

	terminal := &stubProvider{id: "YAHOO", err: &corerr.ProviderError{Provider: "YAHOO", Class: corerr.RetryNever, Err: assertErr("malformed")}}
	neverCalled := &stubProvider{id: "ALPHA_VANTAGE", quote: Quote{Price: decimal.NewFromInt(1)}}
	reg.Register(terminal, 100)
	reg.Register(neverCalled, 100)

	_, err := reg.FetchQuote(context.Background(), resolver.AssetRef{ID: "AAPL:XNAS", Kind: identifier.KindSecurity})
	require.Error(t, err)
	assert.Equal(t, 0, neverCalled.calls)
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	chain := resolver.NewChain(noOverrides{})
	reg := NewRegistry(chain, zerolog.Nop())

	broken := &stubProvider{id: "YAHOO", err: &corerr.ProviderError{Provider: "YAHOO", Class: corerr.RetryFailoverWithPenalty, Err: assertErr("boom")}}
	reg.Register(broken, 1000)

	for i := 0; i < defaultMaxFailures; i++ {
		_, _ = reg.FetchQuote(context.Background(), resolver.AssetRef{ID: "AAPL:XNAS", Kind: identifier.KindSecurity})
	}

	assert.Equal(t, "open", reg.entries[0].breaker.State())

	callsBeforeSkip := broken.calls
	_, _ = reg.FetchQuote(context.Background(), resolver.AssetRef{ID: "AAPL:XNAS", Kind: identifier.KindSecurity})
	assert.Equal(t, callsBeforeSkip, broken.calls, "breaker open should skip the call entirely")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
