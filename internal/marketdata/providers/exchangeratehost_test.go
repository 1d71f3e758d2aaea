package providers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/corerr"
)

func TestExchangeRateHostID(t *testing.T) {
	p := NewExchangeRateHost(nil, zerolog.Nop())
	assert.Equal(t, "EXCHANGE_RATE_HOST", p.ID())
}

func TestExchangeRateHostMalformedSymbolIsTerminal(t *testing.T) {
	p := NewExchangeRateHost(nil, zerolog.Nop())

	_, err := p.FetchQuote(context.Background(), "EURUSD")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryNever, pe.Class)
}

func TestExchangeRateHostSameCurrencyShortCircuits(t *testing.T) {
	p := NewExchangeRateHost(nil, zerolog.Nop())

	quote, err := p.FetchQuote(context.Background(), "EUR/EUR")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(quote.Price)) // sanity: decimal set
	assert.Equal(t, "1", quote.Price.String())
	assert.Equal(t, "EUR", quote.Currency)
}

func TestExchangeRateHostRespectsCancelledContext(t *testing.T) {
	p := NewExchangeRateHost(nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchQuote(ctx, "EUR/USD")
	require.Error(t, err)
}
