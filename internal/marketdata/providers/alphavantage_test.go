package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/corerr"
)

func TestAlphaVantageMissingAPIKeyIsTerminal(t *testing.T) {
	client := NewAlphaVantage("", zerolog.Nop())
	_, err := client.FetchQuote(context.Background(), "IBM")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryNever, pe.Class)
}

func TestAlphaVantageParsesGlobalQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "IBM",
				"05. price": "186.20",
				"07. latest trading day": "2024-01-15",
				"08. previous close": "185.00"
			}
		}`))
	}))
	defer srv.Close()

	client := NewAlphaVantage("test-key", zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	quote, err := client.FetchQuote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "186.2", quote.Price.String())
	assert.Equal(t, 2024, quote.AsOf.Year())
}

func TestAlphaVantageRateLimitNoteFailsOver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	}))
	defer srv.Close()

	client := NewAlphaVantage("test-key", zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	_, err := client.FetchQuote(context.Background(), "IBM")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryFailoverWithPenalty, pe.Class)
}

func TestAlphaVantageSymbolNotFoundIsNextProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Error Message": "Invalid API call"}`))
	}))
	defer srv.Close()

	client := NewAlphaVantage("test-key", zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	_, err := client.FetchQuote(context.Background(), "XYZNOTREAL")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryNextProvider, pe.Class)
}
