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

func TestYahooParsesChartResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {
						"regularMarketPrice": 186.2,
						"currency": "USD",
						"regularMarketTime": 1705334400
					}
				}],
				"error": null
			}
		}`))
	}))
	defer srv.Close()

	client := NewYahoo(zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	quote, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "186.2", quote.Price.String())
	assert.Equal(t, "USD", quote.Currency)
}

func TestYahoo404IsNextProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewYahoo(zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	_, err := client.FetchQuote(context.Background(), "NOTREAL")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryNextProvider, pe.Class)
}

func TestYahoo429IsFailoverWithPenalty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewYahoo(zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	_, err := client.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryFailoverWithPenalty, pe.Class)
}

func TestYahooEmptyResultIsNextProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	}))
	defer srv.Close()

	client := NewYahoo(zerolog.Nop())
	client.client.SetBaseURL(srv.URL)

	_, err := client.FetchQuote(context.Background(), "AAPL")
	require.Error(t, err)

	var pe *corerr.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, corerr.RetryNextProvider, pe.Class)
}
