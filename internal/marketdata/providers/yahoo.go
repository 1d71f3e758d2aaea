// Package providers implements the marketdata.Provider adapters: thin
// resty-backed HTTP clients that fetch a single quote for a provider symbol
// and classify failures into the corerr.RetryClass taxonomy the registry
// acts on.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
)

// Yahoo fetches quotes from Yahoo Finance's unauthenticated chart endpoint.
// It requires no API key, which makes it the default first-priority
// provider for both equities and FX pairs.
type Yahoo struct {
	client *resty.Client
	log    zerolog.Logger
}

func NewYahoo(log zerolog.Logger) *Yahoo {
	client := resty.New().
		SetBaseURL("https://query1.finance.yahoo.com").
		SetTimeout(10 * time.Second).
		SetRetryCount(0) // retries are the registry's job, not resty's

	return &Yahoo{client: client, log: log.With().Str("provider", "YAHOO").Logger()}
}

func (y *Yahoo) ID() string { return "YAHOO" }

// Capabilities reports that the chart endpoint covers equities, crypto
// pairs, and FX pairs, but not alternative-asset kinds.
func (y *Yahoo) Capabilities() []identifier.Kind {
	return []identifier.Kind{identifier.KindSecurity, identifier.KindCrypto, identifier.KindFxRate}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) FetchQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	var out yahooChartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetResult(&out).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryFailoverWithPenalty, Err: err}
	}

	switch {
	case resp.StatusCode() == 404:
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("symbol %s not found", symbol)}
	case resp.StatusCode() == 429:
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryFailoverWithPenalty, Err: fmt.Errorf("rate limited")}
	case resp.StatusCode() >= 500:
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryFailoverWithPenalty, Err: fmt.Errorf("server error %d", resp.StatusCode())}
	case resp.StatusCode() >= 400:
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("client error %d", resp.StatusCode())}
	}

	if out.Chart.Error != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("%s: %s", out.Chart.Error.Code, out.Chart.Error.Description)}
	}
	if len(out.Chart.Result) == 0 {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: y.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("empty result for %s", symbol)}
	}

	meta := out.Chart.Result[0].Meta
	return marketdata.Quote{
		Price:    decimal.NewFromFloat(meta.RegularMarketPrice),
		Currency: meta.Currency,
		AsOf:     time.Unix(meta.RegularMarketTime, 0).UTC(),
	}, nil
}
