package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
)

// AlphaVantage fetches the latest quote via the GLOBAL_QUOTE endpoint. It is
// a paid-tier-free fallback behind Yahoo, rate limited far more tightly, so
// it is registered with a low requests/sec budget.
type AlphaVantage struct {
	client *resty.Client
	apiKey string
	log    zerolog.Logger
}

func NewAlphaVantage(apiKey string, log zerolog.Logger) *AlphaVantage {
	client := resty.New().
		SetBaseURL("https://www.alphavantage.co").
		SetTimeout(10 * time.Second).
		SetRetryCount(0)

	return &AlphaVantage{client: client, apiKey: apiKey, log: log.With().Str("provider", "ALPHA_VANTAGE").Logger()}
}

func (a *AlphaVantage) ID() string { return "ALPHA_VANTAGE" }

// Capabilities reports that GLOBAL_QUOTE only prices listed equities.
func (a *AlphaVantage) Capabilities() []identifier.Kind {
	return []identifier.Kind{identifier.KindSecurity}
}

type alphaVantageGlobalQuote struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		LatestDay     string `json:"07. latest trading day"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

func (a *AlphaVantage) FetchQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	if a.apiKey == "" {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryNever, Err: fmt.Errorf("no API key configured")}
	}

	var out alphaVantageGlobalQuote
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		}).
		SetResult(&out).
		Get("/query")
	if err != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryFailoverWithPenalty, Err: err}
	}
	if resp.StatusCode() >= 500 {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryFailoverWithPenalty, Err: fmt.Errorf("server error %d", resp.StatusCode())}
	}

	// Alpha Vantage signals rate limiting and symbol errors inside a 200
	// response body rather than with HTTP status codes.
	if out.Note != "" || strings.Contains(out.Note, "frequency") {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryFailoverWithPenalty, Err: fmt.Errorf("rate limited: %s", out.Note)}
	}
	if out.ErrorMessage != "" {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("%s", out.ErrorMessage)}
	}
	if out.GlobalQuote.Price == "" {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("empty quote for %s", symbol)}
	}

	price, err := strconv.ParseFloat(out.GlobalQuote.Price, 64)
	if err != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: a.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("unparseable price %q: %w", out.GlobalQuote.Price, err)}
	}

	asOf, err := time.Parse("2006-01-02", out.GlobalQuote.LatestDay)
	if err != nil {
		asOf = time.Now().UTC()
	}

	return marketdata.Quote{
		Price: decimal.NewFromFloat(price),
		AsOf:  asOf,
		// Alpha Vantage's GLOBAL_QUOTE does not report currency; callers
		// fall back to the asset's own recorded currency.
	}, nil
}
