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

// MetalPriceAPI fetches spot prices for precious metals (gold, silver,
// platinum, palladium) against a base currency.
type MetalPriceAPI struct {
	client *resty.Client
	apiKey string
	log    zerolog.Logger
}

func NewMetalPriceAPI(apiKey string, log zerolog.Logger) *MetalPriceAPI {
	client := resty.New().
		SetBaseURL("https://api.metalpriceapi.com/v1").
		SetTimeout(10 * time.Second).
		SetRetryCount(0)

	return &MetalPriceAPI{client: client, apiKey: apiKey, log: log.With().Str("provider", "METAL_PRICE_API").Logger()}
}

func (m *MetalPriceAPI) ID() string { return "METAL_PRICE_API" }

// Capabilities reports that this provider only prices precious metals.
func (m *MetalPriceAPI) Capabilities() []identifier.Kind {
	return []identifier.Kind{identifier.KindPrecious}
}

type metalPriceLatestResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Rates   map[string]float64 `json:"rates"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (m *MetalPriceAPI) FetchQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	if m.apiKey == "" {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: m.ID(), Class: corerr.RetryNever, Err: fmt.Errorf("no API key configured")}
	}

	var out metalPriceLatestResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":    m.apiKey,
			"base":       "USD",
			"currencies": symbol,
		}).
		SetResult(&out).
		Get("/latest")
	if err != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: m.ID(), Class: corerr.RetryFailoverWithPenalty, Err: err}
	}
	if resp.StatusCode() == 429 {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: m.ID(), Class: corerr.RetryFailoverWithPenalty, Err: fmt.Errorf("rate limited")}
	}
	if !out.Success {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: m.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("metalpriceapi error %d: %s", out.Error.Code, out.Error.Message)}
	}

	rate, ok := out.Rates[symbol]
	if !ok || rate == 0 {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: m.ID(), Class: corerr.RetryNextProvider, Err: fmt.Errorf("no rate for %s", symbol)}
	}

	// metalpriceapi returns currency-per-troy-ounce as the inverse rate
	// (units of metal per USD); invert to get USD price per unit.
	price := decimal.NewFromFloat(1).Div(decimal.NewFromFloat(rate))
	return marketdata.Quote{Price: price, Currency: "USD", AsOf: time.Now().UTC()}, nil
}
