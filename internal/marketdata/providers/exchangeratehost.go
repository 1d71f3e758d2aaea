package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/clientdata"
	"github.com/aristath/wealthfolio-core/internal/clients/exchangerate"
	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
)

// ExchangeRateHost resolves FX rates via exchangerate-api.com, the
// resolver's "EXCHANGE_RATE_HOST" target for symbols the rules resolver
// formats as "FROM/TO" (see resolver.RulesResolver.resolveFX).
type ExchangeRateHost struct {
	client *exchangerate.Client
	log    zerolog.Logger
}

func NewExchangeRateHost(cacheRepo *clientdata.Repository, log zerolog.Logger) *ExchangeRateHost {
	return &ExchangeRateHost{
		client: exchangerate.NewClient(cacheRepo, log),
		log:    log.With().Str("provider", "EXCHANGE_RATE_HOST").Logger(),
	}
}

func (e *ExchangeRateHost) ID() string { return "EXCHANGE_RATE_HOST" }

// Capabilities reports that this provider only resolves FX rates.
func (e *ExchangeRateHost) Capabilities() []identifier.Kind {
	return []identifier.Kind{identifier.KindFxRate}
}

// FetchQuote expects symbol in "FROM/TO" form. The underlying client has no
// context parameter, so cancellation is cooperative only up to the point
// the HTTP call is issued.
func (e *ExchangeRateHost) FetchQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	if err := ctx.Err(); err != nil {
		return marketdata.Quote{}, err
	}

	from, to, ok := strings.Cut(symbol, "/")
	if !ok {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: e.ID(), Class: corerr.RetryNever, Err: fmt.Errorf("malformed FX symbol %q, expected FROM/TO", symbol)}
	}

	rate, err := e.client.GetRate(from, to)
	if err != nil {
		return marketdata.Quote{}, &corerr.ProviderError{Provider: e.ID(), Class: corerr.RetryFailoverWithPenalty, Err: err}
	}

	return marketdata.Quote{Price: decimal.NewFromFloat(rate), Currency: to, AsOf: time.Now().UTC()}, nil
}
