package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/activity"
	"github.com/aristath/wealthfolio-core/internal/allocation"
	"github.com/aristath/wealthfolio-core/internal/clientdata"
	"github.com/aristath/wealthfolio-core/internal/clients/openfigi"
	"github.com/aristath/wealthfolio-core/internal/clock"
	"github.com/aristath/wealthfolio-core/internal/config"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/holdings"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
	"github.com/aristath/wealthfolio-core/internal/marketdata/providers"
	"github.com/aristath/wealthfolio-core/internal/resolver"
	"github.com/aristath/wealthfolio-core/internal/scheduler"
	"github.com/aristath/wealthfolio-core/internal/snapshot"
	"github.com/aristath/wealthfolio-core/internal/sync"
	"github.com/aristath/wealthfolio-core/internal/valuation"
)

// Free-tier-appropriate request budgets, one per provider; the registry's
// circuit breaker handles sustained failures beyond rate limiting.
const (
	yahooRatePerSecond        = 2.0
	alphaVantageRatePerSecond = 0.08 // ~5/minute, the free-tier ceiling
	metalPriceRatePerSecond   = 0.1
	exchangeRateRatePerSecond = 0.2 // exchangerate-api.com free tier
)

// InitializeServices builds the resolver chain, market-data registry, fx
// graph, and every portfolio engine on top of the repositories InitializeRepositories
// already constructed.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	clk, err := clock.New(cfg.ValuationTimezone)
	if err != nil {
		return err
	}
	container.Clock = clk

	figiClient := openfigi.NewClient(cfg.OpenFIGIAPIKey, nil, log)
	container.Resolver = resolver.NewChain(container.Overrides, resolver.NewOpenFIGIResolver(figiClient))

	container.MarketData = marketdata.NewRegistry(container.Resolver, log)
	container.MarketData.Register(providers.NewYahoo(log), yahooRatePerSecond)
	if cfg.AlphaVantageAPIKey != "" {
		container.MarketData.Register(providers.NewAlphaVantage(cfg.AlphaVantageAPIKey, log), alphaVantageRatePerSecond)
	}
	if cfg.MetalPriceAPIKey != "" {
		container.MarketData.Register(providers.NewMetalPriceAPI(cfg.MetalPriceAPIKey, log), metalPriceRatePerSecond)
	}
	container.MarketData.Register(providers.NewExchangeRateHost(container.ClientData, log), exchangeRateRatePerSecond)

	container.FxGraph = fx.New(container.Fx)

	container.Compiler = activity.New(container.Activities)
	container.Snapshotter = snapshot.New(container.Snapshots)
	container.Valuator = valuation.New(container.Quotes, container.Assets, container.FxGraph, container.Valuations, cfg.BaseCurrency)
	container.Holdings = holdings.New(container.Snapshots, container.Quotes, container.Assets, container.FxGraph, cfg.BaseCurrency)
	container.Allocator = allocation.New(container.Taxonomies)

	container.Bus = events.New(log).WithOutbox(events.NewOutbox(container.CacheDB.Conn()))

	container.SyncService = sync.NewService(
		container.SyncPlans,
		container.Quotes,
		container.MarketData,
		container.FxGraph,
		container.Bus,
		sync.PlanningInputs{
			BufferDays:      cfg.QuoteHistoryBufferDays,
			MinLookbackDays: cfg.MinSyncLookbackDays,
			GraceDays:       cfg.ClosedPositionGraceDays,
			Today:           container.Clock.Today(),
		},
		container.Clock,
		container.Assets,
		log,
	)

	container.Scheduler = scheduler.New(container.SyncService, container.Bus, log).
		WithClientDataCleanup(clientdata.NewCleanupJob(container.ClientData, log))

	return nil
}
