package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthfolio-core/internal/clock"
	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/identifier"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
	"github.com/aristath/wealthfolio-core/internal/resolver"
)

// OutcomeKind classifies what happened to a symbol during a sync run.
type OutcomeKind string

const (
	OutcomeSynced  OutcomeKind = "synced"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the per-symbol result of one sync run.
type Outcome struct {
	Symbol string
	Kind   OutcomeKind
	Window Window // zero value when Kind != OutcomeSynced
	Reason string // set for OutcomeSkipped
	Err    error  // set for OutcomeFailed
}

// PlanStore persists SymbolSyncPlan rows across runs.
type PlanStore interface {
	Get(symbol string) (SymbolSyncPlan, bool, error)
	Upsert(plan SymbolSyncPlan) error
	AllActiveOrGraced(today time.Time) ([]SymbolSyncPlan, error)
}

// QuoteWriter persists fetched quotes. A failure to write a symbol's quotes
// does not prevent other symbols in the same run from syncing.
type QuoteWriter interface {
	StoreQuote(q domain.Quote) error
}

// AssetLookup supplies the asset record behind a symbol, used here only to
// pass its ISIN (for the resolver chain's OpenFIGI fallback) and its
// preferred provider through to the registry. A nil AssetLookup passes
// neither and affects nothing else.
type AssetLookup interface {
	Asset(assetID string) (domain.Asset, bool, error)
}

// Service orchestrates one sync run across every symbol the plan store
// reports as due for work.
type Service struct {
	plans    PlanStore
	quotes   QuoteWriter
	registry *marketdata.Registry
	fxGraph  *fx.Graph
	bus      *events.Bus
	inputs   PlanningInputs
	clock    *clock.Clock
	assets   AssetLookup
	log      zerolog.Logger
}

func NewService(plans PlanStore, quotes QuoteWriter, registry *marketdata.Registry, fxGraph *fx.Graph, bus *events.Bus, inputs PlanningInputs, clk *clock.Clock, assets AssetLookup, log zerolog.Logger) *Service {
	return &Service{
		plans:    plans,
		quotes:   quotes,
		registry: registry,
		fxGraph:  fxGraph,
		bus:      bus,
		inputs:   inputs,
		clock:    clk,
		assets:   assets,
		log:      log.With().Str("component", "sync_service").Logger(),
	}
}

// Run executes one sync pass over every active-or-graced symbol. It always
// returns a result for each symbol attempted; a per-symbol failure is
// recorded in its Outcome rather than aborting the run. inputs.Today is
// refreshed from the clock at the start of every run, so a long-lived
// Service never plans against a date frozen at construction time.
func (s *Service) Run(ctx context.Context) ([]Outcome, error) {
	if s.clock != nil {
		s.inputs.Today = s.clock.Today()
	}

	runID := newRunID()
	started := time.Now()
	s.bus.Publish(events.Event{Type: events.SyncStarted, Emitter: "sync", Timestamp: started, Data: &events.SyncStatusData{RunID: runID, Started: started}})

	plans, err := s.plans.AllActiveOrGraced(s.inputs.Today)
	if err != nil {
		s.bus.Publish(events.Event{Type: events.SyncFailed, Emitter: "sync", Timestamp: time.Now(), Data: &events.SyncStatusData{RunID: runID, Started: started, Finished: time.Now(), Error: err.Error()}})
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(plans))
	syncedAssetIDs := make([]string, 0, len(plans))

	for _, plan := range plans {
		outcome := s.syncSymbol(ctx, plan)
		outcomes = append(outcomes, outcome)
		if outcome.Kind == OutcomeSynced {
			syncedAssetIDs = append(syncedAssetIDs, plan.Symbol)
		}
	}

	if len(syncedAssetIDs) > 0 {
		s.bus.Publish(events.Event{Type: events.QuotesImported, Emitter: "sync", Timestamp: time.Now(), Data: &events.QuotesImportedData{AssetIDs: syncedAssetIDs, AsOf: s.inputs.Today}})
	}
	s.bus.Publish(events.Event{Type: events.SyncCompleted, Emitter: "sync", Timestamp: time.Now(), Data: &events.SyncStatusData{RunID: runID, Started: started, Finished: time.Now()}})

	return outcomes, nil
}

func (s *Service) syncSymbol(ctx context.Context, plan SymbolSyncPlan) Outcome {
	mode := DetermineMode(plan, s.inputs.Today, 0)
	if mode == ModeNone {
		return Outcome{Symbol: plan.Symbol, Kind: OutcomeSkipped, Reason: "inactive and past grace period"}
	}

	window := ComputeWindow(plan, s.inputs)
	id, err := identifier.Parse(plan.Symbol)
	if err != nil {
		return Outcome{Symbol: plan.Symbol, Kind: OutcomeFailed, Err: err}
	}

	kind := identifier.KindSecurity
	if id.Kind != "" {
		kind = id.Kind
	}

	var isin, preferredProvider string
	if s.assets != nil {
		if asset, ok, err := s.assets.Asset(plan.Symbol); err == nil && ok {
			isin = asset.ISIN
			preferredProvider = asset.PreferredProvider
		}
	}

	quote, err := s.registry.FetchQuote(ctx, resolver.AssetRef{ID: plan.Symbol, Kind: kind, ISIN: isin, PreferredProvider: preferredProvider})
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", plan.Symbol).Msg("sync failed for symbol")
		return Outcome{Symbol: plan.Symbol, Kind: OutcomeFailed, Err: err}
	}

	if id.Kind == identifier.KindFxRate {
		if err := s.fxGraph.RecordRate(id.Primary, id.Qualifier, window.End, quote.Price, "SYNCED"); err != nil {
			return Outcome{Symbol: plan.Symbol, Kind: OutcomeFailed, Err: err}
		}
	} else {
		if err := s.quotes.StoreQuote(domain.Quote{
			AssetID:   plan.Symbol,
			Date:      window.End,
			Price:     quote.Price,
			Currency:  quote.Currency,
			Source:    domain.SourceYahoo,
			FetchedAt: time.Now(),
		}); err != nil {
			return Outcome{Symbol: plan.Symbol, Kind: OutcomeFailed, Err: err}
		}
	}

	plan.LastSyncedDate = window.End
	if plan.EarliestSynced.IsZero() || window.Start.Before(plan.EarliestSynced) {
		plan.EarliestSynced = window.Start
	}
	if err := s.plans.Upsert(plan); err != nil {
		return Outcome{Symbol: plan.Symbol, Kind: OutcomeFailed, Err: err}
	}

	return Outcome{Symbol: plan.Symbol, Kind: OutcomeSynced, Window: window}
}

var runCounter uint64

// newRunID produces a process-local, monotonically increasing run
// identifier, unique for the lifetime of the process.
func newRunID() string {
	runCounter++
	return "run-" + itoa(runCounter)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
