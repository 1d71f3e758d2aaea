package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/events"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/marketdata"
	"github.com/aristath/wealthfolio-core/internal/resolver"
	"github.com/aristath/wealthfolio-core/internal/sync"
)

type emptyPlanStore struct{}

func (emptyPlanStore) Get(symbol string) (sync.SymbolSyncPlan, bool, error) { return sync.SymbolSyncPlan{}, false, nil }
func (emptyPlanStore) Upsert(plan sync.SymbolSyncPlan) error                { return nil }
func (emptyPlanStore) AllActiveOrGraced(today time.Time) ([]sync.SymbolSyncPlan, error) {
	return nil, nil
}

type discardQuoteWriter struct{}

func (discardQuoteWriter) StoreQuote(q domain.Quote) error { return nil }

type nopFxStore struct{}

func (nopFxStore) UpsertRate(from, to string, date time.Time, rate decimal.Decimal, source string) error {
	return nil
}
func (nopFxStore) LatestRate(from, to string) (decimal.Decimal, time.Time, bool, error) {
	return decimal.Zero, time.Time{}, false, nil
}
func (nopFxStore) RateOnOrBefore(from, to string, date time.Time) (decimal.Decimal, time.Time, bool, error) {
	return decimal.Zero, time.Time{}, false, nil
}
func (nopFxStore) RegisteredPairs() ([][2]string, error) { return nil, nil }
func (nopFxStore) RegisterPair(a, b string) error        { return nil }

func newTestSchedulerDeps() (*sync.Service, *events.Bus) {
	log := zerolog.Nop()
	chain := resolver.NewChain(nil)
	registry := marketdata.NewRegistry(chain, log)
	fxGraph := fx.New(nopFxStore{})
	bus := events.New(log)

	svc := sync.NewService(emptyPlanStore{}, discardQuoteWriter{}, registry, fxGraph, bus, sync.PlanningInputs{
		BufferDays:      45,
		MinLookbackDays: 5,
		GraceDays:       45,
		Today:           time.Now(),
	}, nil, nil, log)

	return svc, bus
}

func TestRunNowPublishesStartedThenCompleted(t *testing.T) {
	svc, bus := newTestSchedulerDeps()
	sched := New(svc, bus, zerolog.Nop())

	sub := bus.Subscribe(events.SyncStarted, events.SyncCompleted)
	defer sub.Close()

	outcomes := sched.RunNow(context.Background())
	assert.Empty(t, outcomes)

	started := <-sub.Events
	assert.Equal(t, events.SyncStarted, started.Type)

	completed := <-sub.Events
	assert.Equal(t, events.SyncCompleted, completed.Type)

	data, ok := completed.Data.(*events.SyncStatusData)
	require.True(t, ok)
	assert.Empty(t, data.Error)
	assert.False(t, data.Finished.IsZero())
}
