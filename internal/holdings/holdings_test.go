package holdings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/snapshot"
)

type stubSnapshotStore struct {
	snap *snapshot.AccountStateSnapshot
}

func (s stubSnapshotStore) LatestBefore(accountID string, date time.Time) (*snapshot.AccountStateSnapshot, error) {
	return s.snap, nil
}

type stubQuoteStore struct {
	latest map[string]domain.Quote
	prev   map[string]domain.Quote
}

func (s stubQuoteStore) LatestQuoteOnOrBefore(assetID string, date time.Time) (domain.Quote, bool, error) {
	q, ok := s.latest[assetID]
	return q, ok, nil
}
func (s stubQuoteStore) PreviousClose(assetID string, date time.Time) (domain.Quote, bool, error) {
	q, ok := s.prev[assetID]
	return q, ok, nil
}

type stubAssetStore struct {
	assets map[string]domain.Asset
}

func (s stubAssetStore) Asset(assetID string) (domain.Asset, bool, error) {
	a, ok := s.assets[assetID]
	return a, ok, nil
}

type stubFxStore struct{}

func (stubFxStore) UpsertRate(from, to string, date time.Time, rate decimal.Decimal, source string) error {
	return nil
}
func (stubFxStore) LatestRate(from, to string) (decimal.Decimal, time.Time, bool, error) {
	return decimal.NewFromInt(1), time.Now(), true, nil
}
func (stubFxStore) RateOnOrBefore(from, to string, date time.Time) (decimal.Decimal, time.Time, bool, error) {
	return decimal.NewFromInt(1), date, true, nil
}
func (stubFxStore) RegisteredPairs() ([][2]string, error) { return nil, nil }
func (stubFxStore) RegisterPair(a, b string) error        { return nil }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestProjectComputesMarketValueAndGain(t *testing.T) {
	snap := &snapshot.AccountStateSnapshot{
		AccountID: "acc-1",
		Positions: map[string]snapshot.Position{
			"AAPL:XNAS": {Quantity: decimal.RequireFromString("10"), CostBasis: decimal.RequireFromString("1000")},
		},
	}

	quotes := stubQuoteStore{
		latest: map[string]domain.Quote{"AAPL:XNAS": {Price: decimal.RequireFromString("150"), Currency: "USD"}},
		prev:   map[string]domain.Quote{"AAPL:XNAS": {Price: decimal.RequireFromString("140"), Currency: "USD"}},
	}
	assets := stubAssetStore{assets: map[string]domain.Asset{"AAPL:XNAS": {Name: "Apple Inc", Currency: "USD"}}}

	p := New(stubSnapshotStore{snap: snap}, quotes, assets, fx.New(stubFxStore{}), "USD")
	result, err := p.Project("acc-1", day(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, result, 1)

	h := result[0]
	assert.Equal(t, "Apple Inc", h.AssetName)
	assert.Equal(t, "1500", h.MarketValue.Local.String())
	assert.Equal(t, "500", h.UnrealizedGain.Local.String())
	assert.Equal(t, "0.5", h.UnrealizedGainPercent.String())
	assert.Equal(t, "1", h.PortfolioWeight.String())

	// day change: (150-140)*10 = 100
	assert.Equal(t, "100", h.DayChange.Local.String())
}

func TestProjectReturnsNilWhenNoSnapshot(t *testing.T) {
	p := New(stubSnapshotStore{snap: nil}, stubQuoteStore{}, stubAssetStore{}, fx.New(stubFxStore{}), "USD")
	result, err := p.Project("acc-1", day(2024, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestProjectSkipsZeroQuantityPositions(t *testing.T) {
	snap := &snapshot.AccountStateSnapshot{
		AccountID: "acc-1",
		Positions: map[string]snapshot.Position{
			"AAPL:XNAS": {Quantity: decimal.Zero},
		},
	}
	p := New(stubSnapshotStore{snap: snap}, stubQuoteStore{}, stubAssetStore{}, fx.New(stubFxStore{}), "USD")
	result, err := p.Project("acc-1", day(2024, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, result)
}
