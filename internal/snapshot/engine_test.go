package snapshot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/activity"
	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/domain"
)

type memStore struct {
	byAccount map[string][]AccountStateSnapshot
}

func newMemStore() *memStore {
	return &memStore{byAccount: make(map[string][]AccountStateSnapshot)}
}

func (m *memStore) LatestBefore(accountID string, date time.Time) (*AccountStateSnapshot, error) {
	var latest *AccountStateSnapshot
	for _, s := range m.byAccount[accountID] {
		s := s
		if s.Date.Before(date) && (latest == nil || s.Date.After(latest.Date)) {
			latest = &s
		}
	}
	return latest, nil
}

func (m *memStore) Overwrite(accountID string, start, end time.Time, snapshots []AccountStateSnapshot) error {
	kept := make([]AccountStateSnapshot, 0)
	for _, s := range m.byAccount[accountID] {
		if s.Date.Before(start) || s.Date.After(end) {
			kept = append(kept, s)
		}
	}
	m.byAccount[accountID] = append(kept, snapshots...)
	return nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buyEvent(date time.Time, qty, price string) activity.Event {
	q := decimal.RequireFromString(qty)
	p := decimal.RequireFromString(price)
	a := domain.Activity{
		ID: "buy-" + date.String(), AccountID: "acc-1", AssetID: "AAPL:XNAS",
		Type: domain.ActivityBuy, Timestamp: date, Quantity: &q, UnitPrice: &p, Currency: "USD",
	}
	return activity.Event{Activity: a, CashDelta: q.Mul(p).Neg(), QuantityDelta: q, LotEffect: activity.LotEffectPushNew}
}

func sellEvent(date time.Time, qty, price string) activity.Event {
	q := decimal.RequireFromString(qty)
	p := decimal.RequireFromString(price)
	a := domain.Activity{
		ID: "sell-" + date.String(), AccountID: "acc-1", AssetID: "AAPL:XNAS",
		Type: domain.ActivitySell, Timestamp: date, Quantity: &q, UnitPrice: &p, Currency: "USD",
	}
	return activity.Event{Activity: a, CashDelta: q.Mul(p), QuantityDelta: q.Neg(), LotEffect: activity.LotEffectConsumeFIFO}
}

func TestRebuildBuyThenSellFIFORealizesGain(t *testing.T) {
	store := newMemStore()
	engine := New(store)

	events := []activity.Event{
		buyEvent(day(2024, 1, 1), "10", "100"),
		sellEvent(day(2024, 2, 1), "4", "150"),
	}

	err := engine.Rebuild("acc-1", "USD", day(2024, 1, 1), day(2024, 2, 1), events)
	require.NoError(t, err)

	snaps := store.byAccount["acc-1"]
	require.Len(t, snaps, 2)

	final := snaps[1]
	pos := final.Positions["AAPL:XNAS"]
	assert.Equal(t, "6", pos.Quantity.String())
	assert.Equal(t, "600", pos.CostBasis.String())
	assert.Equal(t, "200", final.RealizedGain["AAPL:XNAS"].String())
}

func TestRebuildSellMoreThanHeldFails(t *testing.T) {
	store := newMemStore()
	engine := New(store)

	events := []activity.Event{
		buyEvent(day(2024, 1, 1), "1", "100"),
		sellEvent(day(2024, 1, 2), "5", "100"),
	}

	err := engine.Rebuild("acc-1", "USD", day(2024, 1, 1), day(2024, 1, 2), events)
	require.Error(t, err)
	var insufficient *corerr.InsufficientSharesError
	assert.ErrorAs(t, err, &insufficient)
}

func TestRebuildCarriesForwardFromPriorSnapshot(t *testing.T) {
	store := newMemStore()
	engine := New(store)

	require.NoError(t, engine.Rebuild("acc-1", "USD", day(2024, 1, 1), day(2024, 1, 1), []activity.Event{
		buyEvent(day(2024, 1, 1), "10", "100"),
	}))

	require.NoError(t, engine.Rebuild("acc-1", "USD", day(2024, 2, 1), day(2024, 2, 1), []activity.Event{
		sellEvent(day(2024, 2, 1), "3", "120"),
	}))

	snaps := store.byAccount["acc-1"]
	require.Len(t, snaps, 2)
	pos := snaps[1].Positions["AAPL:XNAS"]
	assert.Equal(t, "7", pos.Quantity.String())
}

func TestRebuildSplitScalesLotsAndPreservesCostBasis(t *testing.T) {
	store := newMemStore()
	engine := New(store)

	split := domain.Activity{
		ID: "split-1", AccountID: "acc-1", AssetID: "AAPL:XNAS",
		Type: domain.ActivitySplit, Timestamp: day(2024, 3, 1),
		SplitNumerator: 2, SplitDenominator: 1,
	}
	events := []activity.Event{
		buyEvent(day(2024, 1, 1), "10", "100"),
		{Activity: split, LotEffect: activity.LotEffectScale},
	}

	err := engine.Rebuild("acc-1", "USD", day(2024, 1, 1), day(2024, 3, 1), events)
	require.NoError(t, err)

	snaps := store.byAccount["acc-1"]
	final := snaps[len(snaps)-1]
	pos := final.Positions["AAPL:XNAS"]
	assert.Equal(t, "20", pos.Quantity.String())
	assert.Equal(t, "1000", pos.CostBasis.String())
}

func TestRebuildOnlyEmitsSnapshotsForDatesWithActivity(t *testing.T) {
	store := newMemStore()
	engine := New(store)

	events := []activity.Event{
		buyEvent(day(2024, 1, 1), "10", "100"),
		buyEvent(day(2024, 1, 5), "5", "100"),
	}

	err := engine.Rebuild("acc-1", "USD", day(2024, 1, 1), day(2024, 1, 5), events)
	require.NoError(t, err)
	assert.Len(t, store.byAccount["acc-1"], 2)
}
