package activity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/corerr"
	"github.com/aristath/wealthfolio-core/internal/domain"
)

type memStore struct {
	activities []domain.Activity
}

func (m *memStore) ActivitiesForAccount(accountID string) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range m.activities {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func baseActivity(typ domain.ActivityType, ts time.Time) domain.Activity {
	return domain.Activity{
		ID:        string(typ),
		AccountID: "acc-1",
		AssetID:   "AAPL:XNAS",
		Type:      typ,
		Timestamp: ts,
		Currency:  "USD",
	}
}

func TestCompileBuyComputesCashAndLotEffect(t *testing.T) {
	a := baseActivity(domain.ActivityBuy, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Quantity = dec("10")
	a.UnitPrice = dec("100")
	a.Fee = decimal.RequireFromString("1")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "-1001", ev.CashDelta.String())
	assert.Equal(t, "10", ev.QuantityDelta.String())
	assert.Equal(t, LotEffectPushNew, ev.LotEffect)
}

func TestCompileSellComputesCashAndConsumesFIFO(t *testing.T) {
	a := baseActivity(domain.ActivitySell, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	a.Quantity = dec("4")
	a.UnitPrice = dec("110")
	a.Fee = decimal.RequireFromString("2")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "438", ev.CashDelta.String())
	assert.Equal(t, "-4", ev.QuantityDelta.String())
	assert.Equal(t, LotEffectConsumeFIFO, ev.LotEffect)
}

func TestCompileDepositIsContribution(t *testing.T) {
	a := baseActivity(domain.ActivityDeposit, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.AssetID = ""
	a.Amount = dec("500")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "500", events[0].CashDelta.String())
	assert.True(t, events[0].IsContribution)
}

func TestCompileTransferInExternalIsContribution(t *testing.T) {
	a := baseActivity(domain.ActivityTransferIn, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.AssetID = ""
	a.Amount = dec("1000")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	assert.True(t, events[0].IsContribution)
}

func TestCompileTransferInBetweenTrackedAccountsIsNotContribution(t *testing.T) {
	a := baseActivity(domain.ActivityTransferIn, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.AssetID = ""
	a.Amount = dec("1000")
	a.CounterpartyID = "acc-2"
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	assert.False(t, events[0].IsContribution)
}

func TestCompileSplitRequiresPositiveRatio(t *testing.T) {
	a := baseActivity(domain.ActivitySplit, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	_, err := New(store).Compile("acc-1", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, corerr.ErrInvalidActivity)
}

func TestCompileAddHoldingIsNotContribution(t *testing.T) {
	a := baseActivity(domain.ActivityAddHolding, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Quantity = dec("5")
	a.UnitPrice = dec("50")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	assert.False(t, events[0].IsContribution)
	assert.Equal(t, "5", events[0].QuantityDelta.String())
	assert.Equal(t, LotEffectPushNew, events[0].LotEffect)
}

func TestCompileRejectsNegativeQuantity(t *testing.T) {
	a := baseActivity(domain.ActivityBuy, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Quantity = dec("-5")
	a.UnitPrice = dec("10")
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	_, err := New(store).Compile("acc-1", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, corerr.ErrInvalidActivity)
}

func TestCompileRejectsMalformedCurrency(t *testing.T) {
	a := baseActivity(domain.ActivityDeposit, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.AssetID = ""
	a.Amount = dec("100")
	a.Currency = "dollars"
	a.ID = "a1"

	store := &memStore{activities: []domain.Activity{a}}
	_, err := New(store).Compile("acc-1", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, corerr.ErrInvalidActivity)
}

func TestCompileOrdersByTimestampThenStableID(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a1 := baseActivity(domain.ActivityDeposit, ts)
	a1.AssetID = ""
	a1.Amount = dec("100")
	a1.ID = "b"

	a2 := baseActivity(domain.ActivityDeposit, ts)
	a2.AssetID = ""
	a2.Amount = dec("200")
	a2.ID = "a"

	store := &memStore{activities: []domain.Activity{a1, a2}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Activity.ID)
	assert.Equal(t, "b", events[1].Activity.ID)
}

func TestCompileDropsDuplicateIdempotencyKeys(t *testing.T) {
	a := baseActivity(domain.ActivityDeposit, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.AssetID = ""
	a.Amount = dec("100")
	a.ID = "a1"
	a.IdempotencyKey = "dup-key"

	dup := a
	dup.ID = "a2"
	dup.IdempotencyKey = "dup-key"

	store := &memStore{activities: []domain.Activity{a, dup}}
	events, err := New(store).Compile("acc-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].Activity.ID)
}

func TestCompileFiltersByDateRange(t *testing.T) {
	early := baseActivity(domain.ActivityDeposit, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	early.AssetID = ""
	early.Amount = dec("100")
	early.ID = "early"

	within := baseActivity(domain.ActivityDeposit, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	within.AssetID = ""
	within.Amount = dec("100")
	within.ID = "within"

	store := &memStore{activities: []domain.Activity{early, within}}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events, err := New(store).Compile("acc-1", &from, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "within", events[0].Activity.ID)
}

func TestIdempotencyKeyStableForSameFields(t *testing.T) {
	a := baseActivity(domain.ActivityBuy, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a.Quantity = dec("10")
	a.UnitPrice = dec("100")

	k1 := IdempotencyKey(a, "broker-import")
	k2 := IdempotencyKey(a, "broker-import")
	assert.Equal(t, k1, k2)

	a.Quantity = dec("11")
	k3 := IdempotencyKey(a, "broker-import")
	assert.NotEqual(t, k1, k3)
}
