package fx

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/corerr"
)

type memStore struct {
	rates    map[string]map[string][]rateEntry
	pairs    map[[2]string]bool
}

type rateEntry struct {
	date time.Time
	rate decimal.Decimal
}

func newMemStore() *memStore {
	return &memStore{
		rates: make(map[string]map[string][]rateEntry),
		pairs: make(map[[2]string]bool),
	}
}

func (m *memStore) UpsertRate(from, to string, date time.Time, rate decimal.Decimal, source string) error {
	if m.rates[from] == nil {
		m.rates[from] = make(map[string][]rateEntry)
	}
	m.rates[from][to] = append(m.rates[from][to], rateEntry{date: date, rate: rate})
	return nil
}

func (m *memStore) LatestRate(from, to string) (decimal.Decimal, time.Time, bool, error) {
	entries := m.rates[from][to]
	if len(entries) == 0 {
		return decimal.Zero, time.Time{}, false, nil
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.date.After(best.date) {
			best = e
		}
	}
	return best.rate, best.date, true, nil
}

func (m *memStore) RateOnOrBefore(from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	entries := m.rates[from][to]
	var best *rateEntry
	for i := range entries {
		e := entries[i]
		if e.date.After(asOf) {
			continue
		}
		if best == nil || e.date.After(best.date) {
			best = &e
		}
	}
	if best == nil {
		return decimal.Zero, time.Time{}, false, nil
	}
	return best.rate, best.date, true, nil
}

func (m *memStore) RegisteredPairs() ([][2]string, error) {
	out := make([][2]string, 0, len(m.pairs))
	for p := range m.pairs {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) RegisterPair(from, to string) error {
	m.pairs[[2]string{from, to}] = true
	return nil
}

func TestRecordRateStoresBothDirections(t *testing.T) {
	g := New(newMemStore())
	require.NoError(t, g.RecordRate("EUR", "USD", date(2024, 1, 10), decimal.NewFromFloat(1.1), "MANUAL"))

	got, err := g.Latest("EUR", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(1.1).Equal(got))

	inv, err := g.Latest("USD", "EUR")
	require.NoError(t, err)
	assert.True(t, inv.Mul(decimal.NewFromFloat(1.1)).Round(6).Equal(decimal.NewFromInt(1)))
}

func TestAtNeverFabricatesFutureRate(t *testing.T) {
	g := New(newMemStore())
	require.NoError(t, g.RecordRate("EUR", "USD", date(2024, 6, 1), decimal.NewFromFloat(1.08), "MANUAL"))

	_, err := g.At("EUR", "USD", date(2024, 1, 1))
	require.Error(t, err)
	var unresolved *corerr.FxUnresolvedError
	require.ErrorAs(t, err, &unresolved)
}

func TestAtPicksMostRecentOnOrBeforeDate(t *testing.T) {
	g := New(newMemStore())
	require.NoError(t, g.RecordRate("EUR", "USD", date(2024, 1, 1), decimal.NewFromFloat(1.05), "MANUAL"))
	require.NoError(t, g.RecordRate("EUR", "USD", date(2024, 3, 1), decimal.NewFromFloat(1.09), "MANUAL"))

	got, err := g.At("EUR", "USD", date(2024, 2, 1))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(1.05).Equal(got))
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	g := New(newMemStore())
	got, err := g.Convert(decimal.NewFromInt(100), "USD", "USD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got))
}

func TestConvertUnresolvedPairErrors(t *testing.T) {
	g := New(newMemStore())
	_, err := g.Convert(decimal.NewFromInt(100), "EUR", "JPY")
	require.Error(t, err)
}

func TestRegisterPairSeedsBothDirections(t *testing.T) {
	g := New(newMemStore())
	require.NoError(t, g.RegisterPair("EUR", "USD"))

	pairs, err := g.RegisteredPairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
}

func TestParseSymbolVariants(t *testing.T) {
	cases := map[string][2]string{
		"EUR:USD":  {"EUR", "USD"},
		"EUR/USD":  {"EUR", "USD"},
		"EURUSD":   {"EUR", "USD"},
		"EURUSD=X": {"EUR", "USD"},
	}
	for in, want := range cases {
		from, to, err := ParseSymbol(in)
		require.NoError(t, err, in)
		assert.Equal(t, want[0], from, in)
		assert.Equal(t, want[1], to, in)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
