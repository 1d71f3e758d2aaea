package performance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func vp(d time.Time, value, contribution string) ValuationPoint {
	return ValuationPoint{Date: d, TotalValue: decimal.RequireFromString(value), NetContribution: decimal.RequireFromString(contribution)}
}

func TestSimpleReturnNoContribution(t *testing.T) {
	series := []ValuationPoint{
		vp(day(2024, 1, 1), "1000", "0"),
		vp(day(2024, 6, 1), "1100", "0"),
	}
	m := Compute(series, nil, false)
	assert.Equal(t, "0.1", m.SimpleReturn.String())
}

func TestSimpleReturnWithContribution(t *testing.T) {
	series := []ValuationPoint{
		vp(day(2024, 1, 1), "1000", "0"),
		vp(day(2024, 6, 1), "1600", "500"),
	}
	m := Compute(series, nil, false)
	// (1600 - 1000 - 500) / (1000 + 500) = 100/1500
	expected := decimal.RequireFromString("100").Div(decimal.RequireFromString("1500"))
	assert.True(t, m.SimpleReturn.Equal(expected))
}

func TestHoldingsModeReportsPriceBasedWithNoTWRorMWR(t *testing.T) {
	series := []ValuationPoint{
		vp(day(2024, 1, 1), "1000", "0"),
		vp(day(2024, 6, 1), "1100", "0"),
	}
	m := Compute(series, nil, true)
	assert.Equal(t, MethodPriceBased, m.Method)
	assert.Nil(t, m.CumulativeTWR)
	assert.Nil(t, m.CumulativeMWR)
	assert.True(t, m.IsHoldingsMode)
}

func TestTimeWeightedReturnChainLinksAroundCashFlow(t *testing.T) {
	series := []ValuationPoint{
		vp(day(2024, 1, 1), "1000", "0"),
		vp(day(2024, 2, 1), "1600", "500"), // grew 10% to 1100, then 500 deposited
		vp(day(2024, 3, 1), "1760", "500"), // 1600 base grew to 1760, 10%
	}
	cashFlows := []CashFlow{{Date: day(2024, 2, 1), Amount: decimal.RequireFromString("500")}}

	m := Compute(series, cashFlows, false)
	require.NotNil(t, m.CumulativeTWR)
	// (1.10) * (1.10) - 1 = 0.21
	assert.InDelta(t, 0.21, mustFloat(*m.CumulativeTWR), 1e-6)
}

func TestAnnualizeReturnsNilUnderThirtyDays(t *testing.T) {
	r := decimal.RequireFromString("0.05")
	assert.Nil(t, annualize(r, 10))
	assert.NotNil(t, annualize(r, 30))
}

func TestMaxDrawdownFindsWorstDecline(t *testing.T) {
	series := []ValuationPoint{
		vp(day(2024, 1, 1), "1000", "0"),
		vp(day(2024, 1, 2), "1200", "0"),
		vp(day(2024, 1, 3), "900", "0"),
		vp(day(2024, 1, 4), "1100", "0"),
	}
	dd := maxDrawdown(series)
	expected := decimal.RequireFromString("300").Div(decimal.RequireFromString("1200")).Neg()
	assert.True(t, dd.Equal(expected))
}

func TestMoneyWeightedReturnConvergesForSimpleCase(t *testing.T) {
	first := vp(day(2024, 1, 1), "1000", "0")
	last := vp(day(2025, 1, 1), "1100", "0")
	mwr, ok := moneyWeightedReturn(first, last, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.10, mustFloat(mwr), 0.01)
}

func TestEmptySeriesIsNotApplicable(t *testing.T) {
	m := Compute(nil, nil, false)
	assert.Equal(t, MethodNotApplicable, m.Method)
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
