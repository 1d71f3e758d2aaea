// Package performance computes return series strictly from the valuation
// engine's output and the contribution stream the snapshot engine tracks.
// It never reads an activity or a quote directly.
package performance

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Method identifies which return methodology a metric set was computed
// with, surfaced to callers so they can label results correctly rather
// than assume TWR is always available.
type Method string

const (
	MethodTimeWeighted    Method = "TIME_WEIGHTED"
	MethodMoneyWeighted   Method = "MONEY_WEIGHTED"
	MethodSimple          Method = "SIMPLE"
	MethodPriceBased      Method = "SIMPLE_RETURN_PRICE_BASED" // Holdings mode
	MethodNotApplicable   Method = "NOT_APPLICABLE"
)

// ValuationPoint is the minimal slice of a DailyAccountValuation the
// performance engine needs: total value and net contribution as of a date.
type ValuationPoint struct {
	Date            time.Time
	TotalValue      decimal.Decimal
	NetContribution decimal.Decimal
}

// CashFlow is one contribution/withdrawal event the MWR and TWR
// calculations treat as an external cash movement. Amount is signed:
// positive for money entering the account (DEPOSIT, external TRANSFER_IN),
// negative for money leaving (WITHDRAWAL, external TRANSFER_OUT). Internal
// transfers between two tracked accounts are never cash flows — they
// cancel and must be excluded before calling into this package.
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Metrics is the computed performance result for one account over one
// period. TWR and MWR fields are nil for Holdings-mode accounts or where
// the underlying calculation could not be performed.
type Metrics struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Currency    string

	SimpleReturn           decimal.Decimal
	AnnualizedSimpleReturn *decimal.Decimal

	CumulativeTWR *decimal.Decimal
	AnnualizedTWR *decimal.Decimal

	CumulativeMWR *decimal.Decimal
	AnnualizedMWR *decimal.Decimal

	Volatility  decimal.Decimal
	MaxDrawdown decimal.Decimal

	Method        Method
	IsHoldingsMode bool
}

// Compute derives a full Metrics set from a chronologically ordered
// valuation series and cash flow stream. isHoldingsMode forces TWR/MWR to
// nil and reports MethodPriceBased, per the tracking-mode contract.
func Compute(series []ValuationPoint, cashFlows []CashFlow, isHoldingsMode bool) Metrics {
	m := Metrics{IsHoldingsMode: isHoldingsMode}
	if len(series) == 0 {
		m.Method = MethodNotApplicable
		return m
	}

	first, last := series[0], series[len(series)-1]
	m.PeriodStart = first.Date
	m.PeriodEnd = last.Date

	m.SimpleReturn = simpleReturn(first, last)
	m.Volatility = volatility(series)
	m.MaxDrawdown = maxDrawdown(series)

	days := last.Date.Sub(first.Date).Hours() / 24
	m.AnnualizedSimpleReturn = annualize(m.SimpleReturn, days)

	if isHoldingsMode {
		m.Method = MethodPriceBased
		return m
	}

	twr := timeWeightedReturn(series, cashFlows)
	m.CumulativeTWR = &twr
	m.AnnualizedTWR = annualize(twr, days)

	mwr, ok := moneyWeightedReturn(first, last, cashFlows)
	if ok {
		m.CumulativeMWR = &mwr
		m.AnnualizedMWR = annualize(mwr, days)
	}

	m.Method = MethodTimeWeighted
	return m
}

// simpleReturn implements (final - initial - net_contribution) /
// (initial + max(0, net_contribution)).
func simpleReturn(first, last ValuationPoint) decimal.Decimal {
	netContribution := last.NetContribution.Sub(first.NetContribution)
	numerator := last.TotalValue.Sub(first.TotalValue).Sub(netContribution)

	denomContribution := decimal.Zero
	if netContribution.IsPositive() {
		denomContribution = netContribution
	}
	denominator := first.TotalValue.Add(denomContribution)
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// annualize applies (1+r)^(365/days) - 1. Returns nil when days < 30, per
// the contract that short periods don't support meaningful annualization.
func annualize(r decimal.Decimal, days float64) *decimal.Decimal {
	if days < 30 {
		return nil
	}
	rf, _ := r.Float64()
	annualized := math.Pow(1+rf, 365/days) - 1
	out := decimal.NewFromFloat(annualized)
	return &out
}

// timeWeightedReturn chain-links sub-period returns between consecutive
// cash-flow dates. Each sub-period's return is valued from the valuation
// immediately before the flow to the valuation immediately after.
func timeWeightedReturn(series []ValuationPoint, cashFlows []CashFlow) decimal.Decimal {
	if len(series) < 2 {
		return decimal.Zero
	}

	byDate := make(map[string]CashFlow, len(cashFlows))
	for _, cf := range cashFlows {
		byDate[cf.Date.Format("2006-01-02")] = cf
	}

	linked := decimal.NewFromInt(1)
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		flow := decimal.Zero
		if cf, ok := byDate[cur.Date.Format("2006-01-02")]; ok {
			flow = cf.Amount
		}
		base := prev.TotalValue
		if base.IsZero() {
			continue
		}
		subReturn := cur.TotalValue.Sub(flow).Sub(base).Div(base)
		linked = linked.Mul(decimal.NewFromInt(1).Add(subReturn))
	}
	return linked.Sub(decimal.NewFromInt(1))
}

// moneyWeightedReturn solves for the IRR of (-initial, cash_flow_i...,
// +final) by bisection bracketed at ±99%, refined with Newton's method.
// Non-convergence after 64 iterations reports ok=false rather than
// extrapolating an unreliable rate.
func moneyWeightedReturn(first, last ValuationPoint, cashFlows []CashFlow) (decimal.Decimal, bool) {
	type flow struct {
		days   float64
		amount float64
	}
	flows := make([]flow, 0, len(cashFlows)+2)
	flows = append(flows, flow{days: 0, amount: -toFloat(first.TotalValue)})
	for _, cf := range cashFlows {
		d := cf.Date.Sub(first.Date).Hours() / 24
		flows = append(flows, flow{days: d, amount: toFloat(cf.Amount)})
	}
	totalDays := last.Date.Sub(first.Date).Hours() / 24
	flows = append(flows, flow{days: totalDays, amount: toFloat(last.TotalValue)})

	npv := func(rate float64) float64 {
		total := 0.0
		for _, f := range flows {
			total += f.amount / math.Pow(1+rate, f.days/365)
		}
		return total
	}

	lo, hi := -0.99, 0.99
	npvLo, npvHi := npv(lo), npv(hi)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return decimal.Zero, false
	}

	const maxIterations = 64
	const bisectionIterations = 32

	rate := (lo + hi) / 2
	for i := 0; i < bisectionIterations; i++ {
		mid := (lo + hi) / 2
		v := npv(mid)
		if math.Abs(v) < 1e-9 {
			return decimal.NewFromFloat(mid), true
		}
		if v*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = v
		}
		rate = mid
	}

	// Bisection has bracketed the root tightly; polish with Newton using a
	// numerically estimated derivative for the remaining iteration budget.
	const step = 1e-6
	for i := 0; i < maxIterations-bisectionIterations; i++ {
		v := npv(rate)
		if math.Abs(v) < 1e-9 {
			return decimal.NewFromFloat(rate), true
		}
		derivative := (npv(rate+step) - v) / step
		if derivative == 0 {
			break
		}
		next := rate - v/derivative
		if next < lo || next > hi || math.IsNaN(next) {
			break
		}
		rate = next
	}
	return decimal.Zero, false
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// volatility is the sample standard deviation of daily simple returns,
// annualized by multiplying by sqrt(252) trading days.
func volatility(series []ValuationPoint) decimal.Decimal {
	if len(series) < 3 {
		return decimal.Zero
	}
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := toFloat(series[i-1].TotalValue)
		if prev == 0 {
			continue
		}
		cur := toFloat(series[i].TotalValue)
		returns = append(returns, (cur-prev)/prev)
	}
	if len(returns) < 2 {
		return decimal.Zero
	}
	sd := stat.StdDev(returns, nil)
	return decimal.NewFromFloat(sd * math.Sqrt(252))
}

// maxDrawdown is the worst peak-to-trough decline observed in the
// valuation series. The running peak at each point is talib's rolling-max
// primitive evaluated over the expanding prefix up to that point, rather
// than a hand-rolled running maximum.
func maxDrawdown(series []ValuationPoint) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = toFloat(p.TotalValue)
	}

	worst := 0.0
	for i := range values {
		peaks := talib.Max(values[:i+1], i+1)
		peak := peaks[len(peaks)-1]
		if peak == 0 {
			continue
		}
		drawdown := (peak - values[i]) / peak
		if drawdown > worst {
			worst = drawdown
		}
	}
	return decimal.NewFromFloat(worst).Neg()
}
