// Package holdings projects a single account's positions, as of a date,
// into presentation-ready records. It joins the latest snapshot with the
// quote and FX graphs and never touches the activity stream directly.
package holdings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/domain"
	"github.com/aristath/wealthfolio-core/internal/fx"
	"github.com/aristath/wealthfolio-core/internal/snapshot"
)

// MonetaryValue pairs a local-currency amount with its base-currency
// translation, the shape every money-like holdings field takes.
type MonetaryValue struct {
	Local decimal.Decimal
	Base  decimal.Decimal
}

// Holding is one asset's current position within an account, ready for
// presentation.
type Holding struct {
	AccountID string
	AssetID   string
	AssetName string
	Currency  string

	Quantity decimal.Decimal

	MarketValue MonetaryValue
	CostBasis   MonetaryValue

	UnrealizedGain        MonetaryValue
	UnrealizedGainPercent decimal.Decimal

	DayChange        MonetaryValue
	DayChangePercent decimal.Decimal

	PortfolioWeight decimal.Decimal // fraction of the account's total market value

	AsOf time.Time
}

// SnapshotStore resolves the latest AccountStateSnapshot strictly before a
// date; Project passes the day after its as-of date to get the latest one
// at or before it.
type SnapshotStore interface {
	LatestBefore(accountID string, date time.Time) (*snapshot.AccountStateSnapshot, error)
}

// QuoteStore resolves the latest quote at or before a date, and the prior
// trading day's close for day-change computation.
type QuoteStore interface {
	LatestQuoteOnOrBefore(assetID string, date time.Time) (domain.Quote, bool, error)
	PreviousClose(assetID string, date time.Time) (domain.Quote, bool, error)
}

// AssetStore resolves display metadata for an asset.
type AssetStore interface {
	Asset(assetID string) (domain.Asset, bool, error)
}

// Projector computes Holding records for an account as of a date.
type Projector struct {
	snapshots SnapshotStore
	quotes    QuoteStore
	assets    AssetStore
	fxGraph   *fx.Graph
	baseCcy   string
}

func New(snapshots SnapshotStore, quotes QuoteStore, assets AssetStore, fxGraph *fx.Graph, baseCurrency string) *Projector {
	return &Projector{snapshots: snapshots, quotes: quotes, assets: assets, fxGraph: fxGraph, baseCcy: baseCurrency}
}

// Project returns one Holding per open position in accountID as of date.
func (p *Projector) Project(accountID string, date time.Time) ([]Holding, error) {
	snap, err := p.snapshots.LatestBefore(accountID, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	holdings := make([]Holding, 0, len(snap.Positions))
	totalMarketValue := decimal.Zero

	for assetID, pos := range snap.Positions {
		if pos.Quantity.IsZero() {
			continue
		}
		h, err := p.projectOne(accountID, assetID, pos, date)
		if err != nil {
			return nil, err
		}
		totalMarketValue = totalMarketValue.Add(h.MarketValue.Base)
		holdings = append(holdings, h)
	}

	if totalMarketValue.IsPositive() {
		for i := range holdings {
			holdings[i].PortfolioWeight = holdings[i].MarketValue.Base.Div(totalMarketValue)
		}
	}

	return holdings, nil
}

func (p *Projector) projectOne(accountID, assetID string, pos snapshot.Position, date time.Time) (Holding, error) {
	h := Holding{AccountID: accountID, AssetID: assetID, Quantity: pos.Quantity, AsOf: date}

	if asset, ok, err := p.assets.Asset(assetID); err == nil && ok {
		h.AssetName = asset.Name
		h.Currency = asset.Currency
	}

	quote, ok, err := p.quotes.LatestQuoteOnOrBefore(assetID, date)
	if err != nil {
		return Holding{}, err
	}
	if !ok {
		return h, nil
	}
	if h.Currency == "" {
		h.Currency = quote.Currency
	}

	rate, err := p.fxGraph.At(quote.Currency, p.baseCcy, date)
	if err != nil {
		return h, nil
	}

	marketValueLocal := pos.Quantity.Mul(quote.Price)
	h.MarketValue = MonetaryValue{Local: marketValueLocal, Base: marketValueLocal.Mul(rate)}
	h.CostBasis = MonetaryValue{Local: pos.CostBasis, Base: pos.CostBasis.Mul(rate)}

	gainLocal := marketValueLocal.Sub(pos.CostBasis)
	h.UnrealizedGain = MonetaryValue{Local: gainLocal, Base: gainLocal.Mul(rate)}
	if pos.CostBasis.IsPositive() {
		h.UnrealizedGainPercent = gainLocal.Div(pos.CostBasis)
	}

	if prevQuote, ok, err := p.quotes.PreviousClose(assetID, date); err == nil && ok {
		dayChangeLocal := pos.Quantity.Mul(quote.Price.Sub(prevQuote.Price))
		h.DayChange = MonetaryValue{Local: dayChangeLocal, Base: dayChangeLocal.Mul(rate)}
		if prevQuote.Price.IsPositive() {
			h.DayChangePercent = quote.Price.Sub(prevQuote.Price).Div(prevQuote.Price)
		}
	}

	return h, nil
}
