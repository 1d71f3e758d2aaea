// Package allocation computes weighted breakdowns of a portfolio's market
// value across fixed and custom taxonomies. It consumes Holding records
// from internal/holdings and classification weights from a TaxonomyStore;
// it never touches a snapshot or an activity.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/holdings"
)

// The five fixed taxonomies every portfolio allocation reports, with the
// conventional id/name/color every client renders identically.
var (
	TaxonomyAssetClasses  = TaxonomyDef{ID: "asset_classes", Name: "Asset Classes", Color: "#879a39"}
	TaxonomySectors       = TaxonomyDef{ID: "industries_gics", Name: "Sectors", Color: "#da702c"}
	TaxonomyRegions       = TaxonomyDef{ID: "regions", Name: "Regions", Color: "#8b7ec8"}
	TaxonomyRiskCategory  = TaxonomyDef{ID: "risk_category", Name: "Risk Category", Color: "#d14d41"}
	TaxonomySecurityTypes = TaxonomyDef{ID: "type_of_security", Name: "Type of Security", Color: "#3aa99f"}
)

// unknownCategoryID is the conventional residual bucket every taxonomy
// reports for market value with no classification, or whose weights sum to
// less than 100%.
const unknownCategoryID = "unknown"
const unknownCategoryName = "Unknown"

// TaxonomyDef identifies one taxonomy's display metadata.
type TaxonomyDef struct {
	ID    string
	Name  string
	Color string
}

// Classification is one (category, weight) pair an asset carries within a
// taxonomy. An asset's weights within one taxonomy may sum to less than
// 100%; the remainder is attributed to the unknown bucket.
type Classification struct {
	TaxonomyID string
	CategoryID string
	Weight     decimal.Decimal // 0..1
}

// CategoryMeta supplies the display name and color for a (taxonomy,
// category) pair the ClassificationStore references.
type CategoryMeta struct {
	Name  string
	Color string
}

// ClassificationStore resolves an asset's classifications across every
// taxonomy it participates in, fixed and custom alike.
type ClassificationStore interface {
	ClassificationsForAsset(assetID string) ([]Classification, error)
	CategoryMeta(taxonomyID, categoryID string) (CategoryMeta, bool, error)
	CustomTaxonomies() ([]TaxonomyDef, error)
}

// CategoryAllocation is one category's share of the portfolio within a
// taxonomy.
type CategoryAllocation struct {
	CategoryID   string
	CategoryName string
	Color        string
	Value        decimal.Decimal
	Percentage   decimal.Decimal // 0-100
}

// TaxonomyAllocation is the full breakdown for one taxonomy, categories
// sorted by value descending.
type TaxonomyAllocation struct {
	TaxonomyID   string
	TaxonomyName string
	Color        string
	Categories   []CategoryAllocation
}

// PortfolioAllocations is the complete breakdown across every taxonomy.
type PortfolioAllocations struct {
	AssetClasses   TaxonomyAllocation
	Sectors        TaxonomyAllocation
	Regions        TaxonomyAllocation
	RiskCategory   TaxonomyAllocation
	SecurityTypes  TaxonomyAllocation
	CustomGroups   []TaxonomyAllocation
	TotalValue     decimal.Decimal
}

// Engine computes PortfolioAllocations from a set of holdings.
type Engine struct {
	classifications ClassificationStore
}

func New(classifications ClassificationStore) *Engine {
	return &Engine{classifications: classifications}
}

// Compute distributes each holding's base-currency market value across
// every taxonomy's categories in proportion to the asset's classification
// weights, attributing any unweighted residual to the unknown bucket.
func (e *Engine) Compute(hs []holdings.Holding) (PortfolioAllocations, error) {
	custom, err := e.classifications.CustomTaxonomies()
	if err != nil {
		return PortfolioAllocations{}, err
	}

	fixed := []TaxonomyDef{TaxonomyAssetClasses, TaxonomySectors, TaxonomyRegions, TaxonomyRiskCategory, TaxonomySecurityTypes}
	allTaxonomies := append(append([]TaxonomyDef{}, fixed...), custom...)

	totals := make(map[string]map[string]decimal.Decimal) // taxonomyID -> categoryID -> value
	for _, t := range allTaxonomies {
		totals[t.ID] = make(map[string]decimal.Decimal)
	}

	totalValue := decimal.Zero
	for _, h := range hs {
		totalValue = totalValue.Add(h.MarketValue.Base)

		classifications, err := e.classifications.ClassificationsForAsset(h.AssetID)
		if err != nil {
			return PortfolioAllocations{}, err
		}

		byTaxonomy := make(map[string][]Classification)
		for _, c := range classifications {
			byTaxonomy[c.TaxonomyID] = append(byTaxonomy[c.TaxonomyID], c)
		}

		for _, t := range allTaxonomies {
			cs := byTaxonomy[t.ID]
			weighted := decimal.Zero
			for _, c := range cs {
				share := h.MarketValue.Base.Mul(c.Weight)
				totals[t.ID][c.CategoryID] = totals[t.ID][c.CategoryID].Add(share)
				weighted = weighted.Add(c.Weight)
			}
			residualWeight := decimal.NewFromInt(1).Sub(weighted)
			if residualWeight.IsPositive() {
				totals[t.ID][unknownCategoryID] = totals[t.ID][unknownCategoryID].Add(h.MarketValue.Base.Mul(residualWeight))
			}
		}
	}

	result := PortfolioAllocations{TotalValue: totalValue}
	breakdowns := make(map[string]TaxonomyAllocation, len(allTaxonomies))
	for _, t := range allTaxonomies {
		breakdowns[t.ID] = e.buildTaxonomyAllocation(t, totals[t.ID], totalValue)
	}

	result.AssetClasses = breakdowns[TaxonomyAssetClasses.ID]
	result.Sectors = breakdowns[TaxonomySectors.ID]
	result.Regions = breakdowns[TaxonomyRegions.ID]
	result.RiskCategory = breakdowns[TaxonomyRiskCategory.ID]
	result.SecurityTypes = breakdowns[TaxonomySecurityTypes.ID]
	for _, t := range custom {
		result.CustomGroups = append(result.CustomGroups, breakdowns[t.ID])
	}

	return result, nil
}

func (e *Engine) buildTaxonomyAllocation(t TaxonomyDef, categoryTotals map[string]decimal.Decimal, totalValue decimal.Decimal) TaxonomyAllocation {
	out := TaxonomyAllocation{TaxonomyID: t.ID, TaxonomyName: t.Name, Color: t.Color}

	for categoryID, value := range categoryTotals {
		if value.IsZero() {
			continue
		}
		name, color := unknownCategoryName, "#999999"
		if categoryID != unknownCategoryID {
			if meta, ok, err := e.classifications.CategoryMeta(t.ID, categoryID); err == nil && ok {
				name, color = meta.Name, meta.Color
			} else {
				name = categoryID
			}
		}

		percentage := decimal.Zero
		if totalValue.IsPositive() {
			percentage = value.Div(totalValue).Mul(decimal.NewFromInt(100))
		}

		out.Categories = append(out.Categories, CategoryAllocation{
			CategoryID:   categoryID,
			CategoryName: name,
			Color:        color,
			Value:        value,
			Percentage:   percentage,
		})
	}

	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].Value.GreaterThan(out.Categories[j].Value)
	})

	return out
}
