package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthfolio-core/internal/holdings"
)

type stubClassificationStore struct {
	classifications map[string][]Classification
	meta            map[string]CategoryMeta
	custom          []TaxonomyDef
}

func (s stubClassificationStore) ClassificationsForAsset(assetID string) ([]Classification, error) {
	return s.classifications[assetID], nil
}
func (s stubClassificationStore) CategoryMeta(taxonomyID, categoryID string) (CategoryMeta, bool, error) {
	m, ok := s.meta[taxonomyID+"|"+categoryID]
	return m, ok, nil
}
func (s stubClassificationStore) CustomTaxonomies() ([]TaxonomyDef, error) {
	return s.custom, nil
}

func mv(base string) holdings.MonetaryValue {
	return holdings.MonetaryValue{Base: decimal.RequireFromString(base)}
}

func TestComputeDistributesFullyClassifiedAsset(t *testing.T) {
	store := stubClassificationStore{
		classifications: map[string][]Classification{
			"AAPL:XNAS": {{TaxonomyID: "asset_classes", CategoryID: "equity", Weight: decimal.NewFromInt(1)}},
		},
		meta: map[string]CategoryMeta{
			"asset_classes|equity": {Name: "Equity", Color: "#123456"},
		},
	}
	engine := New(store)

	result, err := engine.Compute([]holdings.Holding{
		{AssetID: "AAPL:XNAS", MarketValue: mv("1000")},
	})
	require.NoError(t, err)
	assert.Equal(t, "asset_classes", result.AssetClasses.TaxonomyID)
	require.Len(t, result.AssetClasses.Categories, 1)
	assert.Equal(t, "equity", result.AssetClasses.Categories[0].CategoryID)
	assert.Equal(t, "Equity", result.AssetClasses.Categories[0].CategoryName)
	assert.Equal(t, "1000", result.AssetClasses.Categories[0].Value.String())
	assert.Equal(t, "100", result.AssetClasses.Categories[0].Percentage.String())
}

func TestComputeAttributesUnweightedResidualToUnknown(t *testing.T) {
	store := stubClassificationStore{
		classifications: map[string][]Classification{
			"AAPL:XNAS": {{TaxonomyID: "asset_classes", CategoryID: "equity", Weight: decimal.RequireFromString("0.6")}},
		},
		meta: map[string]CategoryMeta{"asset_classes|equity": {Name: "Equity", Color: "#123456"}},
	}
	engine := New(store)

	result, err := engine.Compute([]holdings.Holding{
		{AssetID: "AAPL:XNAS", MarketValue: mv("1000")},
	})
	require.NoError(t, err)

	var unknown *CategoryAllocation
	for i := range result.AssetClasses.Categories {
		if result.AssetClasses.Categories[i].CategoryID == unknownCategoryID {
			unknown = &result.AssetClasses.Categories[i]
		}
	}
	require.NotNil(t, unknown)
	assert.Equal(t, "400", unknown.Value.String())
}

func TestComputeWithNoClassificationsGoesEntirelyUnknown(t *testing.T) {
	store := stubClassificationStore{classifications: map[string][]Classification{}}
	engine := New(store)

	result, err := engine.Compute([]holdings.Holding{
		{AssetID: "AAPL:XNAS", MarketValue: mv("1000")},
	})
	require.NoError(t, err)
	require.Len(t, result.Sectors.Categories, 1)
	assert.Equal(t, unknownCategoryID, result.Sectors.Categories[0].CategoryID)
	assert.Equal(t, "1000", result.Sectors.Categories[0].Value.String())
}

func TestComputeIncludesCustomTaxonomies(t *testing.T) {
	custom := TaxonomyDef{ID: "my_strategy", Name: "My Strategy", Color: "#abcdef"}
	store := stubClassificationStore{
		classifications: map[string][]Classification{
			"AAPL:XNAS": {{TaxonomyID: "my_strategy", CategoryID: "core", Weight: decimal.NewFromInt(1)}},
		},
		meta:   map[string]CategoryMeta{"my_strategy|core": {Name: "Core", Color: "#abcdef"}},
		custom: []TaxonomyDef{custom},
	}
	engine := New(store)

	result, err := engine.Compute([]holdings.Holding{
		{AssetID: "AAPL:XNAS", MarketValue: mv("1000")},
	})
	require.NoError(t, err)
	require.Len(t, result.CustomGroups, 1)
	assert.Equal(t, "my_strategy", result.CustomGroups[0].TaxonomyID)
	assert.Equal(t, "core", result.CustomGroups[0].Categories[0].CategoryID)
}

func TestComputeSortsCategoriesByValueDescending(t *testing.T) {
	store := stubClassificationStore{
		classifications: map[string][]Classification{
			"A": {{TaxonomyID: "asset_classes", CategoryID: "small", Weight: decimal.NewFromInt(1)}},
			"B": {{TaxonomyID: "asset_classes", CategoryID: "big", Weight: decimal.NewFromInt(1)}},
		},
		meta: map[string]CategoryMeta{
			"asset_classes|small": {Name: "Small", Color: "#111"},
			"asset_classes|big":   {Name: "Big", Color: "#222"},
		},
	}
	engine := New(store)

	result, err := engine.Compute([]holdings.Holding{
		{AssetID: "A", MarketValue: mv("100")},
		{AssetID: "B", MarketValue: mv("900")},
	})
	require.NoError(t, err)
	require.Len(t, result.AssetClasses.Categories, 2)
	assert.Equal(t, "big", result.AssetClasses.Categories[0].CategoryID)
	assert.Equal(t, "small", result.AssetClasses.Categories[1].CategoryID)
}
