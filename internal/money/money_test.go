package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuedAddSameCurrency(t *testing.T) {
	a := Valued{Amount: decimal.NewFromInt(100), Currency: "USD"}
	b := Valued{Amount: decimal.NewFromFloat(25.5), Currency: "USD"}

	sum := a.Add(b)

	assert.Equal(t, "USD", sum.Currency)
	assert.True(t, sum.Amount.Equal(decimal.NewFromFloat(125.5)))
}

func TestValuedAddDifferentCurrenciesPanics(t *testing.T) {
	a := Valued{Amount: decimal.NewFromInt(100), Currency: "USD"}
	b := Valued{Amount: decimal.NewFromInt(100), Currency: "EUR"}

	assert.Panics(t, func() {
		_ = a.Add(b)
	})
}

func TestRoundDisplay(t *testing.T) {
	d := decimal.RequireFromString("123.4567891234")
	rounded := RoundDisplay(d)
	assert.Equal(t, "123.456789", rounded.String())
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("not-a-number")
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseAmountValid(t *testing.T) {
	d, err := ParseAmount("42.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(42.5)))
}
