package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityIDRoundTrip(t *testing.T) {
	id := SecurityID("spy", "xnys")
	assert.Equal(t, "SPY:XNYS", id)

	parsed, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, KindSecurity, parsed.Kind)
	assert.Equal(t, "SPY", parsed.Primary)
	assert.Equal(t, "XNYS", parsed.Qualifier)
}

func TestFxIDParsesAsFxRate(t *testing.T) {
	id := FxID("EUR", "USD")
	parsed, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, KindFxRate, parsed.Kind)
}

func TestCashIDParsesAsCash(t *testing.T) {
	id := CashID("usd")
	assert.Equal(t, "CASH:USD", id)
	parsed, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, KindCash, parsed.Kind)
}

func TestSyntheticIDUnknownKind(t *testing.T) {
	_, err := SyntheticID(KindSecurity, "abc")
	assert.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("no-colon-here")
	assert.Error(t, err)
}

func TestYahooSuffixRoundTrip(t *testing.T) {
	e, ok := YahooSuffixForMIC("XTSE")
	require.True(t, ok)
	assert.Equal(t, ".TO", e.Suffix)

	bare, mic, ok := StripYahooSuffix("SHOP.TO")
	require.True(t, ok)
	assert.Equal(t, "SHOP", bare)
	assert.Equal(t, "XTSE", mic)
}

func TestYahooSuffixUnknownMIC(t *testing.T) {
	_, ok := YahooSuffixForMIC("XXXX")
	assert.False(t, ok)
}
