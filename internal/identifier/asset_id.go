// Package identifier parses and builds the canonical asset identifiers used
// throughout the portfolio core. An asset ID is always of the form
// "<primary>:<qualifier>", e.g. a listed security "SPY:XNYS" (ticker + MIC),
// a crypto pair "BTC:USD" (base + quote currency), an FX rate "EUR:USD", or
// cash "CASH:USD". Assets with no natural primary/qualifier split (property,
// vehicles, collectibles, other alternative assets) use a synthetic
// namespace prefix plus an opaque id: "PROP:<id>", "VEH:<id>", "COLL:<id>",
// "PREC:<id>", "LIAB:<id>", "ALT:<id>".
package identifier

import (
	"fmt"
	"strings"
)

// Kind classifies the asset an AssetID refers to.
type Kind string

const (
	KindSecurity    Kind = "security"
	KindCrypto      Kind = "crypto"
	KindFxRate      Kind = "fx_rate"
	KindCash        Kind = "cash"
	KindProperty    Kind = "property"
	KindVehicle     Kind = "vehicle"
	KindCollectible Kind = "collectible"
	KindPrecious    Kind = "precious_metal"
	KindLiability   Kind = "liability"
	KindOther       Kind = "other"
)

var namespacePrefix = map[Kind]string{
	KindProperty:    "PROP",
	KindVehicle:     "VEH",
	KindCollectible: "COLL",
	KindPrecious:    "PREC",
	KindLiability:   "LIAB",
	KindOther:       "ALT",
}

// AssetID is a parsed canonical asset identifier.
type AssetID struct {
	Kind      Kind
	Primary   string // ticker, crypto base, FX base currency, or namespace prefix
	Qualifier string // MIC, quote currency, or opaque id
}

// String renders the canonical "<primary>:<qualifier>" form.
func (a AssetID) String() string {
	return a.Primary + ":" + a.Qualifier
}

// SecurityID builds a canonical listed-security asset id, e.g. "AAPL:XNAS".
func SecurityID(ticker, mic string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(ticker), strings.ToUpper(mic))
}

// CryptoID builds a canonical crypto-pair asset id, e.g. "BTC:USD".
func CryptoID(base, quote string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(base), strings.ToUpper(quote))
}

// FxID builds a canonical FX-rate asset id, e.g. "EUR:USD".
func FxID(from, to string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(from), strings.ToUpper(to))
}

// CashID builds a canonical cash asset id, e.g. "CASH:USD".
func CashID(currency string) string {
	return fmt.Sprintf("CASH:%s", strings.ToUpper(currency))
}

// SyntheticID builds a namespaced id for an asset kind that has no natural
// primary/qualifier split (property, vehicle, collectible, precious metal,
// liability, or other alternative asset), e.g. "PROP:ck3x9f2".
func SyntheticID(kind Kind, opaqueID string) (string, error) {
	prefix, ok := namespacePrefix[kind]
	if !ok {
		return "", fmt.Errorf("identifier: kind %q has no synthetic namespace", kind)
	}
	return fmt.Sprintf("%s:%s", prefix, opaqueID), nil
}

var prefixToKind = map[string]Kind{
	"PROP": KindProperty,
	"VEH":  KindVehicle,
	"COLL": KindCollectible,
	"PREC": KindPrecious,
	"LIAB": KindLiability,
	"ALT":  KindOther,
}

// Parse splits an asset id into its primary and qualifier parts and infers
// its Kind from the qualifier/prefix shape. It does not attempt to
// disambiguate a security from a crypto pair purely from the id string
// (both are "<primary>:<qualifier>" with no reserved prefix) — callers that
// need an authoritative Kind should consult the asset's stored record;
// Parse reports KindSecurity as the default two-segment guess.
func Parse(id string) (AssetID, error) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return AssetID{}, fmt.Errorf("identifier: %q is not a valid asset id (expected PRIMARY:QUALIFIER)", id)
	}
	primary, qualifier := parts[0], parts[1]

	if primary == "CASH" {
		return AssetID{Kind: KindCash, Primary: primary, Qualifier: qualifier}, nil
	}
	if kind, ok := prefixToKind[primary]; ok {
		return AssetID{Kind: kind, Primary: primary, Qualifier: qualifier}, nil
	}

	// Heuristic: when both primary and qualifier are three upper-case
	// letters the id is reported as an FX rate (a three-letter crypto pair
	// such as "BTC:USD" lands here too); anything else is a security.
	if len(qualifier) == 3 && isCurrencyLike(qualifier) && isCurrencyLike(primary) {
		return AssetID{Kind: KindFxRate, Primary: primary, Qualifier: qualifier}, nil
	}
	return AssetID{Kind: KindSecurity, Primary: primary, Qualifier: qualifier}, nil
}

func isCurrencyLike(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
