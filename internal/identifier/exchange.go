package identifier

// ExchangeSuffix maps an ISO 10383 Market Identifier Code to the pieces a
// provider's rules resolver needs: the ticker suffix that provider appends
// to a bare symbol (e.g. ".TO" for Yahoo-style tickers) and the exchange's
// home currency, used to validate a resolved quote's currency.
type ExchangeSuffix struct {
	MIC      string
	Suffix   string // empty for MICs that take the bare ticker (e.g. US exchanges on Yahoo)
	Currency string
}

// yahooSuffixes is the Yahoo-Finance-style suffix table. It is intentionally
// scoped to the exchanges spec scenarios exercise; a MIC missing from this
// table makes the rules resolver report no resolution (ok=false), not a
// silent best guess.
var yahooSuffixes = []ExchangeSuffix{
	{MIC: "XNYS", Suffix: "", Currency: "USD"},
	{MIC: "XNAS", Suffix: "", Currency: "USD"},
	{MIC: "ARCX", Suffix: "", Currency: "USD"},
	{MIC: "XTSE", Suffix: ".TO", Currency: "CAD"},
	{MIC: "XTSX", Suffix: ".V", Currency: "CAD"},
	{MIC: "XLON", Suffix: ".L", Currency: "GBP"},
	{MIC: "XHKG", Suffix: ".HK", Currency: "HKD"},
	{MIC: "XPAR", Suffix: ".PA", Currency: "EUR"},
	{MIC: "XETR", Suffix: ".DE", Currency: "EUR"},
	{MIC: "XAMS", Suffix: ".AS", Currency: "EUR"},
	{MIC: "XMIL", Suffix: ".MI", Currency: "EUR"},
	{MIC: "XSWX", Suffix: ".SW", Currency: "CHF"},
	{MIC: "XASX", Suffix: ".AX", Currency: "AUD"},
	{MIC: "XTKS", Suffix: ".T", Currency: "JPY"},
	{MIC: "XSES", Suffix: ".SI", Currency: "SGD"},
}

var micIndex map[string]ExchangeSuffix
var suffixIndex map[string]ExchangeSuffix

func init() {
	micIndex = make(map[string]ExchangeSuffix, len(yahooSuffixes))
	suffixIndex = make(map[string]ExchangeSuffix, len(yahooSuffixes))
	for _, e := range yahooSuffixes {
		micIndex[e.MIC] = e
		if e.Suffix != "" {
			suffixIndex[e.Suffix] = e
		}
	}
}

// YahooSuffixForMIC returns the Yahoo ticker suffix and home currency for a
// MIC, and whether the MIC is known.
func YahooSuffixForMIC(mic string) (ExchangeSuffix, bool) {
	e, ok := micIndex[mic]
	return e, ok
}

// MICForYahooSuffix reverses YahooSuffixForMIC, used when importing
// provider search results that carry a Yahoo-style ticker rather than a MIC.
func MICForYahooSuffix(suffix string) (ExchangeSuffix, bool) {
	e, ok := suffixIndex[suffix]
	return e, ok
}

// openFIGIExchangeCodes maps a MIC to the Bloomberg exchange code OpenFIGI's
// mapping API expects in MappingRequest.ExchCode. Scoped to the same
// exchanges yahooSuffixes covers.
var openFIGIExchangeCodes = map[string]string{
	"XNYS": "US", "XNAS": "US", "ARCX": "US",
	"XTSE": "CT", "XTSX": "CT",
	"XLON": "LN",
	"XHKG": "HK",
	"XPAR": "FP",
	"XETR": "GR",
	"XAMS": "NA",
	"XMIL": "IM",
	"XSWX": "SW",
	"XASX": "AU",
	"XTKS": "JT",
	"XSES": "SP",
}

// OpenFIGIExchangeCodeForMIC returns the Bloomberg exchange code OpenFIGI
// expects for a MIC, and whether the MIC is known.
func OpenFIGIExchangeCodeForMIC(mic string) (string, bool) {
	code, ok := openFIGIExchangeCodes[mic]
	return code, ok
}

// StripYahooSuffix removes any known Yahoo suffix from a ticker, returning
// the bare ticker and the MIC it belongs to, if recognized.
func StripYahooSuffix(yahooTicker string) (bareTicker string, mic string, ok bool) {
	for _, e := range yahooSuffixes {
		if e.Suffix == "" {
			continue
		}
		if len(yahooTicker) > len(e.Suffix) && yahooTicker[len(yahooTicker)-len(e.Suffix):] == e.Suffix {
			return yahooTicker[:len(yahooTicker)-len(e.Suffix)], e.MIC, true
		}
	}
	return yahooTicker, "", false
}
