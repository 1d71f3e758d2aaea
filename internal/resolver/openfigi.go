package resolver

import (
	"github.com/aristath/wealthfolio-core/internal/clients/openfigi"
	"github.com/aristath/wealthfolio-core/internal/identifier"
)

// openFIGIProviders lists the providers OpenFIGIResolver is willing to
// resolve for. OpenFIGI returns a Bloomberg-style ticker, which matches
// Alpha Vantage's bare-ticker expectation for US-listed securities and
// otherwise needs no further suffixing for the providers this resolves.
var openFIGIProviders = map[string]bool{
	"ALPHA_VANTAGE": true,
}

// isinLookup is the slice of *openfigi.Client's API this resolver needs,
// narrowed so tests can fake it without an HTTP round trip.
type isinLookup interface {
	LookupISINForExchange(isin, exchCode string) (*openfigi.MappingResult, error)
}

// OpenFIGIResolver is the chain's last-resort link for securities
// RulesResolver has no MIC suffix table entry for: given an asset's ISIN,
// it asks OpenFIGI which ticker that security trades under on the MIC's
// exchange. It never handles FX, crypto, or precious-metal assets.
type OpenFIGIResolver struct {
	client isinLookup
}

// NewOpenFIGIResolver wraps an OpenFIGI client as a resolver chain link.
func NewOpenFIGIResolver(client *openfigi.Client) *OpenFIGIResolver {
	return &OpenFIGIResolver{client: client}
}

func (o *OpenFIGIResolver) Resolve(asset AssetRef, provider string) (ResolvedSymbol, bool) {
	if o.client == nil || asset.ISIN == "" || !openFIGIProviders[provider] || asset.Kind != identifier.KindSecurity {
		return ResolvedSymbol{}, false
	}

	id, err := identifier.Parse(asset.ID)
	if err != nil {
		return ResolvedSymbol{}, false
	}

	exchCode, ok := identifier.OpenFIGIExchangeCodeForMIC(id.Qualifier)
	if !ok {
		return ResolvedSymbol{}, false
	}

	result, err := o.client.LookupISINForExchange(asset.ISIN, exchCode)
	if err != nil || result == nil || result.Ticker == "" {
		return ResolvedSymbol{}, false
	}

	return ResolvedSymbol{Symbol: result.Ticker, Source: SourceRules}, true
}
