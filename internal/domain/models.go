// Package domain provides the core entities shared by every engine in the
// portfolio core: accounts, assets, activities, and quotes.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/wealthfolio-core/internal/identifier"
)

// Account is a tracked investment or cash account. Accounts are the unit
// the snapshot, valuation, and performance engines operate over.
type Account struct {
	ID        string
	Name      string
	Currency  string // account-native currency; activities on this account are recorded in it
	IsActive  bool
	CreatedAt time.Time
}

// PricingMode controls whether an instrument is valued from synced market
// quotes or treated as a holdings-only position with no return series.
type PricingMode string

const (
	PricingModeMarket   PricingMode = "market"   // priced from the quote store
	PricingModeHoldings PricingMode = "holdings" // valued at cost/manual price only, no TWR/MWR
)

// Asset is anything an account can hold: a listed security, a crypto pair,
// a cash position, or an alternative asset (property, vehicle, collectible,
// precious metal, other). Asset.ID is the canonical identifier produced by
// the internal/identifier package.
type Asset struct {
	ID                string
	Symbol            string // provider-facing display ticker, may differ from ID's primary segment
	ISIN              string // optional; lets the resolver fall back to an OpenFIGI lookup when no MIC rule matches
	Name              string
	Currency          string
	Kind              identifier.Kind // authoritative kind, consulted instead of re-parsing ID
	PricingMode       PricingMode
	PreferredProvider string // empty means use provider priority order
	PurchasePrice     *decimal.Decimal // fallback market value for holdings-mode alternative assets
}

// ActivityType enumerates the transaction taxonomy the compiler understands.
type ActivityType string

const (
	ActivityBuy          ActivityType = "BUY"
	ActivitySell         ActivityType = "SELL"
	ActivityDeposit      ActivityType = "DEPOSIT"
	ActivityWithdrawal   ActivityType = "WITHDRAWAL"
	ActivityDividend     ActivityType = "DIVIDEND"
	ActivityInterest     ActivityType = "INTEREST"
	ActivityFee          ActivityType = "FEE"
	ActivityTax          ActivityType = "TAX"
	ActivityTransferIn   ActivityType = "TRANSFER_IN"
	ActivityTransferOut  ActivityType = "TRANSFER_OUT"
	ActivitySplit        ActivityType = "SPLIT"
	ActivityConversion   ActivityType = "CONVERSION"
	ActivityAddHolding   ActivityType = "ADD_HOLDING"
	ActivityRemoveHolding ActivityType = "REMOVE_HOLDING"
)

// Activity is a single recorded transaction on an account. Amount and
// Quantity are nil when not applicable to the ActivityType (e.g. Quantity is
// nil for DEPOSIT).
type Activity struct {
	ID             string
	AccountID      string
	AssetID        string // empty for pure-cash activities (DEPOSIT, WITHDRAWAL, INTEREST, FEE)
	Type           ActivityType
	Timestamp      time.Time
	Quantity       *decimal.Decimal
	UnitPrice      *decimal.Decimal
	Amount         *decimal.Decimal // total cash effect, in Currency
	Fee            decimal.Decimal
	Currency       string
	CounterpartyID string // linked account id for TRANSFER_IN/TRANSFER_OUT, empty if external
	SplitNumerator int64  // SPLIT only: new_shares = old_shares * numerator / denominator
	SplitDenominator int64
	IdempotencyKey string // hash of the externally meaningful fields, used to dedupe re-imports
}

// DataSource identifies where a Quote's price originated.
type DataSource string

const (
	SourceManual         DataSource = "MANUAL"
	SourceYahoo          DataSource = "YAHOO"
	SourceAlphaVantage   DataSource = "ALPHA_VANTAGE"
	SourceMetalPriceAPI  DataSource = "METAL_PRICE_API"
	SourceCalculated     DataSource = "CALCULATED" // derived, e.g. FX rate inverted from the inverse pair
)

// Quote is a single priced observation for an asset (or, for FX, an
// exchange rate encoded as a specialized quote whose AssetID is an FX pair
// id such as "EUR:USD").
type Quote struct {
	AssetID   string
	Date      time.Time // calendar date the quote applies to, not a timestamp
	Price     decimal.Decimal
	Currency  string
	Source    DataSource
	FetchedAt time.Time
}
