// Package money defines the fixed-precision decimal types used across every
// accounting path in this service. No monetary amount, quantity, price, or
// exchange rate is ever represented as a binary float once it crosses into
// the activity compiler, snapshot engine, valuation engine, or performance
// engine — all of those consume and produce decimal.Decimal.
package money

import (
	"github.com/shopspring/decimal"
)

// DisplayScale is the number of decimal places amounts are rounded to when
// presented or persisted in a textual form (JSON, sqlite TEXT columns).
// Internal arithmetic is never rounded until a value is about to leave the
// engine boundary.
const DisplayScale = 6

// QuantityScale is the number of decimal places share/unit quantities are
// rounded to on persistence, wide enough for fractional-share brokers.
const QuantityScale = 8

// Zero is the canonical zero decimal value.
var Zero = decimal.Zero

// Amount is a monetary amount denominated in a currency. Amount itself does
// not carry the currency — callers pair it with a Currency code or use
// Valued (below) when both must travel together.
type Amount = decimal.Decimal

// Valued pairs a decimal amount with the ISO 4217 (or synthetic, e.g. a
// crypto ticker) currency code it is denominated in. Arithmetic across two
// Valued with different currencies is a programming error the caller must
// resolve through the FX graph first; this type does not convert.
type Valued struct {
	Amount   decimal.Decimal
	Currency string
}

// Add returns v + other. Panics if the currencies differ — callers must
// convert through the FX graph before combining amounts in different
// currencies.
func (v Valued) Add(other Valued) Valued {
	if v.Currency != other.Currency {
		panic("money: cannot add Valued amounts in different currencies (" + v.Currency + " vs " + other.Currency + ")")
	}
	return Valued{Amount: v.Amount.Add(other.Amount), Currency: v.Currency}
}

// Sub returns v - other. Panics if the currencies differ.
func (v Valued) Sub(other Valued) Valued {
	if v.Currency != other.Currency {
		panic("money: cannot subtract Valued amounts in different currencies (" + v.Currency + " vs " + other.Currency + ")")
	}
	return Valued{Amount: v.Amount.Sub(other.Amount), Currency: v.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (v Valued) IsZero() bool {
	return v.Amount.IsZero()
}

// Neg returns the additive inverse of v.
func (v Valued) Neg() Valued {
	return Valued{Amount: v.Amount.Neg(), Currency: v.Currency}
}

// RoundDisplay rounds amount to DisplayScale decimal places, rounding halves
// away from zero, the convention used whenever a decimal is serialized for
// storage or API output.
func RoundDisplay(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(DisplayScale)
}

// RoundQuantity rounds a share/unit quantity to QuantityScale decimal places.
func RoundQuantity(qty decimal.Decimal) decimal.Decimal {
	return qty.Round(QuantityScale)
}

// ParseAmount parses a decimal string, returning an error that names the
// offending value rather than a bare strconv-style error.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParseError{Value: s, Err: err}
	}
	return d, nil
}

// ParseError reports a decimal string that failed to parse.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return "money: invalid decimal value " + "\"" + e.Value + "\": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
