/*
Package engine provides the core stay valuation engine.

PURPOSE:
  This package contains the pure computation that turns a stay configuration
  (nights, room rate, tax rules) plus a loyalty program's earning structure
  (brand tiers, elite bonus, point value, promo rules, vouchers) into a
  single comparable figure: the net cost of the stay after the cash value
  of the points it earns.

KEY CONCEPTS IN THIS FILE (types.go):
  - CurrencyCode/Money: A currency-tagged amount (immutable value type)
  - FxRates: Exchange-rate table relative to a base currency, possibly absent
  - GlobalSettings: Stay-wide parameters (nights, tax mode/rate, currency)
  - Calc: The valuation result, recomputed on every call, never persisted

DESIGN PRINCIPLES:
  1. Purity: Every function is a pure function of its arguments. No I/O,
     no shared state, no mutation of inputs.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Fail open: Degraded inputs (missing rates, stale references, zero
     denominators) produce defined fallback values, never errors. The
     caller ranks many stays at once; one bad row must not break the list.

USAGE:
  calc := engine.ComputeHotel(global, program, hotel, fxRates)
  // calc.NetCost is the ranking metric, in global.Currency

SEE ALSO:
  - fx.go:      Currency conversion
  - rules.go:   Promo rule triggers and rewards
  - calc.go:    The stay calculator
  - rank.go:    Ranking a set of candidate stays
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY & MONEY
// =============================================================================

// CurrencyCode is a 3-letter ISO 4217 code, e.g. "USD".
// An empty code means "not configured" and behaves as pass-through
// in conversions.
type CurrencyCode string

// Common currency codes. The engine accepts any code; these exist so
// presets and tests don't scatter string literals.
const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	CNY CurrencyCode = "CNY"
	KRW CurrencyCode = "KRW"
	THB CurrencyCode = "THB"
	SGD CurrencyCode = "SGD"
)

// Money is a currency-tagged amount. Immutable value type.
type Money struct {
	Amount   decimal.Decimal
	Currency CurrencyCode
}

func NewMoney(amount float64, currency CurrencyCode) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

// MustParseDecimal parses a decimal literal, returning zero on failure.
// For preset/test fixtures where the literal is known good.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// FX RATES - Exchange-rate table, possibly absent or stale
// =============================================================================

// FxRates holds conversion rates relative to Base:
// amount_in_base x Rates[target] = amount_in_target.
//
// The table may be absent entirely (nil pointer: no conversion performed)
// or stale (UpdatedAt is informational; the engine does not enforce
// freshness - the rates.Provider owns the refresh policy).
type FxRates struct {
	Base      CurrencyCode
	Rates     map[CurrencyCode]decimal.Decimal
	UpdatedAt time.Time
}

// =============================================================================
// GLOBAL SETTINGS - Stay-wide parameters
// =============================================================================

// TaxInputMode selects how the traveler enters room rates.
type TaxInputMode string

const (
	// PreTaxPlusRate: pre-tax rate entered, post-tax derived from tax rate.
	PreTaxPlusRate TaxInputMode = "PRE_TAX_PLUS_RATE"
	// PostTaxPlusRate: post-tax rate entered, pre-tax derived from tax rate.
	PostTaxPlusRate TaxInputMode = "POST_TAX_PLUS_RATE"
	// PreAndPost: both rates entered independently. No consistency check
	// against the nominal tax rate is performed; the traveler asserts both.
	PreAndPost TaxInputMode = "PRE_AND_POST"
)

// GlobalSettings are the stay-wide parameters shared by every candidate
// hotel in a comparison pass.
type GlobalSettings struct {
	// Currency is the traveler's preferred display/comparison currency.
	// Empty until configured; conversions into the empty currency pass
	// through unchanged.
	Currency CurrencyCode

	// Nights is the stay length as entered in the form. The calculator
	// rounds it and clamps to >= 1.
	Nights float64

	// Country is the selected tax jurisdiction. Carried for display and
	// preset lookup; the calculator only reads TaxMode and TaxRate.
	Country string

	TaxMode TaxInputMode

	// TaxRate is fractional (0.1 = 10%). Negative values are clamped to 0.
	TaxRate decimal.Decimal
}

// =============================================================================
// CALC - Valuation result
// =============================================================================

// Calc is the output of the stay calculator. It is ephemeral: a pure
// function of its inputs, recomputed whenever any input changes, and
// never persisted.
//
// All monetary figures are in the preferred display currency recorded
// in Currency.
type Calc struct {
	Currency CurrencyCode

	PaidPreTax  decimal.Decimal
	PaidPostTax decimal.Decimal

	BasePoints       decimal.Decimal
	EliteBonusPoints decimal.Decimal
	PromoExtraPoints decimal.Decimal
	TotalPoints      decimal.Decimal

	// PointsValue is the cash equivalent of TotalPoints.
	PointsValue decimal.Decimal

	// NetCost = PaidPostTax - PointsValue. The ranking metric.
	NetCost decimal.Decimal

	// RebateRate = PointsValue / PaidPostTax (0 when PaidPostTax is 0).
	RebateRate decimal.Decimal

	// NetPayRatio = NetCost / PaidPostTax (1 when PaidPostTax is 0,
	// i.e. "no discernible discount" renders as full price).
	NetPayRatio decimal.Decimal

	// Unresolved marks the sentinel produced for a stay whose program
	// reference no longer resolves. It sorts after every resolved stay,
	// standing in for an infinite net cost.
	Unresolved bool
}
