/*
fx.go - Currency conversion

PURPOSE:
  Converts an amount between two currencies through the rate table's base
  currency. Conversion NEVER fails: with no table, or with the needed
  rates missing, the amount passes through unchanged. The calculator must
  stay usable offline and before the first successful rate fetch, so
  silent pass-through is the designed degraded mode, not an error.
*/
package engine

import "github.com/shopspring/decimal"

// Convert converts amount from one currency to another using fx, which
// may be nil.
//
// Resolution order:
//  1. same currency (or either side unset) -> identity
//  2. fx.Base == from and a rate for to exists -> amount x rate[to]
//  3. fx.Base == to and a rate for from exists -> amount / rate[from]
//  4. rates for both from and to exist -> triangulate through the base
//  5. anything else -> identity
//
// Zero rates are treated as missing; dividing by them would be as
// meaningless as the absent-rate case they usually indicate.
func Convert(amount decimal.Decimal, from, to CurrencyCode, fx *FxRates) decimal.Decimal {
	if from == to || from == "" || to == "" {
		return amount
	}
	if fx == nil {
		return amount
	}

	if fx.Base == from {
		if rate, ok := fx.Rates[to]; ok && !rate.IsZero() {
			return amount.Mul(rate)
		}
		return amount
	}
	if fx.Base == to {
		if rate, ok := fx.Rates[from]; ok && !rate.IsZero() {
			return amount.Div(rate)
		}
		return amount
	}

	fromRate, okFrom := fx.Rates[from]
	toRate, okTo := fx.Rates[to]
	if okFrom && okTo && !fromRate.IsZero() {
		return amount.Div(fromRate).Mul(toRate)
	}
	return amount
}

// ConvertMoney is Convert over a Money value, retagging the currency.
func ConvertMoney(m Money, to CurrencyCode, fx *FxRates) Money {
	if to == "" {
		return m
	}
	return Money{Amount: Convert(m.Amount, m.Currency, to, fx), Currency: to}
}
