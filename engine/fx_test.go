package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/stay-engine/engine"
)

func usdRates() *engine.FxRates {
	return &engine.FxRates{
		Base: engine.USD,
		Rates: map[engine.CurrencyCode]decimal.Decimal{
			engine.EUR: engine.MustParseDecimal("0.9"),
			engine.JPY: engine.MustParseDecimal("150"),
			engine.GBP: engine.MustParseDecimal("0.8"),
		},
		UpdatedAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	// GIVEN: any amount and any rate table (including nil)
	// WHEN: converting a currency to itself
	// THEN: the amount is unchanged

	amount := engine.MustParseDecimal("123.45")

	assert.True(t, amount.Equal(engine.Convert(amount, engine.USD, engine.USD, nil)))
	assert.True(t, amount.Equal(engine.Convert(amount, engine.EUR, engine.EUR, usdRates())))
}

func TestConvert_FailsOpenWithoutRates(t *testing.T) {
	// GIVEN: no rate table, or a table missing the needed rates
	// WHEN: converting between two distinct currencies
	// THEN: the amount passes through unchanged (never an error)

	amount := engine.MustParseDecimal("42")

	assert.True(t, amount.Equal(engine.Convert(amount, engine.USD, engine.EUR, nil)),
		"nil table should pass through")

	empty := &engine.FxRates{Base: engine.USD, Rates: map[engine.CurrencyCode]decimal.Decimal{}}
	assert.True(t, amount.Equal(engine.Convert(amount, engine.USD, engine.EUR, empty)),
		"empty table should pass through")

	assert.True(t, amount.Equal(engine.Convert(amount, engine.THB, engine.SGD, usdRates())),
		"both rates missing should pass through")
}

func TestConvert_FromBase(t *testing.T) {
	got := engine.Convert(engine.MustParseDecimal("100"), engine.USD, engine.EUR, usdRates())
	assert.True(t, engine.MustParseDecimal("90").Equal(got), "100 USD should be 90 EUR, got %s", got)
}

func TestConvert_ToBase(t *testing.T) {
	got := engine.Convert(engine.MustParseDecimal("90"), engine.EUR, engine.USD, usdRates())
	assert.True(t, engine.MustParseDecimal("100").Equal(got), "90 EUR should be 100 USD, got %s", got)
}

func TestConvert_TriangulatesThroughBase(t *testing.T) {
	// 150 JPY -> 1 USD -> 0.9 EUR
	got := engine.Convert(engine.MustParseDecimal("150"), engine.JPY, engine.EUR, usdRates())
	assert.True(t, engine.MustParseDecimal("0.9").Equal(got), "150 JPY should be 0.9 EUR, got %s", got)
}

func TestConvert_ZeroRateTreatedAsMissing(t *testing.T) {
	fx := &engine.FxRates{
		Base: engine.USD,
		Rates: map[engine.CurrencyCode]decimal.Decimal{
			engine.EUR: decimal.Zero,
		},
	}
	amount := engine.MustParseDecimal("10")
	assert.True(t, amount.Equal(engine.Convert(amount, engine.EUR, engine.USD, fx)))
	assert.True(t, amount.Equal(engine.Convert(amount, engine.EUR, engine.JPY, fx)))
}

func TestConvert_UnsetPreferredCurrencyPassesThrough(t *testing.T) {
	amount := engine.MustParseDecimal("55")
	assert.True(t, amount.Equal(engine.Convert(amount, engine.USD, "", usdRates())))
}

func TestConvertMoney_RetagsCurrency(t *testing.T) {
	m := engine.NewMoney(100, engine.USD)

	got := engine.ConvertMoney(m, engine.EUR, usdRates())
	assert.Equal(t, engine.EUR, got.Currency)
	assert.True(t, engine.MustParseDecimal("90").Equal(got.Amount), "got %s", got.Amount)

	// An unset target keeps both the amount and the original tag.
	same := engine.ConvertMoney(m, "", usdRates())
	assert.Equal(t, engine.USD, same.Currency)
	assert.True(t, m.Amount.Equal(same.Amount))

	assert.False(t, got.IsZero())
	assert.True(t, engine.NewMoney(0, engine.EUR).IsZero())
}
