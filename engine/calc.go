/*
calc.go - The stay calculator

PURPOSE:
  Composes tax conversion, base point accrual, elite bonus, promo rule
  evaluation, and point-to-cash valuation into a single Calc record.

ALGORITHM (ComputeHotel):
  1. Clamp nights (>= 1, rounded) and tax rate (>= 0).
  2. Derive pre/post-tax stay totals in the hotel's own currency per the
     tax input mode.
  3. Pick the earn base (pre or post tax) and convert it into the
     program's home currency.
  4. basePoints  = earn base x brand tier rate.
  5. eliteBonus  = basePoints x elite bonus fraction.
  6. promoExtra  = sum over enabled rules (brand-level then hotel-level)
     of ExtraPoints(reward, TimesFired(trigger), ...). Spend triggers see
     pre-tax spend in the preferred currency.
  7. Value total points at PointValue/10,000 per point, converted to the
     preferred currency; netCost = paidPostTax - pointsValue.

ERROR MODEL:
  None. Degraded inputs (missing FX rates, stale references, zero
  denominators) close over defined fallbacks so every row in a
  comparison list always gets a number.
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// ComputeHotel values a single candidate stay. Pure: identical inputs
// yield identical output and no argument is mutated. Safe to call
// concurrently, once per candidate hotel in a ranking pass.
func ComputeHotel(global GlobalSettings, program Program, hotel HotelOption, fx *FxRates) Calc {
	nights := clampNights(global.Nights)
	taxRate := global.TaxRate
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}

	preTax, postTax := stayTotals(global.TaxMode, hotel, nights, taxRate)
	hotelCurrency := stayCurrency(global, hotel)

	// Base accrual happens in the program's home currency.
	earnBase := preTax
	if program.Settings.EarnBasis == EarnPostTax {
		earnBase = postTax
	}
	earnBaseBrand := Convert(earnBase, hotelCurrency, program.Currency, fx)

	tier := ResolveTierOrDefault(program, hotel.BrandTierID)
	basePoints := earnBaseBrand.Mul(decimal.NewFromFloat(tier.Rate))
	eliteBonus := basePoints.Mul(ResolveEliteOrNone(program, program.Settings.EliteTierID))

	// Spend triggers are fixed to pre-tax spend in the preferred currency.
	spend := Convert(preTax, hotelCurrency, global.Currency, fx)

	voucherValue := func(voucherID string) decimal.Decimal {
		return ResolveVoucherValueOrZero(program, voucherID, fx)
	}

	promoExtra := decimal.Zero
	for _, rule := range allRules(program, hotel) {
		if !rule.Enabled {
			continue
		}
		fired := TimesFired(rule.Trigger.Normalize(), nights, spend)
		promoExtra = promoExtra.Add(ExtraPoints(rule.Reward, fired, basePoints, voucherValue))
	}

	totalPoints := basePoints.Add(eliteBonus).Add(promoExtra)

	perPoint := PointValuePerPoint(program)
	perPointPreferred := Convert(perPoint.Amount, perPoint.Currency, global.Currency, fx)
	pointsValue := totalPoints.Mul(perPointPreferred)

	paidPreTax := Convert(preTax, hotelCurrency, global.Currency, fx)
	paidPostTax := Convert(postTax, hotelCurrency, global.Currency, fx)

	netCost := paidPostTax.Sub(pointsValue)

	rebateRate := decimal.Zero
	netPayRatio := decimal.NewFromInt(1)
	if !paidPostTax.IsZero() {
		rebateRate = pointsValue.Div(paidPostTax)
		netPayRatio = netCost.Div(paidPostTax)
	}

	return Calc{
		Currency:         global.Currency,
		PaidPreTax:       paidPreTax,
		PaidPostTax:      paidPostTax,
		BasePoints:       basePoints,
		EliteBonusPoints: eliteBonus,
		PromoExtraPoints: promoExtra,
		TotalPoints:      totalPoints,
		PointsValue:      pointsValue,
		NetCost:          netCost,
		RebateRate:       rebateRate,
		NetPayRatio:      netPayRatio,
	}
}

// clampNights rounds the form input and clamps to the minimum one-night
// stay.
func clampNights(nights float64) int {
	n := int(math.Round(nights))
	if n < 1 {
		return 1
	}
	return n
}

// stayTotals derives the pre- and post-tax stay totals (in the hotel's
// rate currency) from whichever rates the tax input mode provides.
// In PreAndPost mode both figures are taken exactly as entered, each
// multiplied by nights independently; inconsistency with the nominal
// tax rate is accepted as-is.
func stayTotals(mode TaxInputMode, hotel HotelOption, nights int, taxRate decimal.Decimal) (preTax, postTax decimal.Decimal) {
	n := decimal.NewFromInt(int64(nights))
	onePlusTax := decimal.NewFromInt(1).Add(taxRate)

	switch mode {
	case PostTaxPlusRate:
		postTax = rateAmount(hotel.PostTax).Mul(n)
		preTax = postTax.Div(onePlusTax)
	case PreAndPost:
		preTax = rateAmount(hotel.PreTax).Mul(n)
		postTax = rateAmount(hotel.PostTax).Mul(n)
	default: // PreTaxPlusRate
		preTax = rateAmount(hotel.PreTax).Mul(n)
		postTax = preTax.Mul(onePlusTax)
	}
	return preTax, postTax
}

// stayCurrency determines the currency the hotel's rate figures are in:
// the post-tax rate's currency when populated, else the pre-tax rate's,
// else the preferred display currency.
func stayCurrency(global GlobalSettings, hotel HotelOption) CurrencyCode {
	if hotel.PostTax != nil && hotel.PostTax.Currency != "" {
		return hotel.PostTax.Currency
	}
	if hotel.PreTax != nil && hotel.PreTax.Currency != "" {
		return hotel.PreTax.Currency
	}
	return global.Currency
}

func rateAmount(m *Money) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return m.Amount
}

// allRules concatenates brand-level and hotel-level rules in their
// stored order. The sum over rules is order-independent, but a
// deterministic order keeps display reproducible.
func allRules(program Program, hotel HotelOption) []Rule {
	rules := make([]Rule, 0, len(program.Settings.Rules)+len(hotel.Rules))
	rules = append(rules, program.Settings.Rules...)
	rules = append(rules, hotel.Rules...)
	return rules
}
