package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stay-engine/engine"
)

// =============================================================================
// FIXTURES - A Marriott-style program and a two-night stay
// =============================================================================

func marriottStyleProgram() engine.Program {
	return engine.Program{
		ID:       "prog-marriott",
		Name:     "Bonvoy-style",
		Currency: engine.USD,
		Tiers: []engine.BrandTier{
			{ID: "tier-10x", Name: "Full Service (10x)", Rate: 10},
			{ID: "tier-5x", Name: "Extended Stay (5x)", Rate: 5},
		},
		EliteTiers: []engine.EliteTier{
			{ID: "elite-silver", Name: "Silver", Bonus: 0.1},
			{ID: "elite-platinum", Name: "Platinum", Bonus: 0.5},
		},
		Settings: engine.ProgramSettings{
			EliteTierID: "elite-platinum",
			PointValue:  engine.NewMoney(80, engine.USD), // 0.008 USD/pt
			EarnBasis:   engine.EarnPreTax,
		},
	}
}

func twoNightStay() engine.GlobalSettings {
	return engine.GlobalSettings{
		Currency: engine.USD,
		Nights:   2,
		Country:  "US",
		TaxMode:  engine.PreTaxPlusRate,
		TaxRate:  engine.MustParseDecimal("0.1"),
	}
}

func hotel200PreTax() engine.HotelOption {
	rate := engine.NewMoney(200, engine.USD)
	return engine.HotelOption{
		ID:          "hotel-1",
		Name:        "Downtown Full Service",
		ProgramID:   "prog-marriott",
		BrandTierID: "tier-10x",
		PreTax:      &rate,
	}
}

func assertDecimal(t *testing.T, want string, got interface{ String() string }, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, engine.MustParseDecimal(want).String(), engine.MustParseDecimal(got.String()).String(), msgAndArgs...)
}

// =============================================================================
// WORKED SCENARIOS
// =============================================================================

func TestComputeHotel_MarriottStyleScenario(t *testing.T) {
	// GIVEN: tier rate 10 pts/USD, Platinum bonus 0.5, point value
	//        0.008 USD/pt, 2 nights at $200/night pre-tax, 10% tax,
	//        earn basis PRE_TAX, no promo rules
	// THEN: preTax=400 postTax=440 base=4000 elite=2000 total=6000
	//       pointsValue=48 netCost=392

	calc := engine.ComputeHotel(twoNightStay(), marriottStyleProgram(), hotel200PreTax(), nil)

	assertDecimal(t, "400", calc.PaidPreTax)
	assertDecimal(t, "440", calc.PaidPostTax)
	assertDecimal(t, "4000", calc.BasePoints)
	assertDecimal(t, "2000", calc.EliteBonusPoints)
	assert.True(t, calc.PromoExtraPoints.IsZero())
	assertDecimal(t, "6000", calc.TotalPoints)
	assertDecimal(t, "48", calc.PointsValue)
	assertDecimal(t, "392", calc.NetCost)

	ratio, _ := calc.NetPayRatio.Float64()
	assert.InDelta(t, 392.0/440.0, ratio, 1e-9)
	rebate, _ := calc.RebateRate.Float64()
	assert.InDelta(t, 48.0/440.0, rebate, 1e-9)
	assert.False(t, calc.Unresolved)
}

func TestComputeHotel_ScenarioWithPerNightPointsRule(t *testing.T) {
	// Same stay plus an enabled per_night points{500} rule:
	// promoExtra=1000, total=7000, pointsValue=56, netCost=384.

	program := marriottStyleProgram()
	program.Settings.Rules = []engine.Rule{{
		ID:      "rule-500",
		Name:    "500 bonus points per night",
		Enabled: true,
		Trigger: engine.Trigger{Type: engine.TriggerPerNight},
		Reward:  engine.Reward{Type: engine.RewardPoints, Points: 500},
	}}

	calc := engine.ComputeHotel(twoNightStay(), program, hotel200PreTax(), nil)

	assertDecimal(t, "1000", calc.PromoExtraPoints)
	assertDecimal(t, "7000", calc.TotalPoints)
	assertDecimal(t, "56", calc.PointsValue)
	assertDecimal(t, "384", calc.NetCost)
}

func TestComputeHotel_DisabledRulesAreSkipped(t *testing.T) {
	program := marriottStyleProgram()
	program.Settings.Rules = []engine.Rule{{
		ID:      "rule-off",
		Enabled: false,
		Trigger: engine.Trigger{Type: engine.TriggerPerNight},
		Reward:  engine.Reward{Type: engine.RewardPoints, Points: 500},
	}}

	calc := engine.ComputeHotel(twoNightStay(), program, hotel200PreTax(), nil)
	assert.True(t, calc.PromoExtraPoints.IsZero())
}

// =============================================================================
// TAX MODES
// =============================================================================

func TestComputeHotel_TaxRoundTrip(t *testing.T) {
	// PRE_TAX_PLUS_RATE: postTax == preTax x (1+rate) exactly.
	calc := engine.ComputeHotel(twoNightStay(), marriottStyleProgram(), hotel200PreTax(), nil)
	assert.True(t, calc.PaidPostTax.Equal(calc.PaidPreTax.Mul(engine.MustParseDecimal("1.1"))))

	// POST_TAX_PLUS_RATE: preTax == postTax / (1+rate).
	global := twoNightStay()
	global.TaxMode = engine.PostTaxPlusRate
	rate := engine.NewMoney(220, engine.USD)
	hotel := hotel200PreTax()
	hotel.PreTax = nil
	hotel.PostTax = &rate

	calc = engine.ComputeHotel(global, marriottStyleProgram(), hotel, nil)
	assertDecimal(t, "440", calc.PaidPostTax)
	assertDecimal(t, "400", calc.PaidPreTax)
}

func TestComputeHotel_PreAndPostEnteredIndependently(t *testing.T) {
	// Both figures are taken exactly as entered even when they are
	// inconsistent with the nominal tax rate.
	global := twoNightStay()
	global.TaxMode = engine.PreAndPost

	pre := engine.NewMoney(200, engine.USD)
	post := engine.NewMoney(260, engine.USD) // implies 30%, not the nominal 10%
	hotel := hotel200PreTax()
	hotel.PreTax = &pre
	hotel.PostTax = &post

	calc := engine.ComputeHotel(global, marriottStyleProgram(), hotel, nil)
	assertDecimal(t, "400", calc.PaidPreTax)
	assertDecimal(t, "520", calc.PaidPostTax)
}

func TestComputeHotel_NightsRoundedAndClamped(t *testing.T) {
	global := twoNightStay()
	global.Nights = 0 // clamps to 1

	calc := engine.ComputeHotel(global, marriottStyleProgram(), hotel200PreTax(), nil)
	assertDecimal(t, "200", calc.PaidPreTax)

	global.Nights = 2.6 // rounds to 3
	calc = engine.ComputeHotel(global, marriottStyleProgram(), hotel200PreTax(), nil)
	assertDecimal(t, "600", calc.PaidPreTax)
}

// =============================================================================
// DEGRADED INPUTS
// =============================================================================

func TestComputeHotel_ZeroRateYieldsSentinelRatios(t *testing.T) {
	// paidPostTax == 0 must produce rebate 0 and netPayRatio 1, not NaN.
	hotel := hotel200PreTax()
	zero := engine.NewMoney(0, engine.USD)
	hotel.PreTax = &zero

	calc := engine.ComputeHotel(twoNightStay(), marriottStyleProgram(), hotel, nil)

	assert.True(t, calc.PaidPostTax.IsZero())
	assert.True(t, calc.RebateRate.IsZero())
	assertDecimal(t, "1", calc.NetPayRatio)
}

func TestComputeHotel_StaleTierFallsBackToFirst(t *testing.T) {
	hotel := hotel200PreTax()
	hotel.BrandTierID = "tier-deleted"

	calc := engine.ComputeHotel(twoNightStay(), marriottStyleProgram(), hotel, nil)
	assertDecimal(t, "4000", calc.BasePoints, "first tier (10x) should apply")
}

func TestComputeHotel_EarnBasisPostTax(t *testing.T) {
	program := marriottStyleProgram()
	program.Settings.EarnBasis = engine.EarnPostTax

	calc := engine.ComputeHotel(twoNightStay(), marriottStyleProgram(), hotel200PreTax(), nil)
	basePre := calc.BasePoints

	calc = engine.ComputeHotel(twoNightStay(), program, hotel200PreTax(), nil)
	assertDecimal(t, "4400", calc.BasePoints)
	assert.True(t, calc.BasePoints.GreaterThan(basePre))
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestComputeHotel_PureAndIdempotent(t *testing.T) {
	// Identical inputs twice must yield identical output, and the
	// inputs must not be mutated.
	global := twoNightStay()
	program := marriottStyleProgram()
	program.Settings.VouchersEnabled = true
	program.Settings.Vouchers = []engine.Voucher{
		{ID: "v1", Mode: engine.VoucherPoints, Points: 1000},
	}
	program.Settings.Rules = []engine.Rule{{
		ID:      "r1",
		Enabled: true,
		Trigger: engine.Trigger{
			Type:      engine.TriggerMilestone,
			Milestone: &engine.MilestoneTrigger{Metric: engine.MetricStay, Threshold: 2},
		},
		Reward: engine.Reward{Type: engine.RewardVoucher, Voucher: &engine.VoucherReward{VoucherID: "v1", Count: 1}},
	}}
	hotel := hotel200PreTax()
	fx := usdRates()

	first := engine.ComputeHotel(global, program, hotel, fx)
	second := engine.ComputeHotel(global, program, hotel, fx)

	require.Equal(t, first, second)
	assert.Equal(t, engine.MetricStay, program.Settings.Rules[0].Trigger.Milestone.Metric,
		"normalization must not write back into the rule")
	assertDecimal(t, "1000", first.PromoExtraPoints, "milestone voucher should have fired once")
}

func TestComputeHotel_NetCostMonotonicInPointsValue(t *testing.T) {
	// Holding all else fixed, a richer point value strictly decreases
	// net cost by the same amount.
	base := marriottStyleProgram()
	richer := marriottStyleProgram()
	richer.Settings.PointValue = engine.NewMoney(90, engine.USD)

	calcBase := engine.ComputeHotel(twoNightStay(), base, hotel200PreTax(), nil)
	calcRicher := engine.ComputeHotel(twoNightStay(), richer, hotel200PreTax(), nil)

	valueDelta := calcRicher.PointsValue.Sub(calcBase.PointsValue)
	costDelta := calcBase.NetCost.Sub(calcRicher.NetCost)
	assert.True(t, valueDelta.IsPositive())
	assert.True(t, valueDelta.Equal(costDelta))
}

func TestComputeHotel_CrossCurrencyStay(t *testing.T) {
	// A EUR-priced hotel under a USD program, compared in USD.
	global := twoNightStay()
	program := marriottStyleProgram()
	rate := engine.NewMoney(180, engine.EUR)
	hotel := hotel200PreTax()
	hotel.PreTax = &rate

	calc := engine.ComputeHotel(global, program, hotel, usdRates())

	// 360 EUR pre-tax -> 400 USD at 0.9 EUR/USD.
	assertDecimal(t, "400", calc.PaidPreTax)
	assertDecimal(t, "4000", calc.BasePoints)
}
