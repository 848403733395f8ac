package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/stay-engine/engine"
)

func spendTrigger(amount string, repeat bool) engine.Trigger {
	return engine.Trigger{
		Type:  engine.TriggerSpend,
		Spend: &engine.SpendTrigger{Amount: engine.MustParseDecimal(amount), Repeat: repeat},
	}
}

func milestoneTrigger(threshold int) engine.Trigger {
	return engine.Trigger{
		Type:      engine.TriggerMilestone,
		Milestone: &engine.MilestoneTrigger{Metric: engine.MetricNights, Threshold: threshold},
	}
}

// =============================================================================
// TRIGGER EVALUATOR
// =============================================================================

func TestTimesFired_PerNightAndPerStay(t *testing.T) {
	spend := engine.MustParseDecimal("500")

	assert.Equal(t, 4, engine.TimesFired(engine.Trigger{Type: engine.TriggerPerNight}, 4, spend))
	assert.Equal(t, 1, engine.TimesFired(engine.Trigger{Type: engine.TriggerPerStay}, 4, spend))
	assert.Equal(t, 1, engine.TimesFired(engine.Trigger{Type: engine.TriggerPerStay}, 1, spend))
}

func TestTimesFired_SpendThreshold(t *testing.T) {
	// GIVEN: spend{amount: 1000, repeat: false}
	// THEN: 0 fires just below the threshold, exactly 1 at or above it

	trigger := spendTrigger("1000", false)

	assert.Equal(t, 0, engine.TimesFired(trigger, 2, engine.MustParseDecimal("999.99")))
	assert.Equal(t, 1, engine.TimesFired(trigger, 2, engine.MustParseDecimal("1000")))
	assert.Equal(t, 1, engine.TimesFired(trigger, 2, engine.MustParseDecimal("2500")),
		"without repeat the trigger fires at most once")
}

func TestTimesFired_SpendRepeat(t *testing.T) {
	trigger := spendTrigger("1000", true)

	assert.Equal(t, 2, engine.TimesFired(trigger, 2, engine.MustParseDecimal("2500")),
		"floor(2500/1000) = 2")
	assert.Equal(t, 3, engine.TimesFired(trigger, 2, engine.MustParseDecimal("3000")))
	assert.Equal(t, 0, engine.TimesFired(trigger, 2, engine.MustParseDecimal("999")))
}

func TestTimesFired_SpendNonPositiveAmountNeverFires(t *testing.T) {
	spend := engine.MustParseDecimal("5000")
	assert.Equal(t, 0, engine.TimesFired(spendTrigger("0", true), 2, spend))
	assert.Equal(t, 0, engine.TimesFired(spendTrigger("-10", false), 2, spend))
}

func TestTimesFired_MilestoneBoundary(t *testing.T) {
	// GIVEN: milestone{threshold: 3}
	// THEN: 0 fires at 2 nights, exactly 1 at 3 and at 10 nights

	trigger := milestoneTrigger(3)
	spend := decimal.Zero

	assert.Equal(t, 0, engine.TimesFired(trigger, 2, spend))
	assert.Equal(t, 1, engine.TimesFired(trigger, 3, spend))
	assert.Equal(t, 1, engine.TimesFired(trigger, 10, spend), "milestone never fires more than once")
}

func TestTimesFired_MilestoneThresholdFlooredToOne(t *testing.T) {
	trigger := milestoneTrigger(0)
	assert.Equal(t, 1, engine.TimesFired(trigger, 1, decimal.Zero))
}

func TestTriggerNormalize_CoercesStayMetricToNights(t *testing.T) {
	// The "stay" metric survives in stored data from older versions but
	// has no distinct evaluation branch.
	trigger := engine.Trigger{
		Type:      engine.TriggerMilestone,
		Milestone: &engine.MilestoneTrigger{Metric: engine.MetricStay, Threshold: 0},
	}

	normalized := trigger.Normalize()
	assert.Equal(t, engine.MetricNights, normalized.Milestone.Metric)
	assert.Equal(t, 1, normalized.Milestone.Threshold)
	assert.Equal(t, engine.MetricStay, trigger.Milestone.Metric, "Normalize must not mutate its receiver")
}

// =============================================================================
// REWARD RESOLVER
// =============================================================================

func noVouchers(string) decimal.Decimal { return decimal.Zero }

func TestExtraPoints_FlatPointsPerFiring(t *testing.T) {
	reward := engine.Reward{Type: engine.RewardPoints, Points: 500}
	base := engine.MustParseDecimal("4000")

	got := engine.ExtraPoints(reward, 3, base, noVouchers)
	assert.True(t, engine.MustParseDecimal("1500").Equal(got), "500 points x 3 firings, got %s", got)

	negative := engine.Reward{Type: engine.RewardPoints, Points: -100}
	assert.True(t, engine.ExtraPoints(negative, 3, base, noVouchers).IsZero())
}

func TestExtraPoints_MultiplierDoesNotStack(t *testing.T) {
	// GIVEN: a 2x multiplier reward and base points of 4000
	// WHEN: the trigger fires once, five times, or not at all
	// THEN: the contribution is always base x (z-1): the multiplier is a
	//       base-point modifier, not a per-event accrual

	reward := engine.Reward{Type: engine.RewardMultiplier, Multiplier: 2}
	base := engine.MustParseDecimal("4000")
	want := engine.MustParseDecimal("4000")

	for _, fired := range []int{0, 1, 5} {
		got := engine.ExtraPoints(reward, fired, base, noVouchers)
		assert.True(t, want.Equal(got), "fired=%d: want %s, got %s", fired, want, got)
	}
}

func TestExtraPoints_MultiplierClampedToOne(t *testing.T) {
	reward := engine.Reward{Type: engine.RewardMultiplier, Multiplier: 0.5}
	got := engine.ExtraPoints(reward, 1, engine.MustParseDecimal("4000"), noVouchers)
	assert.True(t, got.IsZero(), "z < 1 clamps to 1, contributing nothing, got %s", got)
}

func TestExtraPoints_VoucherPerFiring(t *testing.T) {
	reward := engine.Reward{
		Type:    engine.RewardVoucher,
		Voucher: &engine.VoucherReward{VoucherID: "v-free-night", Count: 2},
	}
	value := func(id string) decimal.Decimal {
		if id == "v-free-night" {
			return engine.MustParseDecimal("35000")
		}
		return decimal.Zero
	}

	got := engine.ExtraPoints(reward, 3, decimal.Zero, value)
	assert.True(t, engine.MustParseDecimal("210000").Equal(got), "2 vouchers x 3 firings x 35000, got %s", got)

	dangling := engine.Reward{
		Type:    engine.RewardVoucher,
		Voucher: &engine.VoucherReward{VoucherID: "gone", Count: 2},
	}
	assert.True(t, engine.ExtraPoints(dangling, 3, decimal.Zero, value).IsZero())
}

// =============================================================================
// VOUCHER VALUE RESOLUTION
// =============================================================================

func voucherProgram() engine.Program {
	return engine.Program{
		ID:       "prog",
		Currency: engine.USD,
		Settings: engine.ProgramSettings{
			PointValue:      engine.NewMoney(80, engine.USD), // 0.008 USD/pt
			VouchersEnabled: true,
			Vouchers: []engine.Voucher{
				{ID: "v-points", Mode: engine.VoucherPoints, Points: 35000},
				{ID: "v-cash", Mode: engine.VoucherCash, Cash: engine.NewMoney(80, engine.USD)},
			},
		},
	}
}

func TestResolveVoucherValueOrZero(t *testing.T) {
	p := voucherProgram()

	assert.True(t, engine.MustParseDecimal("35000").Equal(engine.ResolveVoucherValueOrZero(p, "v-points", nil)))

	// 80 USD cash / 0.008 USD per point = 10000 points
	got := engine.ResolveVoucherValueOrZero(p, "v-cash", nil)
	assert.True(t, engine.MustParseDecimal("10000").Equal(got), "got %s", got)

	assert.True(t, engine.ResolveVoucherValueOrZero(p, "missing", nil).IsZero())
}

func TestResolveVoucherValueOrZero_ZeroPointValueDegrades(t *testing.T) {
	// A cash voucher with a zero per-point value would divide by zero;
	// it degrades to no value instead.
	p := voucherProgram()
	p.Settings.PointValue = engine.NewMoney(0, engine.USD)

	assert.True(t, engine.ResolveVoucherValueOrZero(p, "v-cash", nil).IsZero())
}

func TestResolveVoucherValueOrZero_CrossCurrencyCash(t *testing.T) {
	// 90 EUR cash at 0.9 EUR/USD is 100 USD; / 0.008 USD per point.
	p := voucherProgram()
	p.Settings.Vouchers = append(p.Settings.Vouchers,
		engine.Voucher{ID: "v-eur", Mode: engine.VoucherCash, Cash: engine.NewMoney(90, engine.EUR)})

	got := engine.ResolveVoucherValueOrZero(p, "v-eur", usdRates())
	assert.True(t, engine.MustParseDecimal("12500").Equal(got), "got %s", got)
}

func TestResolveVoucherValueOrZero_ZeroCash(t *testing.T) {
	p := voucherProgram()
	p.Settings.Vouchers = append(p.Settings.Vouchers,
		engine.Voucher{ID: "v-zero", Mode: engine.VoucherCash, Cash: engine.NewMoney(0, engine.USD)})

	assert.True(t, engine.ResolveVoucherValueOrZero(p, "v-zero", nil).IsZero())
}

func TestResolveVoucherValueOrZero_DisabledToggle(t *testing.T) {
	p := voucherProgram()
	p.Settings.VouchersEnabled = false

	assert.True(t, engine.ResolveVoucherValueOrZero(p, "v-points", nil).IsZero())
}

// =============================================================================
// TIER / ELITE FALLBACKS
// =============================================================================

func TestResolveTierOrDefault(t *testing.T) {
	p := engine.Program{Tiers: []engine.BrandTier{
		{ID: "t1", Name: "10x", Rate: 10},
		{ID: "t2", Name: "5x", Rate: 5},
	}}

	assert.Equal(t, 5.0, engine.ResolveTierOrDefault(p, "t2").Rate)
	assert.Equal(t, 10.0, engine.ResolveTierOrDefault(p, "stale-id").Rate, "stale id falls back to first tier")
	assert.Equal(t, engine.DefaultEarnRate, engine.ResolveTierOrDefault(engine.Program{}, "any").Rate)
}

func TestResolveEliteOrNone(t *testing.T) {
	p := engine.Program{EliteTiers: []engine.EliteTier{
		{ID: "plat", Name: "Platinum", Bonus: 0.5},
		{ID: "odd", Name: "Broken", Bonus: -1},
	}}

	assert.True(t, engine.MustParseDecimal("0.5").Equal(engine.ResolveEliteOrNone(p, "plat")))
	assert.True(t, engine.ResolveEliteOrNone(p, "missing").IsZero())
	assert.True(t, engine.ResolveEliteOrNone(p, "odd").IsZero(), "negative bonus clamps to 0")
}
