/*
rules.go - Promo rule triggers and rewards

PURPOSE:
  Defines promotional rules and the two small evaluators behind them:
  TimesFired (how many times a trigger condition fires for a stay) and
  ExtraPoints (how many points a fired reward contributes).

TRIGGER VARIANTS:
  per_night   Fires once per night.
  per_stay    Fires once per stay (the model always represents one stay).
  spend       Fires when pre-tax spend in the traveler's preferred
              currency reaches a threshold; optionally repeats per
              multiple of the threshold.
  milestone   Fires exactly once when nights reaches a threshold.

REWARD VARIANTS:
  points      Flat points per trigger firing.
  multiplier  Replaces base points with base x z. Applied exactly once
              regardless of how many times the trigger fires: a stacking
              multiplier per night would double-count the tier rate, so
              multiplier rewards are base-point modifiers, not per-event
              accruals.
  voucher     N vouchers per firing, each converted to its point value.

The variant sets are closed: every consumer switches exhaustively on the
Type discriminator, so adding a variant is a compile-surfaced change.

SEE ALSO:
  - resolve.go: Voucher-to-points resolution
  - calc.go: Where rules are concatenated and summed
*/
package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE
// =============================================================================

// Rule pairs a trigger condition with a reward. Rules live on a Program
// (brand-level) or a HotelOption (hotel-level); disabled rules are kept
// but skipped during valuation.
type Rule struct {
	ID      string
	Name    string
	Enabled bool
	Trigger Trigger
	Reward  Reward
}

// =============================================================================
// TRIGGER - When a rule's reward fires
// =============================================================================

type TriggerType string

const (
	TriggerPerNight  TriggerType = "per_night"
	TriggerPerStay   TriggerType = "per_stay"
	TriggerSpend     TriggerType = "spend"
	TriggerMilestone TriggerType = "milestone"
)

// Trigger is a closed sum over the trigger variants. The variant config
// pointer matching Type is consulted; the others are ignored.
type Trigger struct {
	Type      TriggerType
	Spend     *SpendTrigger
	Milestone *MilestoneTrigger
}

// SpendTrigger fires when pre-tax spend (in the traveler's preferred
// currency) reaches Amount. With Repeat, it fires floor(spend/Amount)
// times; otherwise at most once.
type SpendTrigger struct {
	Amount decimal.Decimal
	Repeat bool
}

// MilestoneMetric names what a milestone counts. Only "nights" is
// evaluated; "stay" survives in stored data from older versions and is
// coerced to "nights" on normalization rather than given semantics.
type MilestoneMetric string

const (
	MetricNights MilestoneMetric = "nights"
	MetricStay   MilestoneMetric = "stay"
)

// MilestoneTrigger fires exactly once when nights >= Threshold.
type MilestoneTrigger struct {
	Metric    MilestoneMetric
	Threshold int
}

// Normalize coerces vestigial or out-of-range trigger config in place
// of failing: the metric becomes "nights" and milestone thresholds are
// clamped to >= 1.
func (t Trigger) Normalize() Trigger {
	if t.Milestone != nil {
		m := *t.Milestone
		m.Metric = MetricNights
		if m.Threshold < 1 {
			m.Threshold = 1
		}
		t.Milestone = &m
	}
	return t
}

// TimesFired computes how many times a trigger fires for a stay of the
// given nights and pre-tax spend (already converted to the traveler's
// preferred currency). Always >= 0; unknown or malformed triggers fire
// zero times.
func TimesFired(t Trigger, nights int, spend decimal.Decimal) int {
	switch t.Type {
	case TriggerPerNight:
		if nights < 0 {
			return 0
		}
		return nights
	case TriggerPerStay:
		return 1
	case TriggerSpend:
		if t.Spend == nil || !t.Spend.Amount.IsPositive() {
			return 0
		}
		if spend.LessThan(t.Spend.Amount) {
			return 0
		}
		if t.Spend.Repeat {
			return int(spend.Div(t.Spend.Amount).Floor().IntPart())
		}
		return 1
	case TriggerMilestone:
		if t.Milestone == nil {
			return 0
		}
		threshold := t.Milestone.Threshold
		if threshold < 1 {
			threshold = 1
		}
		if nights >= threshold {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// =============================================================================
// REWARD - What a fired rule grants
// =============================================================================

type RewardType string

const (
	RewardPoints     RewardType = "points"
	RewardMultiplier RewardType = "multiplier"
	RewardVoucher    RewardType = "voucher"
)

// Reward is a closed sum over the reward variants.
type Reward struct {
	Type RewardType

	// Points is flat points per firing (RewardPoints).
	Points float64

	// Multiplier is z in "earn base x z" (RewardMultiplier). Clamped to
	// >= 1 at evaluation time.
	Multiplier float64

	Voucher *VoucherReward
}

// VoucherReward grants Count vouchers per firing.
type VoucherReward struct {
	VoucherID string
	Count     int
}

// VoucherValueFunc resolves a voucher id to its point-equivalent value.
// Unresolvable ids must resolve to zero, not an error.
type VoucherValueFunc func(voucherID string) decimal.Decimal

// ExtraPoints converts a reward fired timesFired times into additional
// points. basePoints is the stay's base point accrual (consumed by
// multiplier rewards only). Always >= 0.
func ExtraPoints(r Reward, timesFired int, basePoints decimal.Decimal, voucherValue VoucherValueFunc) decimal.Decimal {
	switch r.Type {
	case RewardPoints:
		pts := math.Max(0, r.Points)
		return decimal.NewFromFloat(pts).Mul(decimal.NewFromInt(int64(timesFired)))
	case RewardMultiplier:
		z := math.Max(1, r.Multiplier)
		// One-shot base modifier: timesFired intentionally ignored.
		return basePoints.Mul(decimal.NewFromFloat(z).Sub(decimal.NewFromInt(1)))
	case RewardVoucher:
		if r.Voucher == nil || voucherValue == nil {
			return decimal.Zero
		}
		count := r.Voucher.Count
		if count < 0 {
			count = 0
		}
		return decimal.NewFromInt(int64(count)).
			Mul(decimal.NewFromInt(int64(timesFired))).
			Mul(voucherValue(r.Voucher.VoucherID))
	default:
		return decimal.Zero
	}
}
