/*
resolve.go - Named fallback resolution for stale references

PURPOSE:
  A HotelOption references its program's tiers by id, the program
  references an elite tier and vouchers by id, and any of those ids can
  go stale as the traveler edits records. The fallback policy lives here
  as named functions rather than inline optional-chaining so it stays
  visible and independently testable:

    stale brand tier   -> program's first tier, else a default 10x rate
    stale elite tier   -> no bonus
    stale voucher      -> zero value
    zero point value   -> vouchers resolve to zero (no divide-by-zero)
*/
package engine

import "github.com/shopspring/decimal"

// DefaultEarnRate is the points-per-currency-unit rate assumed when a
// program has no tiers at all.
const DefaultEarnRate = 10.0

// pointsPerValuationUnit: PointValue.Amount is the cash value of 10,000
// points.
var pointsPerValuationUnit = decimal.NewFromInt(10000)

// ResolveTierOrDefault returns the tier matching tierID, falling back to
// the program's first tier when the id is stale, and to a synthetic
// DefaultEarnRate tier when the program has no tiers.
func ResolveTierOrDefault(p Program, tierID string) BrandTier {
	for _, t := range p.Tiers {
		if t.ID == tierID {
			return t
		}
	}
	if len(p.Tiers) > 0 {
		return p.Tiers[0]
	}
	return BrandTier{Rate: DefaultEarnRate}
}

// ResolveEliteOrNone returns the elite tier's bonus fraction, clamped to
// >= 0, or 0 when the id doesn't resolve.
func ResolveEliteOrNone(p Program, eliteTierID string) decimal.Decimal {
	for _, t := range p.EliteTiers {
		if t.ID == eliteTierID {
			if t.Bonus < 0 {
				return decimal.Zero
			}
			return decimal.NewFromFloat(t.Bonus)
		}
	}
	return decimal.Zero
}

// PointValuePerPoint returns the cash value of a single point in the
// program's point-value currency (PointValue.Amount / 10,000).
func PointValuePerPoint(p Program) Money {
	return Money{
		Amount:   p.Settings.PointValue.Amount.Div(pointsPerValuationUnit),
		Currency: p.Settings.PointValue.Currency,
	}
}

// ResolveVoucherValueOrZero converts a voucher id into its point
// equivalent:
//   - POINTS voucher: the stored point count.
//   - CASH voucher: cash value converted into the program's point-value
//     currency, divided by the per-point value. A zero or negative
//     per-point value resolves to 0 rather than dividing by zero.
//   - unresolvable id or disabled vouchers: 0.
func ResolveVoucherValueOrZero(p Program, voucherID string, fx *FxRates) decimal.Decimal {
	if !p.Settings.VouchersEnabled {
		return decimal.Zero
	}
	var voucher *Voucher
	for i := range p.Settings.Vouchers {
		if p.Settings.Vouchers[i].ID == voucherID {
			voucher = &p.Settings.Vouchers[i]
			break
		}
	}
	if voucher == nil {
		return decimal.Zero
	}

	switch voucher.Mode {
	case VoucherPoints:
		if voucher.Points < 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(voucher.Points)
	case VoucherCash:
		perPoint := PointValuePerPoint(p)
		if !perPoint.Amount.IsPositive() || voucher.Cash.IsZero() {
			return decimal.Zero
		}
		cash := ConvertMoney(voucher.Cash, perPoint.Currency, fx)
		value := cash.Amount.Div(perPoint.Amount)
		if value.IsNegative() {
			return decimal.Zero
		}
		return value
	default:
		return decimal.Zero
	}
}
