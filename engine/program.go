/*
program.go - Loyalty program and hotel stay types

PURPOSE:
  Defines the user-authored records the valuation engine consumes: a
  Program (a hotel chain's loyalty scheme) and a HotelOption (one
  candidate stay referencing a program).

LIFECYCLE:
  Program, HotelOption, and Rule are user-authored: mutated only through
  explicit edit operations, deleted explicitly. Deleting a Program
  cascades to delete all HotelOptions referencing it (enforced by the
  store, not here). The engine itself never mutates these records.

SEE ALSO:
  - rules.go: The Rule/Trigger/Reward types referenced here
  - resolve.go: Fallback resolution for stale tier/voucher references
*/
package engine

// =============================================================================
// PROGRAM - A loyalty brand
// =============================================================================

// Program is a hotel loyalty brand: its earn-rate tiers, elite status
// ladder, point valuation, and brand-level promo rules.
type Program struct {
	ID   string
	Name string

	// Currency is the program's home currency: the currency spend is
	// measured in when computing base point earnings.
	Currency CurrencyCode

	// Tiers are the earn-rate variants, in display order. A HotelOption
	// selects one by id; a stale id falls back to the first tier.
	Tiers []BrandTier

	// EliteTiers are the status levels, in display order.
	EliteTiers []EliteTier

	// SubBrands are cosmetic groupings, each mapping to a tier.
	SubBrands []SubBrand

	Settings ProgramSettings
}

// BrandTier is an earn-rate variant within a program (e.g. "10x" for
// full-service brands, "5x" for extended stay).
type BrandTier struct {
	ID   string
	Name string

	// Rate is points earned per unit of program currency spent.
	Rate float64
}

// EliteTier is a status level conferring a bonus fraction on base points
// (0.5 = 50% bonus). Bonus is clamped to >= 0 at evaluation time.
type EliteTier struct {
	ID    string
	Name  string
	Bonus float64
}

// SubBrand maps a cosmetic brand name to one of the program's tiers.
type SubBrand struct {
	ID     string
	Name   string
	TierID string
}

// EarnBasis selects whether points accrue on pre-tax or post-tax spend.
type EarnBasis string

const (
	EarnPreTax  EarnBasis = "PRE_TAX"
	EarnPostTax EarnBasis = "POST_TAX"
)

// ProgramSettings are the per-program knobs the traveler configures.
type ProgramSettings struct {
	// EliteTierID selects the traveler's current status level. A stale
	// or empty id resolves to no bonus.
	EliteTierID string

	// PointValue is the cash value of 10,000 points, in its own currency.
	PointValue Money

	// VouchersEnabled toggles voucher rewards on or off without deleting
	// the voucher definitions.
	VouchersEnabled bool
	Vouchers        []Voucher

	EarnBasis EarnBasis

	// Rules are brand-level promo rules, evaluated for every stay under
	// this program, before any hotel-level rules.
	Rules []Rule
}

// =============================================================================
// VOUCHER - Redeemable unit used as a rule reward target
// =============================================================================

// VoucherMode selects how a voucher's value is expressed.
type VoucherMode string

const (
	VoucherCash   VoucherMode = "CASH"
	VoucherPoints VoucherMode = "POINTS"
)

// Voucher is a redeemable unit (e.g. a free-night certificate) valued
// either as cash or as an equivalent point count. The engine only ever
// converts vouchers into points as a reward target; it never redeems
// them independently.
type Voucher struct {
	ID   string
	Name string
	Mode VoucherMode

	// Cash is the voucher's value when Mode == VoucherCash.
	Cash Money

	// Points is the voucher's value when Mode == VoucherPoints.
	Points float64
}

// =============================================================================
// HOTEL OPTION - One candidate stay
// =============================================================================

// HotelOption is a candidate stay: one hotel's rates tied to a loyalty
// program. Either rate field may be nil depending on the tax input mode.
type HotelOption struct {
	ID   string
	Name string

	// ProgramID references a Program. A dangling reference yields the
	// unresolved sentinel Calc at the ranking boundary.
	ProgramID string

	// BrandTierID selects one of the program's tiers. Stale ids fall
	// back to the program's first tier.
	BrandTierID string

	// SubBrandID is a cosmetic grouping reference; may be empty.
	SubBrandID string

	// PreTax/PostTax are per-night rates in the hotel's own currency.
	PreTax  *Money
	PostTax *Money

	// Rules are hotel-level promo rules, evaluated after the program's
	// brand-level rules.
	Rules []Rule
}
