/*
Package loyalty provides pre-built loyalty program configurations.

PURPOSE:
  Ready-to-use Program definitions modeled on the big hotel chains, so a
  traveler can start comparing stays without typing out tier ladders and
  point values by hand. The figures are sensible public defaults, not
  live data; everything here is editable once loaded.

AVAILABLE PRESETS:
  MarriottStyleProgram:  10x base, Silver/Gold/Platinum/Titanium ladder,
                         0.8 cents/pt, CASH free-night voucher
  HiltonStyleProgram:    10x base, Silver/Gold/Diamond ladder, 0.5
                         cents/pt (points are cheaper, bonuses larger)
  HyattStyleProgram:     5x base, Discoverist/Explorist/Globalist
                         ladder, 1.7 cents/pt, POINTS free-night voucher
  IHGStyleProgram:       10x base, Silver/Gold/Platinum/Diamond ladder,
                         0.5 cents/pt

COUNTRY TAX PRESETS:
  CountryTaxRates maps a country selection to a typical lodging tax
  fraction for seeding GlobalSettings. Rough defaults only; the traveler
  overrides per stay.

SEE ALSO:
  - engine/program.go: The Program type these constructors fill in
  - api: The preset loader endpoints that persist these
*/
package loyalty

import (
	"github.com/warp/stay-engine/engine"
)

// =============================================================================
// PRESET PROGRAMS
// =============================================================================

// MarriottStyleProgram builds a Bonvoy-like program: 10 points per USD
// at full-service brands, elite bonuses from 10% to 75%, points worth
// about 0.8 cents each, and a cash-valued free-night certificate.
func MarriottStyleProgram(id string) engine.Program {
	return engine.Program{
		ID:       id,
		Name:     "Marriott-style Rewards",
		Currency: engine.USD,
		Tiers: []engine.BrandTier{
			{ID: id + "-tier-full", Name: "Full Service (10x)", Rate: 10},
			{ID: id + "-tier-select", Name: "Select Service (10x)", Rate: 10},
			{ID: id + "-tier-extended", Name: "Extended Stay (5x)", Rate: 5},
		},
		EliteTiers: []engine.EliteTier{
			{ID: id + "-elite-silver", Name: "Silver", Bonus: 0.1},
			{ID: id + "-elite-gold", Name: "Gold", Bonus: 0.25},
			{ID: id + "-elite-platinum", Name: "Platinum", Bonus: 0.5},
			{ID: id + "-elite-titanium", Name: "Titanium", Bonus: 0.75},
		},
		SubBrands: []engine.SubBrand{
			{ID: id + "-sb-luxury", Name: "Luxury Collection", TierID: id + "-tier-full"},
			{ID: id + "-sb-courtyard", Name: "Courtyard", TierID: id + "-tier-select"},
			{ID: id + "-sb-towneplace", Name: "TownePlace", TierID: id + "-tier-extended"},
		},
		Settings: engine.ProgramSettings{
			PointValue:      engine.NewMoney(80, engine.USD),
			VouchersEnabled: true,
			Vouchers: []engine.Voucher{{
				ID:   id + "-voucher-freenight",
				Name: "Free Night Certificate (35k)",
				Mode: engine.VoucherCash,
				Cash: engine.NewMoney(280, engine.USD),
			}},
			EarnBasis: engine.EarnPreTax,
		},
	}
}

// HiltonStyleProgram builds an Honors-like program. Points are worth
// roughly half a cent; the base earn and elite bonuses are larger to
// compensate.
func HiltonStyleProgram(id string) engine.Program {
	return engine.Program{
		ID:       id,
		Name:     "Hilton-style Honors",
		Currency: engine.USD,
		Tiers: []engine.BrandTier{
			{ID: id + "-tier-standard", Name: "Standard (10x)", Rate: 10},
			{ID: id + "-tier-economy", Name: "Economy (5x)", Rate: 5},
		},
		EliteTiers: []engine.EliteTier{
			{ID: id + "-elite-silver", Name: "Silver", Bonus: 0.2},
			{ID: id + "-elite-gold", Name: "Gold", Bonus: 0.8},
			{ID: id + "-elite-diamond", Name: "Diamond", Bonus: 1.0},
		},
		Settings: engine.ProgramSettings{
			PointValue: engine.NewMoney(50, engine.USD),
			EarnBasis:  engine.EarnPreTax,
		},
	}
}

// HyattStyleProgram builds a World-of-Hyatt-like program: a low 5x base
// rate against a high point value, and a point-denominated free night.
func HyattStyleProgram(id string) engine.Program {
	return engine.Program{
		ID:       id,
		Name:     "Hyatt-style Program",
		Currency: engine.USD,
		Tiers: []engine.BrandTier{
			{ID: id + "-tier-base", Name: "All Brands (5x)", Rate: 5},
		},
		EliteTiers: []engine.EliteTier{
			{ID: id + "-elite-discoverist", Name: "Discoverist", Bonus: 0.1},
			{ID: id + "-elite-explorist", Name: "Explorist", Bonus: 0.2},
			{ID: id + "-elite-globalist", Name: "Globalist", Bonus: 0.3},
		},
		Settings: engine.ProgramSettings{
			PointValue:      engine.NewMoney(170, engine.USD),
			VouchersEnabled: true,
			Vouchers: []engine.Voucher{{
				ID:     id + "-voucher-cat4",
				Name:   "Category 4 Free Night",
				Mode:   engine.VoucherPoints,
				Points: 15000,
			}},
			EarnBasis: engine.EarnPreTax,
		},
	}
}

// IHGStyleProgram builds an IHG-One-like program.
func IHGStyleProgram(id string) engine.Program {
	return engine.Program{
		ID:       id,
		Name:     "IHG-style One Rewards",
		Currency: engine.USD,
		Tiers: []engine.BrandTier{
			{ID: id + "-tier-standard", Name: "Standard (10x)", Rate: 10},
			{ID: id + "-tier-staybridge", Name: "Staybridge (5x)", Rate: 5},
		},
		EliteTiers: []engine.EliteTier{
			{ID: id + "-elite-silver", Name: "Silver", Bonus: 0.2},
			{ID: id + "-elite-gold", Name: "Gold", Bonus: 0.4},
			{ID: id + "-elite-platinum", Name: "Platinum", Bonus: 0.6},
			{ID: id + "-elite-diamond", Name: "Diamond", Bonus: 1.0},
		},
		Settings: engine.ProgramSettings{
			PointValue: engine.NewMoney(50, engine.USD),
			EarnBasis:  engine.EarnPreTax,
		},
	}
}

// Presets lists every available preset constructor keyed by a stable
// preset id, for the API's preset loader.
var Presets = map[string]func(id string) engine.Program{
	"marriott": MarriottStyleProgram,
	"hilton":   HiltonStyleProgram,
	"hyatt":    HyattStyleProgram,
	"ihg":      IHGStyleProgram,
}

// =============================================================================
// COUNTRY TAX PRESETS
// =============================================================================

// CountryTax is a rough default lodging tax fraction for a country
// selection.
type CountryTax struct {
	Country string
	Name    string
	Rate    float64
}

// CountryTaxRates seeds the tax-rate field when the traveler picks a
// country. Lodging taxes vary by city; these are starting points only.
var CountryTaxRates = []CountryTax{
	{Country: "US", Name: "United States", Rate: 0.15},
	{Country: "JP", Name: "Japan", Rate: 0.10},
	{Country: "DE", Name: "Germany", Rate: 0.07},
	{Country: "FR", Name: "France", Rate: 0.10},
	{Country: "GB", Name: "United Kingdom", Rate: 0.20},
	{Country: "TH", Name: "Thailand", Rate: 0.177},
	{Country: "SG", Name: "Singapore", Rate: 0.19},
}

// TaxRateForCountry returns the preset rate for a country code, or 0
// when the country has no preset.
func TaxRateForCountry(country string) float64 {
	for _, ct := range CountryTaxRates {
		if ct.Country == country {
			return ct.Rate
		}
	}
	return 0
}
