/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine types from the external contract. Program and hotel bodies
  reuse the factory document schema directly: the API edits the same
  documents the store persists, so there is exactly one JSON shape for
  these records.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/program.go: The shared document schema
*/
package api

import (
	"time"

	"github.com/warp/stay-engine/engine"
	"github.com/warp/stay-engine/factory"
)

// =============================================================================
// PROGRAM / HOTEL / SETTINGS
// =============================================================================

// ProgramDTO wraps a program document with its storage metadata.
type ProgramDTO struct {
	factory.ProgramJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// HotelDTO wraps a hotel document with its storage metadata.
type HotelDTO struct {
	factory.HotelJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// =============================================================================
// VALUATION RESULTS
// =============================================================================

// CalcDTO is the wire form of engine.Calc. Monetary figures are in
// Currency. For an unresolved stay (dangling program reference) the
// numeric fields are absent: its net cost is effectively infinite and
// it always sorts last.
type CalcDTO struct {
	Currency   string `json:"currency,omitempty"`
	Unresolved bool   `json:"unresolved,omitempty"`

	PaidPreTax  *float64 `json:"paid_pre_tax,omitempty"`
	PaidPostTax *float64 `json:"paid_post_tax,omitempty"`

	BasePoints       *float64 `json:"base_points,omitempty"`
	EliteBonusPoints *float64 `json:"elite_bonus_points,omitempty"`
	PromoExtraPoints *float64 `json:"promo_extra_points,omitempty"`
	TotalPoints      *float64 `json:"total_points,omitempty"`

	PointsValue *float64 `json:"points_value,omitempty"`
	NetCost     *float64 `json:"net_cost,omitempty"`
	RebateRate  *float64 `json:"rebate_rate,omitempty"`
	NetPayRatio *float64 `json:"net_pay_ratio,omitempty"`
}

// RankedStayDTO is one row of a comparison listing, cheapest net cost
// first.
type RankedStayDTO struct {
	HotelID     string  `json:"hotel_id"`
	HotelName   string  `json:"hotel_name"`
	ProgramID   string  `json:"program_id"`
	ProgramName string  `json:"program_name,omitempty"`
	Calc        CalcDTO `json:"calc"`
}

// ComputeRequest is an ad-hoc valuation of an explicit draft: the
// caller supplies the full records rather than referencing stored ones,
// keeping the engine stateless while a form is being edited.
type ComputeRequest struct {
	Settings factory.SettingsJSON `json:"settings"`
	Program  factory.ProgramJSON  `json:"program"`
	Hotel    factory.HotelJSON    `json:"hotel"`
}

// =============================================================================
// RATES
// =============================================================================

// RatesDTO reports the current rate table and its age.
type RatesDTO struct {
	Available bool               `json:"available"`
	Base      string             `json:"base,omitempty"`
	Rates     map[string]float64 `json:"rates,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	AgeHours  float64            `json:"age_hours,omitempty"`
}

// =============================================================================
// PRESETS
// =============================================================================

// PresetDTO describes one loadable preset program.
type PresetDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoadPresetRequest selects a preset to instantiate as a new program.
type LoadPresetRequest struct {
	Preset string `json:"preset"`
}

// CountryTaxDTO is a country tax-rate preset for seeding settings.
type CountryTaxDTO struct {
	Country string  `json:"country"`
	Name    string  `json:"name"`
	Rate    float64 `json:"rate"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCalcDTO(c engine.Calc) CalcDTO {
	if c.Unresolved {
		return CalcDTO{Currency: string(c.Currency), Unresolved: true}
	}
	return CalcDTO{
		Currency:         string(c.Currency),
		PaidPreTax:       floatPtr(c.PaidPreTax),
		PaidPostTax:      floatPtr(c.PaidPostTax),
		BasePoints:       floatPtr(c.BasePoints),
		EliteBonusPoints: floatPtr(c.EliteBonusPoints),
		PromoExtraPoints: floatPtr(c.PromoExtraPoints),
		TotalPoints:      floatPtr(c.TotalPoints),
		PointsValue:      floatPtr(c.PointsValue),
		NetCost:          floatPtr(c.NetCost),
		RebateRate:       floatPtr(c.RebateRate),
		NetPayRatio:      floatPtr(c.NetPayRatio),
	}
}

func toRankedStayDTO(r engine.RankedStay) RankedStayDTO {
	dto := RankedStayDTO{
		HotelID:   r.Hotel.ID,
		HotelName: r.Hotel.Name,
		ProgramID: r.Hotel.ProgramID,
		Calc:      toCalcDTO(r.Calc),
	}
	if r.Program != nil {
		dto.ProgramName = r.Program.Name
	}
	return dto
}

func floatPtr(d interface{ Float64() (float64, bool) }) *float64 {
	f, _ := d.Float64()
	return &f
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
