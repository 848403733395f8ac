/*
Package factory provides JSON to Go conversion for stored documents.

PURPOSE:
  Programs, hotel options, and global settings are persisted as JSON
  documents. This package owns the document schema: parsing into engine
  structs, serializing back, defaulting, and forward-compatible
  migration of older field shapes.

WHY JSON DOCUMENTS?
  - The records are user-authored and edited wholesale through forms
  - Easy storage in a single column without per-field schema churn
  - Older documents keep loading as the shape evolves

MIGRATIONS HANDLED:
  - Legacy single-voucher fields (voucher_value / voucher_mode /
    voucher_currency on settings) are folded into the vouchers list.
  - Milestone metric "stay" is coerced to "nights"; thresholds are
    floored to >= 1.
  - Missing earn basis defaults to PRE_TAX; a point value without a
    currency inherits the program's home currency.

JSON SCHEMA (program):
  {
    "id": "prog-1",
    "name": "Marriott-style Rewards",
    "currency": "USD",
    "tiers": [{"id": "t1", "name": "10x", "rate": 10}],
    "elite_tiers": [{"id": "e1", "name": "Platinum", "bonus": 0.5}],
    "settings": {
      "elite_tier_id": "e1",
      "point_value": {"amount": 80, "currency": "USD"},
      "vouchers_enabled": true,
      "vouchers": [{"id": "v1", "mode": "CASH",
                    "cash": {"amount": 280, "currency": "USD"}}],
      "earn_basis": "PRE_TAX",
      "rules": [{"id": "r1", "enabled": true,
                 "trigger": {"type": "per_night"},
                 "reward": {"type": "points", "points": 500}}]
    }
  }

SEE ALSO:
  - engine/program.go: The target structs
  - store/sqlite: Where the documents live
*/
package factory

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/stay-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// MoneyJSON is the document form of engine.Money.
type MoneyJSON struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// SettingsJSON is the document form of engine.GlobalSettings.
type SettingsJSON struct {
	Currency string  `json:"currency,omitempty"`
	Nights   float64 `json:"nights"`
	Country  string  `json:"country,omitempty"`
	TaxMode  string  `json:"tax_mode"`
	TaxRate  float64 `json:"tax_rate"`
}

// ProgramJSON is the document form of engine.Program.
type ProgramJSON struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Currency   string              `json:"currency"`
	Tiers      []BrandTierJSON     `json:"tiers,omitempty"`
	EliteTiers []EliteTierJSON     `json:"elite_tiers,omitempty"`
	SubBrands  []SubBrandJSON      `json:"sub_brands,omitempty"`
	Settings   ProgramSettingsJSON `json:"settings"`
}

type BrandTierJSON struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type EliteTierJSON struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Bonus float64 `json:"bonus"`
}

type SubBrandJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TierID string `json:"tier_id"`
}

// ProgramSettingsJSON carries current fields plus the legacy
// single-voucher shape older documents used before vouchers became a
// list.
type ProgramSettingsJSON struct {
	EliteTierID     string        `json:"elite_tier_id,omitempty"`
	PointValue      MoneyJSON     `json:"point_value"`
	VouchersEnabled bool          `json:"vouchers_enabled,omitempty"`
	Vouchers        []VoucherJSON `json:"vouchers,omitempty"`
	EarnBasis       string        `json:"earn_basis,omitempty"`
	Rules           []RuleJSON    `json:"rules,omitempty"`

	// Legacy single-voucher fields; folded into Vouchers on parse.
	LegacyVoucherValue    float64 `json:"voucher_value,omitempty"`
	LegacyVoucherMode     string  `json:"voucher_mode,omitempty"`
	LegacyVoucherCurrency string  `json:"voucher_currency,omitempty"`
}

type VoucherJSON struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Mode   string     `json:"mode"`
	Cash   *MoneyJSON `json:"cash,omitempty"`
	Points float64    `json:"points,omitempty"`
}

type RuleJSON struct {
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	Enabled bool        `json:"enabled"`
	Trigger TriggerJSON `json:"trigger"`
	Reward  RewardJSON  `json:"reward"`
}

type TriggerJSON struct {
	Type string `json:"type"`

	// spend
	Amount float64 `json:"amount,omitempty"`
	Repeat bool    `json:"repeat,omitempty"`

	// milestone
	Metric    string  `json:"metric,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

type RewardJSON struct {
	Type       string  `json:"type"`
	Points     float64 `json:"points,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	VoucherID  string  `json:"voucher_id,omitempty"`
	Count      int     `json:"count,omitempty"`
}

// HotelJSON is the document form of engine.HotelOption.
type HotelJSON struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ProgramID   string     `json:"program_id"`
	BrandTierID string     `json:"brand_tier_id,omitempty"`
	SubBrandID  string     `json:"sub_brand_id,omitempty"`
	PreTax      *MoneyJSON `json:"pre_tax,omitempty"`
	PostTax     *MoneyJSON `json:"post_tax,omitempty"`
	Rules       []RuleJSON `json:"rules,omitempty"`
}

// =============================================================================
// PARSING - JSON documents to engine structs
// =============================================================================

// ParseProgram parses a stored program document.
func ParseProgram(doc string) (*engine.Program, error) {
	var pj ProgramJSON
	if err := json.Unmarshal([]byte(doc), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse program document: %w", err)
	}
	p := ProgramFromJSON(pj)
	return &p, nil
}

// ProgramFromJSON converts a ProgramJSON to an engine.Program, applying
// defaults and legacy migrations.
func ProgramFromJSON(pj ProgramJSON) engine.Program {
	p := engine.Program{
		ID:       pj.ID,
		Name:     pj.Name,
		Currency: engine.CurrencyCode(pj.Currency),
	}
	for _, t := range pj.Tiers {
		p.Tiers = append(p.Tiers, engine.BrandTier{ID: t.ID, Name: t.Name, Rate: t.Rate})
	}
	for _, t := range pj.EliteTiers {
		p.EliteTiers = append(p.EliteTiers, engine.EliteTier{ID: t.ID, Name: t.Name, Bonus: t.Bonus})
	}
	for _, sb := range pj.SubBrands {
		p.SubBrands = append(p.SubBrands, engine.SubBrand{ID: sb.ID, Name: sb.Name, TierID: sb.TierID})
	}

	s := pj.Settings
	pointCurrency := s.PointValue.Currency
	if pointCurrency == "" {
		pointCurrency = pj.Currency
	}

	p.Settings = engine.ProgramSettings{
		EliteTierID: s.EliteTierID,
		PointValue: engine.Money{
			Amount:   decimal.NewFromFloat(s.PointValue.Amount),
			Currency: engine.CurrencyCode(pointCurrency),
		},
		VouchersEnabled: s.VouchersEnabled,
		EarnBasis:       earnBasisOrDefault(s.EarnBasis),
	}
	for _, v := range s.Vouchers {
		p.Settings.Vouchers = append(p.Settings.Vouchers, voucherFromJSON(v, p.Currency))
	}
	if legacy := migrateLegacyVoucher(s, p.Currency); legacy != nil && len(s.Vouchers) == 0 {
		p.Settings.Vouchers = append(p.Settings.Vouchers, *legacy)
	}
	for _, r := range s.Rules {
		p.Settings.Rules = append(p.Settings.Rules, ruleFromJSON(r))
	}
	return p
}

// ParseHotel parses a stored hotel document.
func ParseHotel(doc string) (*engine.HotelOption, error) {
	var hj HotelJSON
	if err := json.Unmarshal([]byte(doc), &hj); err != nil {
		return nil, fmt.Errorf("failed to parse hotel document: %w", err)
	}
	h := HotelFromJSON(hj)
	return &h, nil
}

// HotelFromJSON converts a HotelJSON to an engine.HotelOption.
func HotelFromJSON(hj HotelJSON) engine.HotelOption {
	h := engine.HotelOption{
		ID:          hj.ID,
		Name:        hj.Name,
		ProgramID:   hj.ProgramID,
		BrandTierID: hj.BrandTierID,
		SubBrandID:  hj.SubBrandID,
		PreTax:      moneyFromJSON(hj.PreTax),
		PostTax:     moneyFromJSON(hj.PostTax),
	}
	for _, r := range hj.Rules {
		h.Rules = append(h.Rules, ruleFromJSON(r))
	}
	return h
}

// SettingsFromJSON converts a SettingsJSON to engine.GlobalSettings.
func SettingsFromJSON(sj SettingsJSON) engine.GlobalSettings {
	mode := engine.TaxInputMode(sj.TaxMode)
	switch mode {
	case engine.PreTaxPlusRate, engine.PostTaxPlusRate, engine.PreAndPost:
	default:
		mode = engine.PreTaxPlusRate
	}
	rate := sj.TaxRate
	if rate < 0 {
		rate = 0
	}
	return engine.GlobalSettings{
		Currency: engine.CurrencyCode(sj.Currency),
		Nights:   sj.Nights,
		Country:  sj.Country,
		TaxMode:  mode,
		TaxRate:  decimal.NewFromFloat(rate),
	}
}

func earnBasisOrDefault(s string) engine.EarnBasis {
	if engine.EarnBasis(s) == engine.EarnPostTax {
		return engine.EarnPostTax
	}
	return engine.EarnPreTax
}

func moneyFromJSON(m *MoneyJSON) *engine.Money {
	if m == nil {
		return nil
	}
	return &engine.Money{
		Amount:   decimal.NewFromFloat(m.Amount),
		Currency: engine.CurrencyCode(m.Currency),
	}
}

func voucherFromJSON(v VoucherJSON, programCurrency engine.CurrencyCode) engine.Voucher {
	voucher := engine.Voucher{
		ID:     v.ID,
		Name:   v.Name,
		Points: v.Points,
	}
	switch engine.VoucherMode(v.Mode) {
	case engine.VoucherPoints:
		voucher.Mode = engine.VoucherPoints
	default:
		voucher.Mode = engine.VoucherCash
	}
	if v.Cash != nil {
		currency := engine.CurrencyCode(v.Cash.Currency)
		if currency == "" {
			currency = programCurrency
		}
		voucher.Cash = engine.Money{
			Amount:   decimal.NewFromFloat(v.Cash.Amount),
			Currency: currency,
		}
	}
	return voucher
}

// migrateLegacyVoucher folds the pre-list single-voucher fields into a
// Voucher record. Returns nil when the document has no legacy voucher.
func migrateLegacyVoucher(s ProgramSettingsJSON, programCurrency engine.CurrencyCode) *engine.Voucher {
	if s.LegacyVoucherValue <= 0 {
		return nil
	}
	v := engine.Voucher{
		ID:   "voucher-legacy",
		Name: "Voucher",
	}
	if engine.VoucherMode(s.LegacyVoucherMode) == engine.VoucherPoints {
		v.Mode = engine.VoucherPoints
		v.Points = s.LegacyVoucherValue
		return &v
	}
	currency := engine.CurrencyCode(s.LegacyVoucherCurrency)
	if currency == "" {
		currency = programCurrency
	}
	v.Mode = engine.VoucherCash
	v.Cash = engine.Money{
		Amount:   decimal.NewFromFloat(s.LegacyVoucherValue),
		Currency: currency,
	}
	return &v
}

func ruleFromJSON(r RuleJSON) engine.Rule {
	return engine.Rule{
		ID:      r.ID,
		Name:    r.Name,
		Enabled: r.Enabled,
		Trigger: triggerFromJSON(r.Trigger),
		Reward:  rewardFromJSON(r.Reward),
	}
}

func triggerFromJSON(t TriggerJSON) engine.Trigger {
	switch engine.TriggerType(t.Type) {
	case engine.TriggerSpend:
		return engine.Trigger{
			Type: engine.TriggerSpend,
			Spend: &engine.SpendTrigger{
				Amount: decimal.NewFromFloat(t.Amount),
				Repeat: t.Repeat,
			},
		}
	case engine.TriggerMilestone:
		threshold := int(math.Floor(t.Threshold))
		if threshold < 1 {
			threshold = 1
		}
		// Metric "stay" in older documents is vestigial; coerce.
		return engine.Trigger{
			Type: engine.TriggerMilestone,
			Milestone: &engine.MilestoneTrigger{
				Metric:    engine.MetricNights,
				Threshold: threshold,
			},
		}
	case engine.TriggerPerStay:
		return engine.Trigger{Type: engine.TriggerPerStay}
	default:
		return engine.Trigger{Type: engine.TriggerPerNight}
	}
}

func rewardFromJSON(r RewardJSON) engine.Reward {
	switch engine.RewardType(r.Type) {
	case engine.RewardMultiplier:
		return engine.Reward{Type: engine.RewardMultiplier, Multiplier: r.Multiplier}
	case engine.RewardVoucher:
		return engine.Reward{
			Type:    engine.RewardVoucher,
			Voucher: &engine.VoucherReward{VoucherID: r.VoucherID, Count: r.Count},
		}
	default:
		return engine.Reward{Type: engine.RewardPoints, Points: r.Points}
	}
}

// =============================================================================
// SERIALIZATION - engine structs back to JSON documents
// =============================================================================

// ProgramToJSON converts an engine.Program to its document form. Legacy
// fields are never written back; round-tripping an old document
// upgrades it.
func ProgramToJSON(p engine.Program) ProgramJSON {
	pj := ProgramJSON{
		ID:       p.ID,
		Name:     p.Name,
		Currency: string(p.Currency),
	}
	for _, t := range p.Tiers {
		pj.Tiers = append(pj.Tiers, BrandTierJSON{ID: t.ID, Name: t.Name, Rate: t.Rate})
	}
	for _, t := range p.EliteTiers {
		pj.EliteTiers = append(pj.EliteTiers, EliteTierJSON{ID: t.ID, Name: t.Name, Bonus: t.Bonus})
	}
	for _, sb := range p.SubBrands {
		pj.SubBrands = append(pj.SubBrands, SubBrandJSON{ID: sb.ID, Name: sb.Name, TierID: sb.TierID})
	}

	s := p.Settings
	pointValue, _ := s.PointValue.Amount.Float64()
	pj.Settings = ProgramSettingsJSON{
		EliteTierID:     s.EliteTierID,
		PointValue:      MoneyJSON{Amount: pointValue, Currency: string(s.PointValue.Currency)},
		VouchersEnabled: s.VouchersEnabled,
		EarnBasis:       string(s.EarnBasis),
	}
	for _, v := range s.Vouchers {
		pj.Settings.Vouchers = append(pj.Settings.Vouchers, voucherToJSON(v))
	}
	for _, r := range s.Rules {
		pj.Settings.Rules = append(pj.Settings.Rules, ruleToJSON(r))
	}
	return pj
}

// HotelToJSON converts an engine.HotelOption to its document form.
func HotelToJSON(h engine.HotelOption) HotelJSON {
	hj := HotelJSON{
		ID:          h.ID,
		Name:        h.Name,
		ProgramID:   h.ProgramID,
		BrandTierID: h.BrandTierID,
		SubBrandID:  h.SubBrandID,
		PreTax:      moneyToJSON(h.PreTax),
		PostTax:     moneyToJSON(h.PostTax),
	}
	for _, r := range h.Rules {
		hj.Rules = append(hj.Rules, ruleToJSON(r))
	}
	return hj
}

// SettingsToJSON converts engine.GlobalSettings to its document form.
func SettingsToJSON(g engine.GlobalSettings) SettingsJSON {
	rate, _ := g.TaxRate.Float64()
	return SettingsJSON{
		Currency: string(g.Currency),
		Nights:   g.Nights,
		Country:  g.Country,
		TaxMode:  string(g.TaxMode),
		TaxRate:  rate,
	}
}

func moneyToJSON(m *engine.Money) *MoneyJSON {
	if m == nil {
		return nil
	}
	amount, _ := m.Amount.Float64()
	return &MoneyJSON{Amount: amount, Currency: string(m.Currency)}
}

func voucherToJSON(v engine.Voucher) VoucherJSON {
	vj := VoucherJSON{
		ID:     v.ID,
		Name:   v.Name,
		Mode:   string(v.Mode),
		Points: v.Points,
	}
	if v.Mode == engine.VoucherCash {
		amount, _ := v.Cash.Amount.Float64()
		vj.Cash = &MoneyJSON{Amount: amount, Currency: string(v.Cash.Currency)}
	}
	return vj
}

func ruleToJSON(r engine.Rule) RuleJSON {
	rj := RuleJSON{
		ID:      r.ID,
		Name:    r.Name,
		Enabled: r.Enabled,
		Trigger: TriggerJSON{Type: string(r.Trigger.Type)},
		Reward:  RewardJSON{Type: string(r.Reward.Type)},
	}
	if r.Trigger.Spend != nil {
		amount, _ := r.Trigger.Spend.Amount.Float64()
		rj.Trigger.Amount = amount
		rj.Trigger.Repeat = r.Trigger.Spend.Repeat
	}
	if r.Trigger.Milestone != nil {
		rj.Trigger.Metric = string(r.Trigger.Milestone.Metric)
		rj.Trigger.Threshold = float64(r.Trigger.Milestone.Threshold)
	}
	switch r.Reward.Type {
	case engine.RewardPoints:
		rj.Reward.Points = r.Reward.Points
	case engine.RewardMultiplier:
		rj.Reward.Multiplier = r.Reward.Multiplier
	case engine.RewardVoucher:
		if r.Reward.Voucher != nil {
			rj.Reward.VoucherID = r.Reward.Voucher.VoucherID
			rj.Reward.Count = r.Reward.Voucher.Count
		}
	}
	return rj
}

// MarshalProgram serializes a program to its stored document string.
func MarshalProgram(p engine.Program) (string, error) {
	b, err := json.Marshal(ProgramToJSON(p))
	if err != nil {
		return "", fmt.Errorf("failed to serialize program: %w", err)
	}
	return string(b), nil
}

// MarshalHotel serializes a hotel option to its stored document string.
func MarshalHotel(h engine.HotelOption) (string, error) {
	b, err := json.Marshal(HotelToJSON(h))
	if err != nil {
		return "", fmt.Errorf("failed to serialize hotel: %w", err)
	}
	return string(b), nil
}
