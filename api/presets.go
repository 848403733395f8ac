/*
presets.go - Preset program loading

PURPOSE:
  Lets a user seed the store with a ready-made loyalty program instead
  of typing tiers, elite bonuses, and vouchers by hand. Each preset is
  a constructor in the loyalty package; loading one instantiates it
  with a fresh id and persists it like any user-created program.

  Also exposes the country tax-rate table so clients can offer a
  country picker for the settings tax rate.

SEE ALSO:
  - loyalty/presets.go: The preset constructors and tax table
  - handlers.go: CRUD handlers and shared helpers
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/warp/stay-engine/factory"
	"github.com/warp/stay-engine/loyalty"
	"github.com/warp/stay-engine/store/sqlite"
)

// =============================================================================
// PRESET HANDLERS
// =============================================================================

// ListPresets returns the available preset programs and the country
// tax table.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := make([]PresetDTO, 0, len(loyalty.Presets))
	for key, build := range loyalty.Presets {
		program := build(key)
		presets = append(presets, PresetDTO{ID: key, Name: program.Name})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })

	taxes := make([]CountryTaxDTO, len(loyalty.CountryTaxRates))
	for i, ct := range loyalty.CountryTaxRates {
		taxes[i] = CountryTaxDTO{Country: ct.Country, Name: ct.Name, Rate: ct.Rate}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"presets":       presets,
		"country_taxes": taxes,
	})
}

// LoadPreset instantiates a preset as a new stored program.
func (h *Handler) LoadPreset(w http.ResponseWriter, r *http.Request) {
	var req LoadPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	build, ok := loyalty.Presets[req.Preset]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown preset", nil)
		return
	}

	program := build(uuid.NewString())
	doc, err := factory.MarshalProgram(program)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize program", err)
		return
	}

	rec := sqlite.ProgramRecord{ID: program.ID, Name: program.Name, Doc: doc}
	if err := h.Store.SaveProgram(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save program", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProgramDTO{ProgramJSON: factory.ProgramToJSON(program)})
}
