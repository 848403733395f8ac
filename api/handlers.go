/*
handlers.go - HTTP API handlers for the stay comparison service

PURPOSE:
  Exposes the valuation engine and its persisted records via REST.
  Handles HTTP request/response and JSON serialization, delegating all
  domain logic to the engine, factory, and store packages.

ENDPOINTS:
  Settings:
    GET    /api/settings            Get global settings
    PUT    /api/settings            Replace global settings

  Programs:
    GET    /api/programs            List programs
    POST   /api/programs            Create program (id server-generated)
    GET    /api/programs/{id}       Get program
    PUT    /api/programs/{id}       Replace program
    DELETE /api/programs/{id}       Delete program + referencing hotels

  Hotels:
    GET    /api/hotels              List candidate stays
    POST   /api/hotels              Create stay
    GET    /api/hotels/{id}         Get stay
    PUT    /api/hotels/{id}         Replace stay
    DELETE /api/hotels/{id}         Delete stay

  Valuation:
    GET    /api/compare             Rank all stays by net cost ascending
    POST   /api/compute             Value an explicit draft (stateless)

  Rates:
    GET    /api/rates               Current FX table + age
    POST   /api/rates/refresh       Force a fetch

  Presets:
    GET    /api/presets             List preset programs + country taxes
    POST   /api/presets/load        Instantiate a preset program

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid body or reference
  - 404: Record not found
  - 500: Store failures
  Valuation itself never errors; degraded inputs produce degraded
  figures per the engine's contract.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/stay-engine/engine"
	"github.com/warp/stay-engine/factory"
	"github.com/warp/stay-engine/loyalty"
	"github.com/warp/stay-engine/rates"
	"github.com/warp/stay-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Rates *rates.Provider
}

// NewHandler creates a new handler. rates may be nil (no FX table; the
// engine converts pass-through).
func NewHandler(store *sqlite.Store, provider *rates.Provider) *Handler {
	return &Handler{Store: store, Rates: provider}
}

func (h *Handler) currentRates() *engine.FxRates {
	if h.Rates == nil {
		return nil
	}
	return h.Rates.Current()
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// defaultSettings is what a fresh installation sees before the first
// save: one night, pre-tax entry, no tax, no preferred currency.
func defaultSettings() factory.SettingsJSON {
	return factory.SettingsJSON{
		Nights:  1,
		TaxMode: string(engine.PreTaxPlusRate),
	}
}

// GetSettings returns the stored settings document, or defaults.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if doc == "" {
		writeJSON(w, http.StatusOK, defaultSettings())
		return
	}

	var sj factory.SettingsJSON
	if err := json.Unmarshal([]byte(doc), &sj); err != nil {
		writeError(w, http.StatusInternalServerError, "Stored settings are corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, sj)
}

// UpdateSettings replaces the settings document.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var sj factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// A picked country with no explicit rate seeds from the preset table.
	if sj.Country != "" && sj.TaxRate == 0 {
		sj.TaxRate = loyalty.TaxRateForCountry(sj.Country)
	}

	// Round-trip through the engine type to apply clamps before storing.
	sj = factory.SettingsToJSON(factory.SettingsFromJSON(sj))

	doc, err := json.Marshal(sj)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize settings", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), string(doc)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, sj)
}

func (h *Handler) loadSettings(r *http.Request) engine.GlobalSettings {
	doc, err := h.Store.GetSettings(r.Context())
	if err != nil || doc == "" {
		return factory.SettingsFromJSON(defaultSettings())
	}
	var sj factory.SettingsJSON
	if err := json.Unmarshal([]byte(doc), &sj); err != nil {
		return factory.SettingsFromJSON(defaultSettings())
	}
	return factory.SettingsFromJSON(sj)
}

// =============================================================================
// PROGRAM HANDLERS
// =============================================================================

// ListPrograms returns all programs.
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPrograms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list programs", err)
		return
	}

	dtos := make([]ProgramDTO, 0, len(records))
	for _, rec := range records {
		dto, err := programDTO(rec)
		if err != nil {
			continue // Skip undecodable documents
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProgram returns a single program.
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get program", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Program not found", nil)
		return
	}

	dto, err := programDTO(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored program is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateProgram creates a program from a document body. The id is
// server-generated; any id in the body is ignored.
func (h *Handler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var pj factory.ProgramJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pj.ID = uuid.NewString()

	h.saveProgram(w, r, pj, http.StatusCreated)
}

// UpdateProgram replaces a program document.
func (h *Handler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetProgram(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get program", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Program not found", nil)
		return
	}

	var pj factory.ProgramJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pj.ID = id

	h.saveProgram(w, r, pj, http.StatusOK)
}

// saveProgram normalizes through the factory (applying migrations and
// defaults) and persists.
func (h *Handler) saveProgram(w http.ResponseWriter, r *http.Request, pj factory.ProgramJSON, status int) {
	program := factory.ProgramFromJSON(pj)
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
	writeJSON(w, status, ProgramDTO{ProgramJSON: factory.ProgramToJSON(program)})
}

// DeleteProgram deletes a program and every hotel referencing it.
func (h *Handler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete program", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Program not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOTEL HANDLERS
// =============================================================================

// ListHotels returns all candidate stays.
func (h *Handler) ListHotels(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListHotels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hotels", err)
		return
	}

	dtos := make([]HotelDTO, 0, len(records))
	for _, rec := range records {
		dto, err := hotelDTO(rec)
		if err != nil {
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHotel returns a single stay.
func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}

	dto, err := hotelDTO(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored hotel is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateHotel creates a stay. The referenced program must exist; this
// is the only referential check (tier ids degrade inside the engine).
func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var hj factory.HotelJSON
	if err := json.NewDecoder(r.Body).Decode(&hj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	hj.ID = uuid.NewString()

	program, err := h.Store.GetProgram(r.Context(), hj.ProgramID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check program", err)
		return
	}
	if program == nil {
		writeError(w, http.StatusBadRequest, "Referenced program does not exist", nil)
		return
	}

	h.saveHotel(w, r, hj, http.StatusCreated)
}

// UpdateHotel replaces a stay document. The program reference is NOT
// re-checked here: an edit may legitimately race a program delete, and
// the compare listing surfaces dangling references explicitly.
func (h *Handler) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get hotel", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}

	var hj factory.HotelJSON
	if err := json.NewDecoder(r.Body).Decode(&hj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	hj.ID = id

	h.saveHotel(w, r, hj, http.StatusOK)
}

func (h *Handler) saveHotel(w http.ResponseWriter, r *http.Request, hj factory.HotelJSON, status int) {
	hotel := factory.HotelFromJSON(hj)
	doc, err := factory.MarshalHotel(hotel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize hotel", err)
		return
	}

	rec := sqlite.HotelRecord{ID: hotel.ID, ProgramID: hotel.ProgramID, Name: hotel.Name, Doc: doc}
	if err := h.Store.SaveHotel(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save hotel", err)
		return
	}
	writeJSON(w, status, HotelDTO{HotelJSON: factory.HotelToJSON(hotel)})
}

// DeleteHotel deletes a stay.
func (h *Handler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete hotel", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Hotel not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VALUATION HANDLERS
// =============================================================================

// Compare values every persisted stay and returns them ranked by net
// cost ascending. Stays whose program reference dangles come last,
// flagged unresolved.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	programRecords, err := h.Store.ListPrograms(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list programs", err)
		return
	}
	hotelRecords, err := h.Store.ListHotels(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hotels", err)
		return
	}

	programs := make([]engine.Program, 0, len(programRecords))
	for _, rec := range programRecords {
		p, err := factory.ParseProgram(rec.Doc)
		if err != nil {
			continue
		}
		programs = append(programs, *p)
	}
	hotels := make([]engine.HotelOption, 0, len(hotelRecords))
	for _, rec := range hotelRecords {
		hotel, err := factory.ParseHotel(rec.Doc)
		if err != nil {
			continue
		}
		hotels = append(hotels, *hotel)
	}

	ranked := engine.Rank(h.loadSettings(r), programs, hotels, h.currentRates())

	dtos := make([]RankedStayDTO, len(ranked))
	for i, rs := range ranked {
		dtos[i] = toRankedStayDTO(rs)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Compute values an explicit draft without touching the store.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc := engine.ComputeHotel(
		factory.SettingsFromJSON(req.Settings),
		factory.ProgramFromJSON(req.Program),
		factory.HotelFromJSON(req.Hotel),
		h.currentRates(),
	)
	writeJSON(w, http.StatusOK, toCalcDTO(calc))
}

// =============================================================================
// RATES HANDLERS
// =============================================================================

// GetRates reports the current FX table and its age.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	fx := h.currentRates()
	if fx == nil {
		writeJSON(w, http.StatusOK, RatesDTO{Available: false})
		return
	}

	dto := RatesDTO{
		Available: true,
		Base:      string(fx.Base),
		Rates:     make(map[string]float64, len(fx.Rates)),
		UpdatedAt: formatTime(fx.UpdatedAt),
		AgeHours:  time.Since(fx.UpdatedAt).Hours(),
	}
	for code, rate := range fx.Rates {
		f, _ := rate.Float64()
		dto.Rates[string(code)] = f
	}
	writeJSON(w, http.StatusOK, dto)
}

// RefreshRates forces a fetch regardless of table age.
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	if h.Rates == nil {
		writeError(w, http.StatusServiceUnavailable, "Rate fetching is not configured", nil)
		return
	}
	if err := h.Rates.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Rate fetch failed", err)
		return
	}
	h.GetRates(w, r)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func programDTO(rec sqlite.ProgramRecord) (ProgramDTO, error) {
	var pj factory.ProgramJSON
	if err := json.Unmarshal([]byte(rec.Doc), &pj); err != nil {
		return ProgramDTO{}, err
	}
	return ProgramDTO{
		ProgramJSON: pj,
		CreatedAt:   formatTime(rec.CreatedAt),
		UpdatedAt:   formatTime(rec.UpdatedAt),
	}, nil
}

func hotelDTO(rec sqlite.HotelRecord) (HotelDTO, error) {
	var hj factory.HotelJSON
	if err := json.Unmarshal([]byte(rec.Doc), &hj); err != nil {
		return HotelDTO{}, err
	}
	return HotelDTO{
		HotelJSON: hj,
		CreatedAt: formatTime(rec.CreatedAt),
		UpdatedAt: formatTime(rec.UpdatedAt),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
