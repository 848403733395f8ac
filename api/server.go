/*
server.go - HTTP router configuration

PURPOSE:
  Wires the handlers into a chi router with standard middleware and
  CORS for browser clients.

SEE ALSO:
  - handlers.go: The handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the API route tree.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Route("/programs", func(r chi.Router) {
			r.Get("/", h.ListPrograms)
			r.Post("/", h.CreateProgram)
			r.Get("/{id}", h.GetProgram)
			r.Put("/{id}", h.UpdateProgram)
			r.Delete("/{id}", h.DeleteProgram)
		})

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.ListHotels)
			r.Post("/", h.CreateHotel)
			r.Get("/{id}", h.GetHotel)
			r.Put("/{id}", h.UpdateHotel)
			r.Delete("/{id}", h.DeleteHotel)
		})

		r.Get("/compare", h.Compare)
		r.Post("/compute", h.Compute)

		r.Get("/rates", h.GetRates)
		r.Post("/rates/refresh", h.RefreshRates)

		r.Get("/presets", h.ListPresets)
		r.Post("/presets/load", h.LoadPreset)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
