// Package http assembles the service's router.
package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"strafenkasse-service/internal/http/handlers"
)

// NewRouter registers all routes. Mutating routes sit behind the admin token
// guard; read routes stay open.
func NewRouter(h *handlers.Handler, adminToken string, logger *slog.Logger) nethttp.Handler {
	admin := handlers.RequireAdmin(adminToken, logger)

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.ListCatalog)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.AddCatalogType)
			r.Delete("/{name}", h.RemoveCatalogType)
		})
	})

	r.Route("/penalties", func(r chi.Router) {
		r.Get("/balances", h.Balances)
		r.Get("/export", h.ExportCSV)
		r.Get("/players/{name}", h.PlayerRecords)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.AssessPenalty)
			r.Post("/players/{name}/paid", h.MarkPaid)
		})
	})

	r.With(admin).Post("/sync", h.TriggerSync)
	r.Get("/spond/groups", h.Groups)

	return r
}
