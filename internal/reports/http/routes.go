package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the reporting endpoints onto the router. CSV exports
// share a per-IP limiter since each one recomputes a full report on miss.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/reports/advanced/data", h.handleData)
	r.Get("/reports/sales/history", h.handleSalesHistory)
	r.Get("/reports/cash/history", h.handleCashHistory)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/reports/advanced/export/rentabilidad.csv", h.handleProfitabilityCSV)
		gr.Get("/reports/advanced/export/ranking_cajeros.csv", h.handleCashierRankingCSV)
		gr.Get("/reports/advanced/export/serie_diaria.csv", h.handleDailySeriesCSV)
		gr.Get("/reports/advanced/export/comparacion_sucursal.csv", h.handleBranchComparisonCSV)
	})
}
