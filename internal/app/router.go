package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukapos/dukapos/internal/cashiers"
	"github.com/dukapos/dukapos/internal/catalog"
	"github.com/dukapos/dukapos/internal/credits"
	"github.com/dukapos/dukapos/internal/expenses"
	"github.com/dukapos/dukapos/internal/observability"
	"github.com/dukapos/dukapos/internal/receipts"
	"github.com/dukapos/dukapos/internal/reports"
	"github.com/dukapos/dukapos/internal/sales"
	"github.com/dukapos/dukapos/internal/shops"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config  *Config
	Metrics *observability.Metrics
	Pool    *pgxpool.Pool

	CatalogHandler  *catalog.Handler
	SalesHandler    *sales.Handler
	ShopsHandler    *shops.Handler
	CashiersHandler *cashiers.Handler
	ExpensesHandler *expenses.Handler
	CreditsHandler  *credits.Handler
	ReportsHandler  *reports.Handler
	ReceiptsHandler *receipts.Handler
}

// NewRouter assembles the chi router with the standard middleware stack, the
// health and metrics endpoints, and every module's API routes under /api/v1.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(api)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.MountRoutes(api)
		}
		if params.ShopsHandler != nil {
			params.ShopsHandler.MountRoutes(api)
		}
		if params.CashiersHandler != nil {
			params.CashiersHandler.MountRoutes(api)
		}
		if params.ExpensesHandler != nil {
			params.ExpensesHandler.MountRoutes(api)
		}
		if params.CreditsHandler != nil {
			params.CreditsHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
		if params.ReceiptsHandler != nil {
			params.ReceiptsHandler.MountRoutes(api)
		}
	})

	return r
}
