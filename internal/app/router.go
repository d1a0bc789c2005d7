package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-bms/meridian-bms/internal/auth"
	"github.com/meridian-bms/meridian-bms/internal/billing"
	"github.com/meridian-bms/meridian-bms/internal/crm/clients"
	"github.com/meridian-bms/meridian-bms/internal/hr/employees"
	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/journal"
	"github.com/meridian-bms/meridian-bms/internal/ledger/periods"
	"github.com/meridian-bms/meridian-bms/internal/ledger/reports"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/shared"
	"github.com/meridian-bms/meridian-bms/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler     *auth.Handler
	AccountsHandler *accounts.Handler
	SettingsHandler *settings.Handler
	PeriodsHandler  *periods.Handler
	JournalHandler  *journal.Handler
	ReportsHandler  *reports.Handler
	ClientsHandler  *clients.Handler
	EmployeeHandler *employees.Handler
	BillingHandler  *billing.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Route("/ledger", func(r chi.Router) {
			r.Route("/accounts", func(r chi.Router) { params.AccountsHandler.MountRoutes(r) })
			r.Route("/settings", func(r chi.Router) { params.SettingsHandler.MountRoutes(r) })
			r.Route("/periods", func(r chi.Router) { params.PeriodsHandler.MountRoutes(r) })
			r.Route("/journal", func(r chi.Router) { params.JournalHandler.MountRoutes(r) })
			r.Route("/reports", func(r chi.Router) { params.ReportsHandler.MountRoutes(r) })
		})

		r.Route("/crm/clients", func(r chi.Router) { params.ClientsHandler.MountRoutes(r) })
		r.Route("/hr/employees", func(r chi.Router) { params.EmployeeHandler.MountRoutes(r) })
		r.Route("/billing", func(r chi.Router) { params.BillingHandler.MountRoutes(r) })
		r.Route("/jobs", func(r chi.Router) { params.JobsHandler.MountRoutes(r) })
	})

	return r
}
