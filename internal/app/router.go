package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentfold/rentfold/internal/access"
	"github.com/rentfold/rentfold/internal/auth"
	"github.com/rentfold/rentfold/internal/billing"
	"github.com/rentfold/rentfold/internal/branding"
	"github.com/rentfold/rentfold/internal/leases"
	"github.com/rentfold/rentfold/internal/observability"
	"github.com/rentfold/rentfold/internal/portal"
	"github.com/rentfold/rentfold/internal/properties"
	"github.com/rentfold/rentfold/internal/shared"
	"github.com/rentfold/rentfold/internal/templates"
	"github.com/rentfold/rentfold/internal/tenants"
	"github.com/rentfold/rentfold/internal/tickets"
	"github.com/rentfold/rentfold/internal/users"
	"github.com/rentfold/rentfold/jobs"
	"github.com/rentfold/rentfold/report"
	"github.com/rentfold/rentfold/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          access.Guard

	AuthHandler       *auth.Handler
	AccessHandler     *access.Handler
	PropertiesHandler *properties.Handler
	TenantsHandler    *tenants.Handler
	LeasesHandler     *leases.Handler
	BillingHandler    *billing.Handler
	TicketsHandler    *tickets.Handler
	TemplatesHandler  *templates.Handler
	BrandingHandler   *branding.Handler
	PortalHandler     *portal.Handler
	UsersHandler      *users.Handler
	ReportHandler     *report.Handler
	JobsHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Rentfold defaults. The API mirrors
// the SPA's three authorization namespaces: operator modules sit directly
// under /api, the tenant portal under /api/tenant, administration under
// /api/admin. The guard middleware authorizes all three.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/access", func(r chi.Router) {
		params.AccessHandler.MountRoutes(r)
		params.UsersHandler.MountImpersonationExit(r)
	})

	// Legacy bookmarks redirect permanently to their canonical views.
	access.MountAliases(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.Guard.Protect())

		r.Route("/properties", params.PropertiesHandler.MountRoutes)
		r.Route("/tenants", params.TenantsHandler.MountRoutes)
		r.Route("/leases", params.LeasesHandler.MountRoutes)
		r.Route("/billing", params.BillingHandler.MountRoutes)
		r.Route("/tickets", params.TicketsHandler.MountRoutes)
		r.Route("/templates", params.TemplatesHandler.MountRoutes)
		r.Route("/branding", params.BrandingHandler.MountRoutes)

		r.Route("/tenant", params.PortalHandler.MountRoutes)
		r.Route("/admin", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r)
			if params.ReportHandler != nil {
				r.Route("/documents", params.ReportHandler.MountRoutes)
			}
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	mountSPA(r, params)

	return r
}

// mountSPA serves the embedded single-page application. Full page loads run
// through the same guard decision table so a direct browser navigation lands
// in the right namespace before the client router even boots.
func mountSPA(r chi.Router, params RouterParams) {
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
		return
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	shell := func(w http.ResponseWriter, req *http.Request) {
		decision := access.Decide(req.URL.Path, params.Guard.SnapshotFromRequest(req))
		if target := decision.Target(); target != "" {
			http.Redirect(w, req, target, http.StatusSeeOther)
			return
		}
		req.URL.Path = "/"
		http.FileServer(http.FS(staticFS)).ServeHTTP(w, req)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		shell(w, req)
	})
	r.Get("/", shell)
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
