package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/so-keyldzn/simple-cms-sub001/internal/admins"
	audithttp "github.com/so-keyldzn/simple-cms-sub001/internal/audit/http"
	"github.com/so-keyldzn/simple-cms-sub001/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/observability"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/httpx"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
	"github.com/so-keyldzn/simple-cms-sub001/internal/users"
	"github.com/so-keyldzn/simple-cms-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	AuditHandler       *audithttp.Handler
	JobHandler         *jobs.Handler
	RBACMiddleware     rbac.Middleware
	Admins             *admins.Cache
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with CMS defaults.
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

	r.Use(chimw.Logger)
	r.Use(params.RBACMiddleware.Guard)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if params.Admins != nil {
			body["admin_cache"] = "fresh"
			if params.Admins.Stale(adminCacheMaxAge(params.Config)) {
				body["admin_cache"] = "stale"
			}
		}
		httpx.JSON(w, http.StatusOK, body)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := shared.PrincipalFromContext(r.Context())
		if userID == "" {
			http.Redirect(w, r, signInPath(params.Config), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, auth.DefaultRedirect, http.StatusSeeOther)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/api", params.PermissionsHandler.MountAPI)
		params.PermissionsHandler.MountPages(r)
	}
	if params.UsersHandler != nil {
		r.Route("/admin/users", params.UsersHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/admin/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/admin/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// NewRBACMiddleware builds the route guard from configuration.
func NewRBACMiddleware(cfg *Config, logger *slog.Logger, metrics *observability.Metrics, messages *i18n.Messages) rbac.Middleware {
	mw := rbac.Middleware{Logger: logger, Metrics: metrics, Messages: messages}
	if cfg != nil {
		mw.SignInPath = cfg.SignInPath
		mw.UnauthorizedPath = cfg.UnauthorizedPath
	}
	return mw
}

func signInPath(cfg *Config) string {
	if cfg == nil || cfg.SignInPath == "" {
		return rbac.DefaultSignInPath
	}
	return cfg.SignInPath
}

// adminCacheMaxAge tolerates two missed refresh ticks.
func adminCacheMaxAge(cfg *Config) time.Duration {
	if cfg == nil || cfg.AdminCacheRefresh <= 0 {
		return 3 * time.Minute
	}
	return 3 * cfg.AdminCacheRefresh
}
