package rbac

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/observability"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/httpx"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

const (
	// DefaultSignInPath receives anonymous visitors of protected pages.
	DefaultSignInPath = "/auth/signin"
	// DefaultUnauthorizedPath receives signed-in users lacking access.
	DefaultUnauthorizedPath = "/unauthorized"

	fallbackRule = "fallback"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger           *slog.Logger
	Metrics          *observability.Metrics
	Messages         *i18n.Messages
	SignInPath       string
	UnauthorizedPath string
}

// Protected reports whether the route guard applies to pathname.
func Protected(pathname string) bool {
	return pathname == "/admin" ||
		strings.HasPrefix(pathname, "/admin/") ||
		strings.HasPrefix(pathname, "/dashboard")
}

// Guard redirects requests for protected pages. Anonymous visitors go to the
// sign-in page with a callback; signed-in users without access go to the
// unauthorized page. Admin paths missing from the route table are open to
// AdminRoles only.
func (m Middleware) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathname := r.URL.Path
		if !Protected(pathname) {
			next.ServeHTTP(w, r)
			return
		}

		userID, assignment := shared.PrincipalFromContext(r.Context())
		ruleName := fallbackRule
		rule, matched := RuleFor(pathname)
		if matched {
			ruleName = rule.Prefix
		}

		if userID == "" {
			m.Metrics.RecordDecision(ruleName, observability.DecisionUnauthenticated)
			http.Redirect(w, r, m.signInURL(r), http.StatusFound)
			return
		}

		var allowed bool
		if matched {
			allowed = HasRouteAccess(assignment, pathname)
		} else {
			allowed = HasRole(assignment, AdminRoles...)
		}

		if !allowed {
			m.Metrics.RecordDecision(ruleName, observability.DecisionDenied)
			if m.Logger != nil {
				m.Logger.Warn("rbac route denied",
					slog.String("path", pathname),
					slog.String("rule", ruleName),
					slog.String("user_id", userID),
					slog.String("role", assignment))
			}
			http.Redirect(w, r, m.unauthorizedPath(), http.StatusFound)
			return
		}

		m.Metrics.RecordDecision(ruleName, observability.DecisionAllowed)
		if m.Logger != nil {
			m.Logger.Debug("rbac route allowed", slog.String("path", pathname), slog.String("rule", ruleName), slog.String("user_id", userID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user holds at least one of caps. Failures
// are answered with problem documents instead of redirects.
func (m Middleware) RequireAny(caps ...Capability) func(http.Handler) http.Handler {
	return m.require("rbac require any", caps, HasAnyPermission)
}

// RequireAll ensures the current user holds every one of caps.
func (m Middleware) RequireAll(caps ...Capability) func(http.Handler) http.Handler {
	return m.require("rbac require all", caps, HasAllPermissions)
}

func (m Middleware) require(op string, caps []Capability, check func(string, ...Capability) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(caps) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, assignment := shared.PrincipalFromContext(r.Context())
			if userID == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", m.Messages.ForRequest(r, i18n.KeyUnauthenticated))
				return
			}
			if check(assignment, caps...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn(op, slog.String("user_id", userID), slog.String("role", assignment), slog.Any("required", caps))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", m.Messages.ForRequest(r, i18n.KeyForbidden))
		})
	}
}

func (m Middleware) signInURL(r *http.Request) string {
	path := m.SignInPath
	if path == "" {
		path = DefaultSignInPath
	}
	return path + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
}

func (m Middleware) unauthorizedPath() string {
	if m.UnauthorizedPath == "" {
		return DefaultUnauthorizedPath
	}
	return m.UnauthorizedPath
}
