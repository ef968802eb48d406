package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/httpx"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

// PermissionsHandler exposes the permission layer to signed-in users.
type PermissionsHandler struct {
	logger   *slog.Logger
	messages *i18n.Messages
	rbac     Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, messages *i18n.Messages, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, messages: messages, rbac: rbac}
}

// MountAPI registers the JSON permission endpoints under an /api router.
func (h *PermissionsHandler) MountAPI(r chi.Router) {
	r.Get("/me/permissions", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(CanManageRoles))
		r.Get("/permissions/matrix", h.matrix)
	})
}

// MountPages registers the guarded landing pages and the unauthorized page.
// The caller is expected to apply Middleware.Guard to the router.
func (h *PermissionsHandler) MountPages(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/admin", h.adminHome)
	r.Get("/unauthorized", h.unauthorized)
}

type permissionsResponse struct {
	UserID       string              `json:"user_id"`
	Role         string              `json:"role"`
	Roles        []Role              `json:"roles"`
	Capabilities map[Capability]bool `json:"capabilities"`
}

type dashboardResponse struct {
	permissionsResponse
	Navigation []NavItem `json:"navigation"`
}

type matrixResponse struct {
	Roles        []Role                       `json:"roles"`
	Capabilities []Capability                 `json:"capabilities"`
	Matrix       map[Role]map[Capability]bool `json:"matrix"`
	Routes       []RouteRule                  `json:"routes"`
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	userID, assignment := shared.PrincipalFromContext(r.Context())
	if userID == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", h.messages.ForRequest(r, i18n.KeyUnauthenticated))
		return
	}
	httpx.JSON(w, http.StatusOK, describe(userID, assignment))
}

func (h *PermissionsHandler) matrix(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, matrixResponse{
		Roles:        Roles(),
		Capabilities: Capabilities(),
		Matrix:       Matrix(),
		Routes:       RouteRules(),
	})
}

func (h *PermissionsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, assignment := shared.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		permissionsResponse: describe(userID, assignment),
		Navigation:          Navigation(assignment),
	})
}

func (h *PermissionsHandler) adminHome(w http.ResponseWriter, r *http.Request) {
	_, assignment := shared.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"navigation": Navigation(assignment)})
}

func (h *PermissionsHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	httpx.Problem(w, http.StatusForbidden, "Forbidden", h.messages.ForRequest(r, i18n.KeyUnauthorized))
}

// describe evaluates every capability against the raw assignment so the
// response agrees with the route guard.
func describe(userID, assignment string) permissionsResponse {
	caps := make(map[Capability]bool, len(capabilities))
	for _, c := range capabilities {
		caps[c] = HasPermission(assignment, c)
	}
	roles := RolesOf(assignment)
	if roles == nil {
		roles = []Role{}
	}
	return permissionsResponse{UserID: userID, Role: assignment, Roles: roles, Capabilities: caps}
}
