package users

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/httpx"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.CanManageUsers))
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Put("/{id}/role", h.changeRole)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in CreateUserInput
	if err := h.decode(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), actorFrom(r), in)
	if err != nil {
		h.fail(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid user id", httpx.ErrValidation))
		return
	}
	var in ChangeRoleInput
	if err := h.decode(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.ChangeRole(r.Context(), actorFrom(r), id, in.Role)
	if err != nil {
		h.fail(w, "change role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.Decode(r, target); err != nil {
		return err
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

// fail maps domain errors onto the httpx sentinels.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnknownRole), errors.Is(err, rbac.ErrEmptyAssignment):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, ErrSuperAdminRequired):
		err = fmt.Errorf("%w: %v", httpx.ErrForbidden, err)
	case errors.Is(err, ErrLastSuperAdmin):
		err = fmt.Errorf("%w: %v", httpx.ErrConflict, err)
	case errors.Is(err, shared.ErrNotFound):
		err = fmt.Errorf("%w: user", httpx.ErrNotFound)
	case errors.Is(err, shared.ErrDuplicate):
		err = fmt.Errorf("%w: %v", httpx.ErrDuplicate, err)
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func actorFrom(r *http.Request) Actor {
	userID, assignment := shared.PrincipalFromContext(r.Context())
	id, _ := strconv.ParseInt(userID, 10, 64)
	return Actor{ID: id, Assignment: assignment}
}
