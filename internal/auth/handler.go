package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/platform/httpx"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

// DefaultRedirect is where a successful sign-in lands without a callback.
const DefaultRedirect = "/dashboard"

// PrivilegedSet reports whether a user id belongs to an administrator.
type PrivilegedSet interface {
	Contains(id int64) bool
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	messages       *i18n.Messages
	admins         PrivilegedSet
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance. admins may be nil.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, messages *i18n.Messages, admins PrivilegedSet) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		messages:       messages,
		admins:         admins,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.csrfToken)
	r.Post("/signin", h.handleSignIn)
	r.Post("/signout", h.handleSignOut)
}

type signInForm struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CallbackURL string `json:"callbackUrl"`
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var form signInForm
	if err := httpx.Decode(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if form.CallbackURL == "" {
		form.CallbackURL = r.URL.Query().Get("callbackUrl")
	}
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field())+": "+fe.Tag())
			}
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", strings.Join(fields, ", "))
			return
		}
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", h.messages.ForRequest(r, i18n.KeyInvalidCredentials))
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during sign-in")
		httpx.RespondError(w, errors.New("session missing"))
		return
	}
	sess.SignIn(strconv.FormatInt(user.ID, 10), user.Role)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	if h.admins != nil && h.admins.Contains(user.ID) {
		h.logger.Info("privileged sign-in", slog.Int64("user_id", user.ID), slog.String("role", user.Role), slog.String("ip", r.RemoteAddr))
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"redirect": safeRedirect(form.CallbackURL)})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if sess.User() != "" {
			if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
				h.logger.Warn("remove session", slog.Any("error", err))
			}
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeRedirect only honours local absolute paths.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultRedirect
	}
	return target
}
