package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/so-keyldzn/simple-cms-sub001/internal/admins"
	"github.com/so-keyldzn/simple-cms-sub001/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/observability"
	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
	_ "github.com/so-keyldzn/simple-cms-sub001/testing"
)

type authRepo struct {
	users map[string]*auth.User
}

func (a *authRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := a.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (a *authRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (a *authRepo) DeleteSession(ctx context.Context, id string) error { return nil }

type adminSource []int64

func (s adminSource) ListPrivilegedIDs(ctx context.Context) ([]int64, error) { return s, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &Config{AppEnv: "test", SignInPath: "/auth/signin", UnauthorizedPath: "/unauthorized", RateLimitPerMinute: 1000, AdminCacheRefresh: time.Minute}
	sessions := shared.NewSessionManager(client, "cms_session", "test-session-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf")
	messages := i18n.New()
	metrics := observability.NewMetrics()
	guard := NewRBACMiddleware(cfg, nil, metrics, messages)

	hash, err := bcrypt.GenerateFromPassword([]byte("editorpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authRepo{users: map[string]*auth.User{
		"editor@example.com": {ID: 2, Email: "editor@example.com", PasswordHash: string(hash), Role: "editor", IsActive: true},
		"user@example.com":   {ID: 3, Email: "user@example.com", PasswordHash: string(hash), Role: "user", IsActive: true},
	}}
	cache := admins.NewCache(adminSource{1}, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	return NewRouter(RouterParams{
		Logger:             NewLogger(cfg),
		Config:             cfg,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		AuthHandler:        auth.NewHandler(nil, auth.NewService(repo), sessions, csrf, messages, cache),
		PermissionsHandler: rbac.NewPermissionsHandler(nil, messages, guard),
		RBACMiddleware:     guard,
		Admins:             cache,
		Metrics:            metrics,
	})
}

// browser keeps the session cookie between requests.
type browser struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rr := httptest.NewRecorder()
	b.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.Name == "cms_session" {
			b.cookie = c
		}
	}
	return rr
}

func (b *browser) signIn(email, password string) *httptest.ResponseRecorder {
	rr := b.do(httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(b.t, http.StatusOK, rr.Code)
	var token map[string]string
	require.NoError(b.t, json.NewDecoder(rr.Body).Decode(&token))

	req := httptest.NewRequest(http.MethodPost, "/auth/signin",
		strings.NewReader(`{"email":"`+email+`","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shared.CSRFHeader, token["csrf_token"])
	return b.do(req)
}

func TestHealthz(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t)}
	rr := b.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","admin_cache":"fresh"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestAnonymousAdminRedirectsToSignIn(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t)}
	rr := b.do(httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fadmin%2Fposts", rr.Header().Get("Location"))
}

func TestSignInRequiresCSRF(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t)}
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"editor@example.com","password":"editorpass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := b.do(req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSignedInEditorFlow(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t)}
	rr := b.signIn("editor@example.com", "editorpass")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = b.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = b.do(httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
	assert.NotEqual(t, http.StatusFound, rr.Code)

	rr = b.do(httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/unauthorized", rr.Header().Get("Location"))

	rr = b.do(httptest.NewRequest(http.MethodGet, "/api/me/permissions", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"canPublishPosts":true`)
}

func TestSignedInUserDenied(t *testing.T) {
	b := &browser{t: t, router: newTestRouter(t)}
	require.Equal(t, http.StatusOK, b.signIn("user@example.com", "editorpass").Code)

	rr := b.do(httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/unauthorized", rr.Header().Get("Location"))

	rr = b.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, "/unauthorized", rr.Header().Get("Location"))
}
