package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/so-keyldzn/simple-cms-sub001/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub001/internal/i18n"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
	_ "github.com/so-keyldzn/simple-cms-sub001/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubAdmins map[int64]bool

func (s stubAdmins) Contains(id int64) bool { return s[id] }

func newUser(t *testing.T, active bool) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{ID: 7, Email: "editor@test.local", PasswordHash: string(hashed), Role: "editor,author", IsActive: active}
}

type fixture struct {
	router   http.Handler
	sessions *shared.SessionManager
	current  *shared.Session
}

func newFixture(t *testing.T, repo auth.Repository) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "test-session-secret", time.Hour, false)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, shared.NewCSRFManager("csrfsecret"), i18n.New(), stubAdmins{7: true})

	f := &fixture{sessions: sessionManager}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			require.NoError(t, err)
			f.current = sess
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/auth", handler.MountRoutes)
	f.router = r
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestCSRFTokenIssued(t *testing.T) {
	f := newFixture(t, &stubRepo{})

	rr := f.do(httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.NotEmpty(t, body["csrf_token"])
	assert.Equal(t, body["csrf_token"], f.current.Get(shared.CSRFSessionKey))
}

func TestSignInSuccess(t *testing.T) {
	repo := &stubRepo{user: newUser(t, true)}
	f := newFixture(t, repo)

	payload := `{"email":"editor@test.local","password":"correctpass","callbackUrl":"/admin/posts"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "/admin/posts", body["redirect"])
	assert.Equal(t, "7", f.current.User())
	assert.Equal(t, "editor,author", f.current.Role())
	assert.Equal(t, int64(7), repo.sessions[f.current.ID])
}

func TestSignInFormDefaultsRedirect(t *testing.T) {
	f := newFixture(t, &stubRepo{user: newUser(t, true)})

	form := url.Values{}
	form.Set("email", "editor@test.local")
	form.Set("password", "correctpass")
	form.Set("csrf_token", "ignored-here")
	form.Set("callbackUrl", "//evil.example")
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := f.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"redirect":"/dashboard"`)
}

func TestSignInInvalidCredentials(t *testing.T) {
	cases := map[string]*auth.User{
		"wrong password": newUser(t, true),
		"inactive":       newUser(t, false),
		"unknown":        nil,
	}
	for name, user := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, &stubRepo{user: user})
			password := "correctpass"
			if name == "wrong password" {
				password = "wrongpass"
			}
			req := httptest.NewRequest(http.MethodPost, "/auth/signin",
				strings.NewReader(`{"email":"editor@test.local","password":"`+password+`"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept-Language", "en")
			rr := f.do(req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), "Invalid email or password.")
			assert.Empty(t, f.current.User())
		})
	}
}

func TestSignInValidation(t *testing.T) {
	f := newFixture(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"not-an-email","password":""}`))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email: email")
	assert.Contains(t, rr.Body.String(), "password: required")
}

func TestSignOutDestroysSession(t *testing.T) {
	repo := &stubRepo{user: newUser(t, true)}
	f := newFixture(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"editor@test.local","password":"correctpass"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, f.do(req).Code)

	signedIn := f.current
	rr := httptest.NewRecorder()
	require.NoError(t, f.sessions.Commit(context.Background(), rr, signedIn))

	out := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	out.AddCookie(&http.Cookie{Name: f.sessions.CookieName(), Value: f.sessions.CookieValue(signedIn.ID)})
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, out)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "7", f.current.User())
	assert.Empty(t, repo.sessions)

	require.NoError(t, f.sessions.Commit(context.Background(), res, f.current))
	again := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	again.AddCookie(&http.Cookie{Name: f.sessions.CookieName(), Value: f.sessions.CookieValue(signedIn.ID)})
	f.do(again)
	assert.Empty(t, f.current.User())
}
