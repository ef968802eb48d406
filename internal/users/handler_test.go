package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
	_ "github.com/so-keyldzn/simple-cms-sub001/testing"
)

func newUsersRouter(t *testing.T, repo *mockRepository, userID, assignment string) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := shared.NewSessionManager(client, "test_session", "test-session-secret", time.Hour, false)

	svc, _, _, _ := newTestService(repo)
	handler := NewHandler(nil, svc, rbac.Middleware{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(context.Background(), req)
			require.NoError(t, err)
			if userID != "" {
				sess.SignIn(userID, assignment)
			}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/admin/users", handler.MountRoutes)
	return r
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandlerRequiresManageUsers(t *testing.T) {
	router := newUsersRouter(t, newMockRepository(), "5", "editor")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandlerListAndCreate(t *testing.T) {
	repo := newMockRepository(User{ID: 1, Email: "root@example.com", Role: "super-admin", IsActive: true})
	router := newUsersRouter(t, repo, "1", "super-admin")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, jsonRequest(http.MethodPost, "/admin/users", `{"email":"new@example.com","name":"New","password":"short"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, jsonRequest(http.MethodPost, "/admin/users", `{"email":"new@example.com","name":"New","password":"longenough"}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "user", created.Role)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Users []User `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list.Users, 2)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestHandlerChangeRoleStatuses(t *testing.T) {
	cases := []struct {
		name   string
		actor  string
		target string
		body   string
		want   int
	}{
		{"canonicalises", "super-admin", "2", `{"role":"author, editor"}`, http.StatusOK},
		{"unknown role", "super-admin", "2", `{"role":"owner"}`, http.StatusBadRequest},
		{"missing role", "super-admin", "2", `{}`, http.StatusBadRequest},
		{"bad id", "super-admin", "abc", `{"role":"author"}`, http.StatusBadRequest},
		{"missing user", "super-admin", "99", `{"role":"author"}`, http.StatusNotFound},
		{"admin cannot grant super-admin", "admin", "2", `{"role":"super-admin"}`, http.StatusForbidden},
		{"last super-admin", "super-admin", "1", `{"role":"admin"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepository(
				User{ID: 1, Role: "super-admin", IsActive: true},
				User{ID: 2, Role: "user", IsActive: true},
			)
			router := newUsersRouter(t, repo, "1", tc.actor)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, jsonRequest(http.MethodPut, "/admin/users/"+tc.target+"/role", tc.body))
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
			if tc.want == http.StatusOK {
				assert.Equal(t, "editor,author", repo.users[2].Role)
			}
		})
	}
}
