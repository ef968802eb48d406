package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", "test-session-secret", time.Hour, false)
}

func commitSignedIn(t *testing.T, sm *SessionManager) (*Session, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("user-1", "admin")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return sess, cookies[0]
}

func TestSessionRoundTripThroughSignedCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	sess, cookie := commitSignedIn(t, sm)
	require.Equal(t, sm.CookieValue(sess.ID), cookie.Value)
	require.NotEqual(t, sess.ID, cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, "user-1", loaded.User())
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	sess, cookie := commitSignedIn(t, sm)

	cases := map[string]string{
		"raw id":       sess.ID,
		"flipped sig":  cookie.Value[:len(cookie.Value)-1] + flip(cookie.Value[len(cookie.Value)-1]),
		"other secret": NewSessionManager(nil, "test_session", "other-secret", time.Hour, false).CookieValue(sess.ID),
		"missing sig":  sess.ID + ".",
		"empty":        "",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: value})
			loaded, err := sm.Load(context.Background(), req)
			require.NoError(t, err)
			require.NotEqual(t, sess.ID, loaded.ID)
			require.Empty(t, loaded.User())
		})
	}
}

func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}
