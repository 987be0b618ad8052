package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/nordvare/nordvare/internal/testing/guard"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("role", "admin")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)

	// Replay the cookie on a fresh request.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, "42", loaded.User())
	assert.Equal(t, "admin", loaded.Get("role"))

	// The stored payload carries exactly the values map and user id.
	raw, err := mr.Get("session:" + sess.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":{"role":"admin"},"user_id":"42"}`, raw)
}

func TestSessionDestroyClearsStateAndCookie(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, req, sess))

	assert.False(t, mr.Exists("session:"+sess.ID))
	cookies := rec2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "gone"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "gone", sess.ID)
	assert.Empty(t, sess.User())
}

func TestSessionTTLApplied(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("k", "v")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))

	assert.Equal(t, time.Hour, mr.TTL("session:"+sess.ID))
}
