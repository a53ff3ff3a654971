package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "token1", "user@example.com"))

	email, err := s.Get(ctx, "token1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	_, err = s.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Delete(ctx, "token1"))
	_, err = s.Get(ctx, "token1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "token1", "user@example.com"))

	email, err := s.Get(ctx, "token1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	_, err = s.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNoSession)

	// Sessions expire with their TTL
	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "token1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_IssueAndCurrent(t *testing.T) {
	m := NewManager(NewMemorySessionStore(10, time.Minute), "wildlife_session", time.Minute)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	token, err := m.Issue(ctx, rec, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "wildlife_session", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	email, err := m.Current(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestManager_CurrentWithoutCookie(t *testing.T) {
	m := NewManager(NewMemorySessionStore(10, time.Minute), "wildlife_session", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Current(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Clear(t *testing.T) {
	m := NewManager(NewMemorySessionStore(10, time.Minute), "wildlife_session", time.Minute)
	ctx := context.Background()

	issueRec := httptest.NewRecorder()
	_, err := m.Issue(ctx, issueRec, "user@example.com")
	require.NoError(t, err)
	sessionCookie := issueRec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(sessionCookie)

	clearRec := httptest.NewRecorder()
	require.NoError(t, m.Clear(ctx, clearRec, req))

	// Cookie is expired and the stored session is gone
	cleared := clearRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	_, err = m.Current(ctx, req)
	assert.ErrorIs(t, err, ErrNoSession)
}
