package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/contextkeys"
	"github.com/korimako/wildlife/pkg/observability"
)

func newSessionSetup(t *testing.T) (*auth.Manager, *SessionMiddleware) {
	t.Helper()

	manager := auth.NewManager(auth.NewMemorySessionStore(10, time.Minute), "wildlife_session", time.Minute)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return manager, NewSessionMiddleware(manager, logger)
}

func TestSessionMiddleware_ResolvesUser(t *testing.T) {
	manager, mw := newSessionSetup(t)

	issueRec := httptest.NewRecorder()
	_, err := manager.Issue(context.Background(), issueRec, "user@example.com")
	require.NoError(t, err)

	var captured string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = contextkeys.GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issueRec.Result().Cookies()[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user@example.com", captured)
}

func TestSessionMiddleware_AnonymousPassesThrough(t *testing.T) {
	_, mw := newSessionSetup(t)

	var captured string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = contextkeys.GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, captured)
}

func TestSessionMiddleware_StaleCookiePassesThrough(t *testing.T) {
	_, mw := newSessionSetup(t)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, contextkeys.GetUser(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "wildlife_session", Value: "expired-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
