package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korimako/wildlife/pkg/auth"
	"github.com/korimako/wildlife/pkg/middleware"
	"github.com/korimako/wildlife/pkg/observability"
	"github.com/korimako/wildlife/pkg/search"
	"github.com/korimako/wildlife/pkg/store"

	_ "github.com/mattn/go-sqlite3"
)

type testServer struct {
	handler http.Handler
	store   *store.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := store.DefaultConfig()
	cfg.SQLitePath = ":memory:"
	st, err := store.OpenSQLite(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	searchService := search.NewService(st, logger, metrics)
	sessions := auth.NewManager(auth.NewMemorySessionStore(100, time.Hour), "wildlife_session", time.Hour)

	server := NewServer(st, searchService, sessions, logger, metrics)
	sessionMW := middleware.NewSessionMiddleware(sessions, logger)

	return &testServer{
		handler: server.Handler(sessionMW),
		store:   st,
	}
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	records := []store.Species{
		{SpeciesName: "Kiwi", ScientificName: "Apteryx", SpeciesType: "Bird", Family: "Apterygidae", Status: "Vulnerable", OriginStatus: "Endemic"},
		{SpeciesName: "Kea", ScientificName: "Nestor notabilis", SpeciesType: "Bird", Family: "Nestoridae", OriginStatus: "Endemic"},
		{SpeciesName: "Tuatara", ScientificName: "Sphenodon punctatus", SpeciesType: "Reptile", Family: "Sphenodontidae", OriginStatus: "Native", Status: "At Risk"},
	}
	for i := range records {
		_, err := ts.store.InsertSpecies(ctx, &records[i])
		require.NoError(t, err)
	}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHomePage(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kiwi")
	assert.Contains(t, rec.Body.String(), "Apteryx")
}

func TestHomePage_Legend(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Catalogue Legend")
	assert.Contains(t, body, "Origin Status")
	assert.Contains(t, body, "Conservation Status")

	// Lookup lists are deduplicated and sorted
	assert.Contains(t, body, "Endemic, Native")
	assert.Contains(t, body, "Bird, Reptile")
	assert.Contains(t, body, "At Risk, Vulnerable")
}

func TestSpeciesPage_Search(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/species?name=kiwi")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Kiwi")
	assert.Contains(t, body, "Species Name")
	assert.NotContains(t, body, "Tuatara")
}

func TestSpeciesPage_MatchedFieldLabel(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/species?name=reptile")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Species Type")
	assert.Contains(t, rec.Body.String(), "Tuatara")
}

func TestSpeciesPage_NoQueryListsAll(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/species")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kiwi")
	assert.Contains(t, rec.Body.String(), "Tuatara")
}

func TestSpeciesAPI(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/api/species")
	assert.Equal(t, http.StatusOK, rec.Code)

	var records []store.Species
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 3)
}

func TestSuggestionsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.get(t, "/api/search-suggestions?q=kiwi")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body search.SuggestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Suggestions)
	assert.Equal(t, "Kiwi", body.Suggestions[0].Text)
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postForm(t, "/register", url.Values{
		"email":            {"user@example.com"},
		"password":         {"secretpassword"},
		"confirm_password": {"secretpassword"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = ts.postForm(t, "/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"secretpassword"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Session cookie identifies the user on subsequent pages
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	pageRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(pageRec, req)
	assert.Contains(t, pageRec.Body.String(), "user@example.com")

	logoutReq := httptest.NewRequest(http.MethodGet, "/logout", nil)
	logoutReq.AddCookie(cookies[0])
	logoutRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(logoutRec, logoutReq)
	assert.Equal(t, http.StatusSeeOther, logoutRec.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad email", url.Values{"email": {"nope"}, "password": {"secretpassword"}, "confirm_password": {"secretpassword"}}},
		{"short password", url.Values{"email": {"user@example.com"}, "password": {"short"}, "confirm_password": {"short"}}},
		{"mismatch", url.Values{"email": {"user@example.com"}, "password": {"secretpassword"}, "confirm_password": {"different"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postForm(t, "/register", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"email":            {"user@example.com"},
		"password":         {"secretpassword"},
		"confirm_password": {"secretpassword"},
	}
	require.Equal(t, http.StatusSeeOther, ts.postForm(t, "/register", form).Code)

	rec := ts.postForm(t, "/register", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusSeeOther, ts.postForm(t, "/register", url.Values{
		"email":            {"user@example.com"},
		"password":         {"secretpassword"},
		"confirm_password": {"secretpassword"},
	}).Code)

	rec := ts.postForm(t, "/login", url.Values{
		"email":    {"user@example.com"},
		"password": {"wrongpassword"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaticPages(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/about", "/favourites"} {
		rec := ts.get(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRateLimitOption(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.SQLitePath = ":memory:"
	st, err := store.OpenSQLite(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	searchService := search.NewService(st, logger, metrics)
	sessions := auth.NewManager(auth.NewMemorySessionStore(100, time.Hour), "wildlife_session", time.Hour)

	limiter := middleware.NewRateLimitMiddleware(&middleware.RateLimitConfig{
		RequestsPerWindow: 1,
		WindowDuration:    time.Minute,
	})
	server := NewServer(st, searchService, sessions, logger, metrics, WithRateLimit(limiter.Handler))
	handler := server.Handler(middleware.NewSessionMiddleware(sessions, logger))

	req := httptest.NewRequest(http.MethodGet, "/api/search-suggestions?q=kiwi", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Pages are not rate limited
	rec = httptest.NewRecorder()
	pageReq := httptest.NewRequest(http.MethodGet, "/about", nil)
	pageReq.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, pageReq)
	assert.Equal(t, http.StatusOK, rec.Code)
}
