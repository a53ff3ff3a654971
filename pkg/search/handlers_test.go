package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, seed bool) *mux.Router {
	t.Helper()

	svc, st := newTestService(t)
	if seed {
		seedCatalogue(t, st)
	}

	router := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(router)
	return router
}

func getSuggestions(t *testing.T, router *mux.Router, url string) (int, SuggestionsResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body SuggestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleSuggestions_Query(t *testing.T) {
	router := newTestRouter(t, true)

	code, body := getSuggestions(t, router, "/api/search-suggestions?q=kiwi")
	assert.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body.Suggestions)
	assert.Equal(t, "Kiwi", body.Suggestions[0].Text)
	assert.Equal(t, "Bird - Apterygidae", body.Suggestions[0].Type)
}

func TestHandleSuggestions_NoMatches(t *testing.T) {
	router := newTestRouter(t, true)

	code, body := getSuggestions(t, router, "/api/search-suggestions?q=zzzznotfound")
	assert.Equal(t, http.StatusOK, code)
	assert.NotNil(t, body.Suggestions)
	assert.Empty(t, body.Suggestions)
}

func TestHandleSuggestions_ShowAll(t *testing.T) {
	router := newTestRouter(t, true)

	code, body := getSuggestions(t, router, "/api/search-suggestions?show_all=true")
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body.Suggestions)
}

func TestHandleSuggestions_MalformedShowAll(t *testing.T) {
	router := newTestRouter(t, true)

	// Malformed booleans are normalized, never rejected
	code, _ := getSuggestions(t, router, "/api/search-suggestions?q=kiwi&show_all=banana")
	assert.Equal(t, http.StatusOK, code)
}

func TestHandleSuggestions_EmptyStore(t *testing.T) {
	router := newTestRouter(t, false)

	code, body := getSuggestions(t, router, "/api/search-suggestions?q=kiwi")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Suggestions)
}
