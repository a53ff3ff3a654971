package httputil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/species?name=kiwi", nil)

	assert.Equal(t, "kiwi", ParseQueryString(req, "name", ""))
	assert.Equal(t, "fallback", ParseQueryString(req, "missing", "fallback"))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/species?limit=25", nil)

	val, err := ParseQueryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 25, val)

	val, err = ParseQueryInt(req, "offset", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, val)

	badReq := httptest.NewRequest(http.MethodGet, "/api/species?limit=abc", nil)
	_, err = ParseQueryInt(badReq, "limit", 50)
	assert.Error(t, err)
}

func TestParseQueryBool(t *testing.T) {
	tests := []struct {
		query      string
		defaultVal bool
		want       bool
	}{
		{"show_all=true", false, true},
		{"show_all=1", false, true},
		{"show_all=false", true, false},
		{"show_all=banana", false, false}, // malformed falls back to default
		{"", true, true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/search-suggestions?"+tt.query, nil)
		assert.Equal(t, tt.want, ParseQueryBool(req, "show_all", tt.defaultVal), tt.query)
	}
}

func TestFormValue(t *testing.T) {
	form := url.Values{}
	form.Set("email", "  user@example.com  ")

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, "user@example.com", FormValue(req, "email"))
	assert.Equal(t, "", FormValue(req, "missing"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	assert.Equal(t, "10.0.0.1:12345", ClientIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.5")
	assert.Equal(t, "192.168.1.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
