package search

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/korimako/wildlife/pkg/httputil"
)

// Handler serves the autocomplete API
type Handler struct {
	service *Service
}

// NewHandler creates a search API handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the search API routes on a router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/search-suggestions", h.handleSuggestions).Methods(http.MethodGet)
}

// SuggestionsHandler returns the suggestions endpoint as a bare handler so
// callers can wrap it in extra middleware before mounting
func (h *Handler) SuggestionsHandler() http.Handler {
	return http.HandlerFunc(h.handleSuggestions)
}

// SuggestionsResponse is the autocomplete endpoint payload
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// handleSuggestions serves GET /api/search-suggestions?q=<query>&show_all=<bool>.
// Missing or malformed parameters are normalized, never rejected, and the
// response is always a suggestions array, empty on no matches or store failure.
func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := httputil.ParseQueryString(r, "q", "")
	showAll := httputil.ParseQueryBool(r, "show_all", false)

	suggestions := h.service.Suggestions(r.Context(), query, showAll)
	if suggestions == nil {
		suggestions = []Suggestion{}
	}

	httputil.WriteSuccess(w, SuggestionsResponse{Suggestions: suggestions})
}
