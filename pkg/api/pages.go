package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/korimako/wildlife/pkg/contextkeys"
	"github.com/korimako/wildlife/pkg/httputil"
	"github.com/korimako/wildlife/pkg/search"
	"github.com/korimako/wildlife/pkg/store"
)

// pageData is the base payload every template receives
type pageData struct {
	Title string
	User  string
}

// render executes a template, falling back to a plain 500 on failure
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.WithError(err).Errorf("failed to render template %s", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) basePage(r *http.Request, title string) pageData {
	return pageData{
		Title: title,
		User:  contextkeys.GetUser(r.Context()),
	}
}

type homeData struct {
	pageData
	Species        []store.Species
	OriginStatuses []string
	SpeciesTypes   []string
	StatusLegend   []string
}

// homePage lists the catalogue ordered by species name, with lookup lists for
// origin status, species type, and the conservation status legend
func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListSpeciesOrderedByName(r.Context(), 0)
	if err != nil {
		s.logger.WithError(err).Error("failed to load catalogue for home page")
		records = nil
	}

	s.render(w, r, "index.html", homeData{
		pageData:       s.basePage(r, "Wildlife Catalogue"),
		Species:        records,
		OriginStatuses: distinctValues(records, func(sp store.Species) string { return sp.OriginStatus }),
		SpeciesTypes:   distinctValues(records, func(sp store.Species) string { return sp.SpeciesType }),
		StatusLegend:   distinctValues(records, func(sp store.Species) string { return sp.Status }),
	})
}

// distinctValues collects the sorted set of non-empty values one field takes
// across the catalogue
func distinctValues(records []store.Species, field func(store.Species) string) []string {
	seen := make(map[string]struct{}, len(records))
	values := make([]string, 0, len(records))
	for _, rec := range records {
		v := strings.TrimSpace(field(rec))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return values
}

type speciesPageData struct {
	pageData
	Query   string
	Results []searchRow
}

// searchRow carries one result with its display-ready matched field
type searchRow struct {
	Record       store.Species
	MatchedField string
}

// speciesPage serves GET /species?name=<query> using the search service.
// Store failures render an empty result list rather than an error page.
func (s *Server) speciesPage(w http.ResponseWriter, r *http.Request) {
	query := httputil.ParseQueryString(r, "name", "")

	results := s.search.Search(r.Context(), query, search.DefaultPageLimit)

	rows := make([]searchRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, searchRow{
			Record:       res.Record,
			MatchedField: res.Field.Label(),
		})
	}

	s.render(w, r, "species.html", speciesPageData{
		pageData: s.basePage(r, "Species Search"),
		Query:    query,
		Results:  rows,
	})
}

// favouritesPage renders the favourites view; the page loads its data from
// the species API
func (s *Server) favouritesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "favourites.html", s.basePage(r, "Favourites"))
}

func (s *Server) aboutPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "about.html", s.basePage(r, "About"))
}
