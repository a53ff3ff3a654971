package search

import (
	"fmt"
	"strings"

	"github.com/korimako/wildlife/pkg/store"
)

// Suggestion is a single autocomplete entry
type Suggestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Suggestion list caps for the autocomplete endpoint
const (
	SuggestionLimitShowAll = 15
	SuggestionLimitQuery   = 10

	// ShowAllCandidateLimit bounds the store fetch when listing without a query
	ShowAllCandidateLimit = 20
)

// BuildSuggestions converts candidate records into a capped list of
// autocomplete entries. With includeAll (or an empty query) every candidate
// is considered in species-name order; otherwise candidates are filtered and
// ranked by match quality. Each record contributes up to three entries, and
// the cap is applied after expansion, so a record near the cap may only get
// some of its entries in.
func BuildSuggestions(query string, candidates []store.Species, limit int, includeAll bool) []Suggestion {
	q := Normalize(query)

	suggestions := make([]Suggestion, 0, limit)

	if includeAll || q == "" {
		for _, rec := range sortByName(candidates) {
			suggestions = appendRecordSuggestions(suggestions, rec, "", limit)
			if len(suggestions) >= limit {
				break
			}
		}
		return suggestions
	}

	matched := Search(q, candidates, 0)
	for _, m := range matched {
		suggestions = appendRecordSuggestions(suggestions, m.Record, q, limit)
		if len(suggestions) >= limit {
			break
		}
	}
	return suggestions
}

// appendRecordSuggestions emits the entries for one record, stopping at limit.
// A non-empty q enables the type-match entry.
func appendRecordSuggestions(suggestions []Suggestion, rec store.Species, q string, limit int) []Suggestion {
	if rec.SpeciesName != "" && len(suggestions) < limit {
		suggestions = append(suggestions, Suggestion{
			Text: rec.SpeciesName,
			Type: categoryLabel(rec),
		})
	}

	// Scientific name entry, skipped when it just repeats the species name
	if rec.ScientificName != "" && rec.ScientificName != rec.SpeciesName && len(suggestions) < limit {
		suggestions = append(suggestions, Suggestion{
			Text: rec.ScientificName,
			Type: fmt.Sprintf("Scientific Name - %s", rec.SpeciesType),
		})
	}

	if q != "" && strings.Contains(strings.ToLower(rec.SpeciesType), q) && len(suggestions) < limit {
		suggestions = append(suggestions, Suggestion{
			Text: rec.SpeciesName,
			Type: fmt.Sprintf("Type: %s", rec.SpeciesType),
		})
	}

	return suggestions
}

// categoryLabel describes a record by type and family, falling back to
// whichever is present
func categoryLabel(rec store.Species) string {
	switch {
	case rec.SpeciesType != "" && rec.Family != "":
		return fmt.Sprintf("%s - %s", rec.SpeciesType, rec.Family)
	case rec.SpeciesType != "":
		return rec.SpeciesType
	case rec.Family != "":
		return rec.Family
	default:
		return "Unknown"
	}
}
