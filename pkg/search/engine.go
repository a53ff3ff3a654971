package search

import (
	"sort"
	"strings"

	"github.com/korimako/wildlife/pkg/store"
)

// Field identifies which record attribute a query matched
type Field string

const (
	FieldNone           Field = "none"
	FieldSpeciesName    Field = "species_name"
	FieldScientificName Field = "scientific_name"
	FieldSpeciesType    Field = "species_type"
	FieldFamily         Field = "family"
)

// Label returns the human-readable name of the matched field
func (f Field) Label() string {
	switch f {
	case FieldSpeciesName:
		return "Species Name"
	case FieldScientificName:
		return "Scientific Name"
	case FieldSpeciesType:
		return "Species Type"
	case FieldFamily:
		return "Family"
	default:
		return ""
	}
}

// Match ranks, lower is better
const (
	rankNamePrefix       = 1
	rankScientificPrefix = 2
	rankSubstring        = 3
)

// MatchResult pairs a record with how and how well it matched
type MatchResult struct {
	Record store.Species `json:"record"`
	Field  Field         `json:"matched_field"`
	Rank   int           `json:"rank"`
}

// Normalize lower-cases and trims a raw query string
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Match reports which field of the record contains the query, checking
// species name, scientific name, species type, then family. An empty query
// matches every record with FieldNone.
func Match(query string, rec store.Species) Field {
	q := Normalize(query)
	if q == "" {
		return FieldNone
	}
	return matchNormalized(q, rec)
}

// matchNormalized assumes q is already normalized and non-empty
func matchNormalized(q string, rec store.Species) Field {
	if strings.Contains(strings.ToLower(rec.SpeciesName), q) {
		return FieldSpeciesName
	}
	if strings.Contains(strings.ToLower(rec.ScientificName), q) {
		return FieldScientificName
	}
	if strings.Contains(strings.ToLower(rec.SpeciesType), q) {
		return FieldSpeciesType
	}
	if strings.Contains(strings.ToLower(rec.Family), q) {
		return FieldFamily
	}
	return FieldNone
}

// Rank scores a matching record: 1 for a species-name prefix match, 2 for a
// scientific-name prefix match, 3 for any other substring match.
func Rank(query string, rec store.Species) int {
	q := Normalize(query)
	if q == "" {
		return rankSubstring
	}
	return rankNormalized(q, rec)
}

func rankNormalized(q string, rec store.Species) int {
	if strings.HasPrefix(strings.ToLower(rec.SpeciesName), q) {
		return rankNamePrefix
	}
	if strings.HasPrefix(strings.ToLower(rec.ScientificName), q) {
		return rankScientificPrefix
	}
	return rankSubstring
}

// Search filters and orders a store snapshot for a query. An empty query
// returns the first pageLimit records ordered by species name; otherwise
// matches are ordered by rank, then species name. Output depends only on
// the query and snapshot contents, never on the snapshot's row order.
func Search(query string, records []store.Species, pageLimit int) []MatchResult {
	q := Normalize(query)

	results := make([]MatchResult, 0, len(records))
	if q == "" {
		for _, rec := range records {
			results = append(results, MatchResult{Record: rec, Field: FieldNone, Rank: rankSubstring})
		}
	} else {
		for _, rec := range records {
			field := matchNormalized(q, rec)
			if field == FieldNone {
				continue
			}
			results = append(results, MatchResult{Record: rec, Field: field, Rank: rankNormalized(q, rec)})
		}
	}

	sortResults(results)

	if pageLimit > 0 && len(results) > pageLimit {
		results = results[:pageLimit]
	}
	return results
}

// sortResults orders by rank ascending, ties broken by species name
// (case-insensitive) so output is stable across identical snapshots
func sortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank < results[j].Rank
		}
		return strings.ToLower(results[i].Record.SpeciesName) < strings.ToLower(results[j].Record.SpeciesName)
	})
}

// sortByName orders records by species name ascending, case-insensitive
func sortByName(records []store.Species) []store.Species {
	sorted := append([]store.Species(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].SpeciesName) < strings.ToLower(sorted[j].SpeciesName)
	})
	return sorted
}
