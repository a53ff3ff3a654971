package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/korimako/wildlife/pkg/observability"
	"github.com/korimako/wildlife/pkg/store"
)

var searchTracer = otel.Tracer("wildlife/search/service")

// DefaultPageLimit caps full-page search results
const DefaultPageLimit = 50

// Service orchestrates the search engine against the record store. Every
// request reads a fresh snapshot; nothing is cached across requests. Store
// failures degrade to empty results rather than propagating errors.
type Service struct {
	store   store.Store
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a search service backed by the given store
func NewService(st store.Store, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   st,
		logger:  logger,
		metrics: metrics,
	}
}

// Search returns ranked results for a full-page species search
func (s *Service) Search(ctx context.Context, query string, pageLimit int) []MatchResult {
	ctx, span := searchTracer.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.Int("page_limit", pageLimit),
		),
	)
	defer span.End()

	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}

	mode := "query"
	if Normalize(query) == "" {
		mode = "browse"
	}

	start := time.Now()
	records, err := s.store.ListSpecies(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store read failed")
		s.logger.WithError(err).Error("species search degraded to empty results")
		s.metrics.SearchesTotal.WithLabelValues(mode, "error").Inc()
		return []MatchResult{}
	}

	results := Search(query, records, pageLimit)

	s.metrics.SearchesTotal.WithLabelValues(mode, "ok").Inc()
	s.metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	s.metrics.SearchResultsCount.WithLabelValues(mode).Observe(float64(len(results)))

	span.SetAttributes(attribute.Int("result_count", len(results)))
	span.SetStatus(codes.Ok, "search completed")
	return results
}

// Suggestions returns autocomplete entries for a query. With showAll (or an
// empty query) a bounded, name-ordered slice of the catalogue is listed
// instead of filtering.
func (s *Service) Suggestions(ctx context.Context, query string, showAll bool) []Suggestion {
	ctx, span := searchTracer.Start(ctx, "Suggestions",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.Bool("show_all", showAll),
		),
	)
	defer span.End()

	// An empty query lists the catalogue the same way show_all does, and
	// shares its larger cap
	includeAll := showAll || Normalize(query) == ""

	mode := "query"
	limit := SuggestionLimitQuery
	if includeAll {
		mode = "browse"
		limit = SuggestionLimitShowAll
	}
	if showAll {
		mode = "show_all"
	}

	var (
		candidates []store.Species
		err        error
	)
	if includeAll {
		candidates, err = s.store.ListSpeciesOrderedByName(ctx, ShowAllCandidateLimit)
	} else {
		candidates, err = s.store.ListSpecies(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store read failed")
		s.logger.WithError(err).Error("suggestions degraded to empty results")
		s.metrics.SuggestionsTotal.WithLabelValues(mode, "error").Inc()
		return []Suggestion{}
	}

	suggestions := BuildSuggestions(query, candidates, limit, includeAll)
	s.metrics.SuggestionsTotal.WithLabelValues(mode, "ok").Inc()

	span.SetAttributes(attribute.Int("suggestion_count", len(suggestions)))
	span.SetStatus(codes.Ok, "suggestions built")
	return suggestions
}
