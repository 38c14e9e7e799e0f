package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "neuroedge-api/pkg/errors"
	"neuroedge-api/pkg/logger"
	"neuroedge-api/pkg/metrics"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

var tracer = otel.Tracer("application/search")

// Field weights for full-phrase relevance scoring.
const (
	weightTitle        = 10
	weightLocation     = 8
	weightPropertyType = 7
	weightDescription  = 6
	weightFeatures     = 5

	// minTermLen terms at or below this length are ignored
	minTermLen = 2
)

// Result is a ranked property row.
type Result struct {
	entity.PropertyWithAgent
	Score int `json:"relevance_score"`
}

type Engine struct {
	properties repository.PropertyRepository

	defaultMax int
	maxCap     int
}

func NewEngine(properties repository.PropertyRepository, defaultMax, maxCap int) *Engine {
	if defaultMax <= 0 {
		defaultMax = 10
	}
	if maxCap <= 0 {
		maxCap = 50
	}
	return &Engine{
		properties: properties,
		defaultMax: defaultMax,
		maxCap:     maxCap,
	}
}

// Query runs a weighted substring search over available properties.
// An empty query returns the most recent available records unscored.
func (e *Engine) Query(ctx context.Context, query string, maxResults int) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "search.Query")
	defer span.End()

	start := time.Now()
	if maxResults <= 0 {
		maxResults = e.defaultMax
	}
	if maxResults > e.maxCap {
		maxResults = e.maxCap
	}

	query = strings.TrimSpace(query)
	span.SetAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.max_results", maxResults),
	)

	if query == "" {
		rows, err := e.properties.ListAvailable(ctx, maxResults)
		if err != nil {
			span.RecordError(err)
			metrics.SearchTotal.WithLabelValues("error").Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list recent properties")
		}
		results := make([]Result, 0, len(rows))
		for _, row := range rows {
			results = append(results, Result{PropertyWithAgent: *row})
		}
		e.observe(start, len(results))
		return results, nil
	}

	terms := SplitTerms(query)

	candidates, err := e.properties.FindCandidates(ctx, query, terms)
	if err != nil {
		span.RecordError(err)
		metrics.SearchTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to find search candidates")
	}

	results := make([]Result, 0, len(candidates))
	for _, row := range candidates {
		results = append(results, Result{
			PropertyWithAgent: *row,
			Score:             Score(&row.Property, query, terms),
		})
	}

	// Score descending, price ascending on ties.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Price < results[j].Price
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	logger.Debug(ctx, "property search completed",
		"query", query,
		"candidates", len(candidates),
		"results", len(results),
	)
	e.observe(start, len(results))
	return results, nil
}

func (e *Engine) observe(start time.Time, count int) {
	metrics.SearchTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResultCount.Observe(float64(count))
}

// SplitTerms breaks a query into lowercased whitespace terms longer than
// two characters. Falls back to the whole lowercased query when nothing
// survives the length filter.
func SplitTerms(query string) []string {
	var terms []string
	for _, raw := range strings.Fields(query) {
		term := strings.ToLower(strings.TrimSpace(raw))
		if len(term) > minTermLen {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		terms = []string{strings.ToLower(query)}
	}
	return terms
}

// Score computes the relevance score for a property. A field contributes
// its weight at most once, when it contains the full phrase or any
// individual search term. The maximum is 36.
func Score(p *entity.Property, query string, terms []string) int {
	phrase := strings.ToLower(query)
	score := 0
	if fieldMatches(p.Title, phrase, terms) {
		score += weightTitle
	}
	if fieldMatches(p.Location, phrase, terms) {
		score += weightLocation
	}
	if fieldMatches(p.PropertyType, phrase, terms) {
		score += weightPropertyType
	}
	if fieldMatches(p.Description, phrase, terms) {
		score += weightDescription
	}
	if fieldMatches(FeaturesText(p), phrase, terms) {
		score += weightFeatures
	}
	return score
}

func fieldMatches(field, phrase string, terms []string) bool {
	lower := strings.ToLower(field)
	if phrase != "" && strings.Contains(lower, phrase) {
		return true
	}
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FeaturesText flattens the feature list into the text the scorer and
// candidate filter match against.
func FeaturesText(p *entity.Property) string {
	return strings.Join(p.Features, ", ")
}
