package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

// fakePropertyRepo serves candidates the way the SQL layer does:
// availability filter plus an OR across the full phrase and each term.
type fakePropertyRepo struct {
	rows    []*entity.PropertyWithAgent
	failing bool
}

var errStorage = errors.New("storage down")

func (f *fakePropertyRepo) FindCandidates(_ context.Context, phrase string, terms []string) ([]*entity.PropertyWithAgent, error) {
	if f.failing {
		return nil, errStorage
	}
	var out []*entity.PropertyWithAgent
	for _, row := range f.rows {
		if !row.IsAvailable() {
			continue
		}
		if rowMatches(row, phrase, terms) {
			out = append(out, row)
		}
	}
	return out, nil
}

func rowMatches(row *entity.PropertyWithAgent, phrase string, terms []string) bool {
	fields := []string{row.Title, row.Description, row.Location, row.PropertyType, FeaturesText(&row.Property)}
	patterns := append([]string{strings.ToLower(phrase)}, terms...)
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, p := range patterns {
			if p != "" && strings.Contains(lower, p) {
				return true
			}
		}
	}
	return false
}

func (f *fakePropertyRepo) ListAvailable(_ context.Context, limit int) ([]*entity.PropertyWithAgent, error) {
	if f.failing {
		return nil, errStorage
	}
	var out []*entity.PropertyWithAgent
	for _, row := range f.rows {
		if row.IsAvailable() {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePropertyRepo) Create(context.Context, *entity.Property) error { return nil }
func (f *fakePropertyRepo) GetByID(context.Context, string) (*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePropertyRepo) Update(context.Context, *entity.Property) error { return nil }
func (f *fakePropertyRepo) UpdateStatus(context.Context, string, entity.PropertyStatus) error {
	return nil
}
func (f *fakePropertyRepo) Delete(context.Context, string) error { return nil }
func (f *fakePropertyRepo) List(context.Context, repository.Pagination) (*repository.PagedResult[*entity.PropertyWithAgent], error) {
	return nil, errors.New("not implemented")
}
func (f *fakePropertyRepo) ListTrash(context.Context) ([]*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePropertyRepo) EmptyTrash(context.Context) (int64, error)          { return 0, nil }
func (f *fakePropertyRepo) CountByAgent(context.Context, string) (int64, error) { return 0, nil }

func prop(title, location, ptype, desc string, price float64, status entity.PropertyStatus, features ...string) *entity.PropertyWithAgent {
	return &entity.PropertyWithAgent{
		Property: entity.Property{
			ID:           title,
			Title:        title,
			Description:  desc,
			Price:        price,
			Currency:     "NAD",
			PropertyType: ptype,
			Location:     location,
			City:         "Windhoek",
			Features:     features,
			Status:       status,
			CreatedAt:    time.Now(),
		},
		AgentName: "Maria Shikongo",
	}
}

func TestQueryRanking(t *testing.T) {
	repo := &fakePropertyRepo{rows: []*entity.PropertyWithAgent{
		prop("3 Bedroom House in Windhoek", "Windhoek", "house", "Family home with garden", 1200000, entity.PropertyStatusAvailable, "garden", "garage"),
		prop("Coastal Flat", "Swakopmund", "apartment", "Sea view unit", 800000, entity.PropertyStatusAvailable),
	}}
	engine := NewEngine(repo, 10, 50)

	t.Run("scenario ranks title match first with score at least 25", func(t *testing.T) {
		results, err := engine.Query(context.Background(), "3 bedroom house Windhoek", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "3 Bedroom House in Windhoek", results[0].Title)
		assert.GreaterOrEqual(t, results[0].Score, 25)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i].Score, results[0].Score)
		}
	})

	t.Run("ranking is deterministic", func(t *testing.T) {
		first, err := engine.Query(context.Background(), "windhoek house", 10)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := engine.Query(context.Background(), "windhoek house", 10)
			require.NoError(t, err)
			require.Len(t, again, len(first))
			for j := range first {
				assert.Equal(t, first[j].ID, again[j].ID)
			}
		}
	})
}

func TestQueryTieBreakByPrice(t *testing.T) {
	// Identical text fields so both score the same; cheaper must come first.
	a := prop("Windhoek Townhouse", "Windhoek", "townhouse", "Modern unit", 950000, entity.PropertyStatusAvailable)
	b := prop("Windhoek Townhouse B", "Windhoek", "townhouse", "Modern unit", 700000, entity.PropertyStatusAvailable)
	repo := &fakePropertyRepo{rows: []*entity.PropertyWithAgent{a, b}}
	engine := NewEngine(repo, 10, 50)

	results, err := engine.Query(context.Background(), "windhoek townhouse", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, 700000.0, results[0].Price)
	assert.Equal(t, 950000.0, results[1].Price)
}

func TestQueryFiltersUnavailable(t *testing.T) {
	repo := &fakePropertyRepo{rows: []*entity.PropertyWithAgent{
		prop("Sold House Windhoek", "Windhoek", "house", "", 500000, entity.PropertyStatusSold),
		prop("Archived House Windhoek", "Windhoek", "house", "", 500000, entity.PropertyStatusArchived),
		prop("Open House Windhoek", "Windhoek", "house", "", 500000, entity.PropertyStatusAvailable),
		prop("Legacy House Windhoek", "Windhoek", "house", "", 450000, ""),
	}}
	engine := NewEngine(repo, 10, 50)

	results, err := engine.Query(context.Background(), "house windhoek", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.IsAvailable())
	}
}

func TestQueryRespectsMaxResults(t *testing.T) {
	var rows []*entity.PropertyWithAgent
	for i := 0; i < 20; i++ {
		rows = append(rows, prop(
			"Windhoek Plot "+string(rune('A'+i)), "Windhoek", "plot", "", float64(100000+i), entity.PropertyStatusAvailable,
		))
	}
	repo := &fakePropertyRepo{rows: rows}
	engine := NewEngine(repo, 10, 50)

	results, err := engine.Query(context.Background(), "windhoek", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestQueryEmptyReturnsRecent(t *testing.T) {
	now := time.Now()
	var rows []*entity.PropertyWithAgent
	for i := 0; i < 5; i++ {
		p := prop("Listing "+string(rune('A'+i)), "Windhoek", "house", "", 100000, entity.PropertyStatusAvailable)
		p.CreatedAt = now.Add(-time.Duration(i) * time.Hour)
		rows = append(rows, p)
	}
	repo := &fakePropertyRepo{rows: rows}
	engine := NewEngine(repo, 10, 50)

	results, err := engine.Query(context.Background(), "   ", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Listing A", results[0].Title)
	assert.Equal(t, "Listing B", results[1].Title)
	assert.Equal(t, "Listing C", results[2].Title)
	for _, r := range results {
		assert.Zero(t, r.Score)
	}
}

func TestQueryStorageErrorIsSignaled(t *testing.T) {
	engine := NewEngine(&fakePropertyRepo{failing: true}, 10, 50)

	_, err := engine.Query(context.Background(), "windhoek", 10)
	require.Error(t, err)

	_, err = engine.Query(context.Background(), "", 10)
	require.Error(t, err)
}

func TestScoreBounds(t *testing.T) {
	t.Run("title only match scores exactly 10", func(t *testing.T) {
		p := &entity.Property{Title: "Windhoek Gem", Location: "Klein", PropertyType: "flat", Description: "cosy"}
		terms := SplitTerms("gem")
		assert.Equal(t, 10, Score(p, "gem", terms))
	})

	t.Run("all fields match scores 36", func(t *testing.T) {
		p := &entity.Property{
			Title:        "windhoek home",
			Location:     "windhoek",
			PropertyType: "windhoek style",
			Description:  "in windhoek central",
			Features:     []string{"windhoek views"},
		}
		terms := SplitTerms("windhoek")
		assert.Equal(t, 36, Score(p, "windhoek", terms))
	})

	t.Run("repeated occurrences count once per field", func(t *testing.T) {
		p := &entity.Property{Title: "windhoek windhoek windhoek"}
		terms := SplitTerms("windhoek")
		assert.Equal(t, 10, Score(p, "windhoek", terms))
	})
}

func TestSplitTerms(t *testing.T) {
	t.Run("drops short tokens", func(t *testing.T) {
		assert.Equal(t, []string{"bedroom", "house", "windhoek"}, SplitTerms("3 bedroom house in Windhoek"))
	})

	t.Run("falls back to whole query", func(t *testing.T) {
		assert.Equal(t, []string{"a b"}, SplitTerms("a b"))
	})
}

func TestRenderResults(t *testing.T) {
	t.Run("empty result set", func(t *testing.T) {
		out := RenderResults("anything", nil)
		assert.Contains(t, out, "No properties found")
	})

	t.Run("includes key fields", func(t *testing.T) {
		r := Result{PropertyWithAgent: *prop("3 Bedroom House", "Klein Windhoek", "house", "", 1200000, entity.PropertyStatusAvailable, "garden", "pool", "garage", "borehole")}
		r.AgentPhone = "+264 81 000 0000"
		out := RenderResults("house", []Result{r})
		assert.Contains(t, out, "3 Bedroom House")
		assert.Contains(t, out, "Klein Windhoek")
		assert.Contains(t, out, "Maria Shikongo")
		assert.Contains(t, out, "garden, pool, garage")
		assert.NotContains(t, out, "borehole")
	})
}
