package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplaceCorpusAssignsSequentialIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cats, err := s.ReplaceCorpus(ctx, "run-1", []types.Category{
		{Label: "Network issues", Description: "connectivity problems", Embedding: []float32{0.1, 0.2}},
		{Label: "Billing disputes", Description: "payment problems", Embedding: []float32{0.3, 0.4}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, 1, cats[0].ID)
	assert.Equal(t, 2, cats[1].ID)

	listed, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Network issues", listed[0].Label)
	assert.Equal(t, []float32{0.1, 0.2}, listed[0].Embedding)
}

func TestReplaceCorpusIsFullRefresh(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItems(ctx, []ItemRecord{
		{ID: "itm-1", Owner: "alice", Text: "x"},
		{ID: "itm-2", Owner: "bob", Text: "y"},
	}))

	_, err := s.ReplaceCorpus(ctx, "run-1", []types.Category{
		{Label: "a", Description: "a"},
		{Label: "b", Description: "b"},
	}, []types.Assignment{
		{ItemID: "itm-1", CategoryID: 1},
		{ItemID: "itm-2", CategoryID: 1},
	})
	require.NoError(t, err)

	_, err = s.ReplaceCorpus(ctx, "run-2", []types.Category{
		{Label: "c", Description: "c"},
		{Label: "d", Description: "d"},
	}, []types.Assignment{
		{ItemID: "itm-1", CategoryID: 2},
	})
	require.NoError(t, err)

	views, err := s.ListAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "itm-1", views[0].ItemID)
	assert.Equal(t, 2, views[0].CategoryID)
	assert.Equal(t, "d", views[0].CategoryLabel)
	assert.Equal(t, "run-2", views[0].RunID)

	listed, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "c", listed[0].Label)
}

func TestReplaceCorpusRollsBackOnBadReference(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItems(ctx, []ItemRecord{{ID: "itm-1", Text: "x"}}))
	_, err := s.ReplaceCorpus(ctx, "run-1",
		[]types.Category{{Label: "a", Description: "a"}},
		[]types.Assignment{{ItemID: "itm-1", CategoryID: 1}})
	require.NoError(t, err)

	// Second swap references a missing item; the whole swap must roll back.
	_, err = s.ReplaceCorpus(ctx, "run-2",
		[]types.Category{{Label: "b", Description: "b"}},
		[]types.Assignment{{ItemID: "ghost", CategoryID: 1}})
	require.Error(t, err)

	views, err := s.ListAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1, "failed swap must not leave the tables truncated")
	assert.Equal(t, "run-1", views[0].RunID)

	listed, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a", listed[0].Label, "failed swap must keep the previous category set")
}

func TestCountByOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItems(ctx, []ItemRecord{
		{ID: "i1", Owner: "alice", Text: "x"},
		{ID: "i2", Owner: "alice", Text: "y"},
		{ID: "i3", Owner: "bob", Text: "z"},
	}))
	_, err := s.ReplaceCorpus(ctx, "run-1", []types.Category{
		{Label: "network", Description: "n"},
		{Label: "billing", Description: "b"},
	}, []types.Assignment{
		{ItemID: "i1", CategoryID: 1},
		{ItemID: "i2", CategoryID: 1},
		{ItemID: "i3", CategoryID: 2},
	})
	require.NoError(t, err)

	counts, err := s.CountByOwner(ctx, "")
	require.NoError(t, err)
	require.Len(t, counts, 2)

	alice, err := s.CountByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, OwnerCategoryCount{Owner: "alice", CategoryLabel: "network", Count: 2}, alice[0])
}

func TestTemplateConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetTemplateConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg, "unset config reads as nil")

	want := types.TemplateConfig{
		AvailabilityTemplate: "SELECT 1 WHERE x = '{location}' {date_filter}",
		FallbackTemplate:     "SELECT 2 WHERE e = '{entity_id}'",
		TopicTemplate:        "outer {generated_sparql_query} {topic}",
		NoTopicTemplate:      "outer {generated_sparql_query}",
		Prefixes:             "PREFIX ex: <http://example.org/>",
		Graph:                "http://example.org/graph",
		GenTemplate:          "gen {nl_query}",
		TopicExtractTemplate: "topic {question}",
	}
	require.NoError(t, s.ReplaceTemplateConfig(ctx, want))

	got, err := s.GetTemplateConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	// Replace again to confirm the singleton updates in place.
	want.Graph = "http://example.org/other"
	require.NoError(t, s.ReplaceTemplateConfig(ctx, want))
	got, err = s.GetTemplateConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/other", got.Graph)
}

func TestExecuteReturnsColumnsAndRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().ExecContext(ctx, `
		INSERT INTO bookings_availability (location_name, slot_date, slot_time) VALUES
		('Clinic A', '2025-03-01', '09:00'),
		('Clinic A', '2025-02-01', '10:00'),
		('Clinic B', '2025-03-01', '11:00')`)
	require.NoError(t, err)

	compiled := &types.CompiledQuery{
		Text: `SELECT location_name, slot_date, slot_time FROM bookings_availability
			WHERE UPPER(location_name) = UPPER('clinic a')
			ORDER BY slot_date DESC, slot_time DESC LIMIT 3`,
		Branch: types.BranchAvailability,
	}
	columns, rows, err := s.Execute(ctx, compiled)
	require.NoError(t, err)
	assert.Equal(t, []string{"location_name", "slot_date", "slot_time"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-01", rows[0][1])
}

func TestExecuteRejectionCarriesCompiledText(t *testing.T) {
	s := openTestStore(t)

	compiled := &types.CompiledQuery{Text: "SELECT FROM nowhere !!", Branch: types.BranchFallback}
	_, _, err := s.Execute(context.Background(), compiled)
	require.Error(t, err)
	assert.True(t, errors.IsExecution(err))

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, compiled.Text, e.CompiledText)
	assert.Equal(t, "fallback", e.Branch)
}
