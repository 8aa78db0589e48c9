package store_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/store"
)

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedExperiment(t *testing.T, s *store.SQLiteStore, name string, createdAt int64, variants ...string) {
	t.Helper()

	encoded, err := json.Marshal(variants)
	require.NoError(t, err)
	_, err = s.DB().Exec(`INSERT INTO experiments (name, variants, created_at) VALUES (?, ?, ?)`, name, string(encoded), createdAt)
	require.NoError(t, err)
}

func seedEvent(t *testing.T, s *store.SQLiteStore, experiment string, variant int, eventType store.EventType, visitor string) {
	t.Helper()

	_, err := s.DB().Exec(`INSERT OR IGNORE INTO events (experiment, variant, event_type, visitor_id) VALUES (?, ?, ?, ?)`,
		experiment, variant, string(eventType), visitor)
	require.NoError(t, err)
}

func TestOpen_AppliesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	seedExperiment(t, s, "hero", 100, "A", "B")
	require.NoError(t, s.Close())

	s2, err := store.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	exp, err := s2.GetExperiment(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, exp.Variants)
}

func TestGetExperiment_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetExperiment(context.Background(), "missing")
	assert.Equal(t, store.ErrNotFound, err)

	_, err = s.GetVariants(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListExperiments(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	experiments, err := s.ListExperiments(ctx)
	require.NoError(t, err)
	assert.Empty(t, experiments)

	seedExperiment(t, s, "old", 100, "A", "B")
	seedExperiment(t, s, "new", 200, "Control", "Variant 1", "Variant 2")

	experiments, err = s.ListExperiments(ctx)
	require.NoError(t, err)
	require.Len(t, experiments, 2)
	assert.Equal(t, "new", experiments[0].Name)
	assert.Len(t, experiments[0].Variants, 3)
	assert.Equal(t, int64(200), experiments[0].CreatedAt.Unix())
	assert.Equal(t, "old", experiments[1].Name)
}

func TestGetVariants_CountsDistinctVisitors(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedExperiment(t, s, "hero", 100, "Control", "Variant 1", "Unseen")

	for _, v := range []string{"a", "b", "c", "d"} {
		seedEvent(t, s, "hero", 0, store.EventView, v)
	}
	seedEvent(t, s, "hero", 0, store.EventConvert, "a")
	// Duplicate conversion from the same visitor is ignored.
	seedEvent(t, s, "hero", 0, store.EventConvert, "a")

	for _, v := range []string{"e", "f"} {
		seedEvent(t, s, "hero", 1, store.EventView, v)
		seedEvent(t, s, "hero", 1, store.EventConvert, v)
	}
	// Out-of-range variant index.
	seedEvent(t, s, "hero", 7, store.EventView, "z")

	variants, err := s.GetVariants(ctx, "hero")
	require.NoError(t, err)

	assert.Equal(t, []stats.Variant{
		{Name: "Control", Visitors: 4, Conversions: 1},
		{Name: "Variant 1", Visitors: 2, Conversions: 2},
		{Name: "Unseen", Visitors: 0, Conversions: 0},
	}, variants)

	counts, err := s.GetVariantCounts(ctx, "hero")
	require.NoError(t, err)
	assert.Len(t, counts, 3)
	assert.Equal(t, 7, counts[2].Variant)
}

func TestGetVariants_FeedsSignificance(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedExperiment(t, s, "cta", 100, "Control", "Treatment")

	for i := 0; i < 200; i++ {
		visitor := "v" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		variant := i % 2
		seedEvent(t, s, "cta", variant, store.EventView, visitor)
		if (variant == 0 && i%10 == 0) || (variant == 1 && i%4 == 1) {
			seedEvent(t, s, "cta", variant, store.EventConvert, visitor)
		}
	}

	variants, err := s.GetVariants(ctx, "cta")
	require.NoError(t, err)

	report, err := stats.Analyze(variants, 95)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Control.Visitors)
	assert.Equal(t, 20, report.Control.Conversions)
	assert.Equal(t, 50, report.Results[0].Conversions)
	assert.True(t, report.Results[0].IsSignificant)
}
