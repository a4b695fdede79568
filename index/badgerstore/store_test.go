package badgerstore

import (
	"context"
	"testing"

	"github.com/poiesic/healthhub/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(id string, vector []float32, metadata index.Metadata) index.Entry {
	return index.Entry{ID: id, Vector: vector, Metadata: metadata}
}

func TestUpsertAndQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []index.Entry{
		entry("a", []float32{1, 0, 0}, index.Metadata{"domain": "claims"}),
		entry("b", []float32{0, 1, 0}, index.Metadata{"domain": "pharmacy"}),
		entry("c", []float32{0.9, 0.1, 0}, index.Metadata{"domain": "claims"}),
	})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Descending similarity: exact match first, near match second.
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
	assert.Equal(t, "claims", matches[0].Metadata["domain"])
}

func TestQueryFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []index.Entry{
		entry("a", []float32{1, 0}, index.Metadata{"domain": "claims", "source_type": "internal"}),
		entry("b", []float32{1, 0}, index.Metadata{"domain": "pharmacy", "source_type": "external"}),
		entry("c", []float32{1, 0}, index.Metadata{"domain": "claims", "source_type": "external"}),
	})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0}, 10, index.Metadata{"domain": "claims"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = store.Query(ctx, []float32{1, 0}, 10,
		index.Metadata{"domain": "claims", "source_type": "external"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c", matches[0].ID)

	matches, err = store.Query(ctx, []float32{1, 0}, 10, index.Metadata{"domain": "benefits"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpsertOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []index.Entry{
		entry("a", []float32{1, 0}, index.Metadata{"rev": "1"}),
	}))
	require.NoError(t, store.Upsert(ctx, []index.Entry{
		entry("a", []float32{0, 1}, index.Metadata{"rev": "2"}),
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectorCount)

	matches, err := store.Query(ctx, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2", matches[0].Metadata["rev"])
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectorCount)
	assert.Equal(t, index.Dimension, stats.Dimension)

	require.NoError(t, store.Upsert(ctx, []index.Entry{
		entry("a", []float32{1, 0, 0}, nil),
		entry("b", []float32{0, 1, 0}, nil),
	}))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVectorCount)
	assert.Equal(t, 3, stats.Dimension)
	assert.Equal(t, 2, stats.Namespaces[""])
}

func TestEntryCodecRoundTrip(t *testing.T) {
	original := entry("claims_history_CLM001",
		[]float32{0.25, -0.5, 0.75},
		index.Metadata{"domain": "claims", "text": "Claim Id: CLM001"})

	decoded, err := unmarshalEntry(marshalEntry(&original))
	require.NoError(t, err)
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Vector, decoded.Vector)
	assert.Equal(t, original.Metadata, decoded.Metadata)
}

func TestInMemoryStore(t *testing.T) {
	store, err := Open("", true)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []index.Entry{entry("a", []float32{1}, nil)}))

	matches, err := store.Query(ctx, []float32{1}, 1, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
