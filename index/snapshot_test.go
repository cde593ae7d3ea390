package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister []string

func (f fakeLister) ListApproved(ctx context.Context) ([]string, error) {
	return f, nil
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	source := newTestIndex(t, testEmbedder())
	for _, text := range []string{"alpha times", "beta gazette", "gamma post"} {
		require.NoError(t, source.Insert(ctx, text))
	}
	require.NoError(t, source.WriteSnapshot(dir, "test-model"))

	snap, err := LoadSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Manifest.Dim)
	assert.Equal(t, "test-model", snap.Manifest.ModelID)
	assert.Equal(t, []string{"alpha times", "beta gazette", "gamma post"}, snap.Titles)
	assert.Len(t, snap.Vectors, 9)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestLoadSnapshot_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	source := newTestIndex(t, testEmbedder())
	require.NoError(t, source.Insert(ctx, "alpha times"))
	require.NoError(t, source.WriteSnapshot(dir, "test-model"))

	// Truncate the vector file so it disagrees with the titles file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.f32"), []byte{1, 2, 3, 4}, 0o644))

	_, err := LoadSnapshot(dir)
	assert.ErrorIs(t, err, ErrSnapshotCorrupt)
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot plus reconciliation", func(t *testing.T) {
		dir := t.TempDir()

		source := newTestIndex(t, testEmbedder())
		require.NoError(t, source.Insert(ctx, "alpha times"))
		require.NoError(t, source.Insert(ctx, "beta gazette"))
		require.NoError(t, source.WriteSnapshot(dir, "test-model"))

		// The record store knows one title the snapshot predates.
		idx := newTestIndex(t, testEmbedder())
		err := idx.Hydrate(ctx, dir, fakeLister{"alpha times", "gamma post"})
		require.NoError(t, err)

		assert.Equal(t, 3, idx.Size())
		assert.True(t, idx.ContainsExact("alpha times"))
		assert.True(t, idx.ContainsExact("beta gazette"))
		assert.True(t, idx.ContainsExact("gamma post"))
	})

	t.Run("missing snapshot starts empty", func(t *testing.T) {
		idx := newTestIndex(t, testEmbedder())
		err := idx.Hydrate(ctx, filepath.Join(t.TempDir(), "absent"), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Size())
	})

	t.Run("missing snapshot still reconciles", func(t *testing.T) {
		idx := newTestIndex(t, testEmbedder())
		err := idx.Hydrate(ctx, filepath.Join(t.TempDir(), "absent"), fakeLister{"alpha times"})
		require.NoError(t, err)
		assert.Equal(t, 1, idx.Size())
	})

	t.Run("hydrate twice is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		source := newTestIndex(t, testEmbedder())
		require.NoError(t, source.Insert(ctx, "alpha times"))
		require.NoError(t, source.WriteSnapshot(dir, "test-model"))

		idx := newTestIndex(t, testEmbedder())
		require.NoError(t, idx.Hydrate(ctx, dir, fakeLister{"alpha times"}))
		require.NoError(t, idx.Hydrate(ctx, dir, fakeLister{"alpha times"}))
		assert.Equal(t, 1, idx.Size())
	})
}
