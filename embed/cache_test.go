package embed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptiq/tagrank/embed"
	"github.com/synaptiq/tagrank/embed/mock"
)

func TestTagVectorCacheMiss(t *testing.T) {
	cache := embed.NewTagVectorCache(nil)

	_, ok := cache.TagVector("winter")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestTagVectorCachePutAndGet(t *testing.T) {
	cache := embed.NewTagVectorCache(nil)
	cache.Put("Winter", []float32{0.1, 0.2, 0.3})

	vector, ok := cache.TagVector("winter")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)

	// Lookups normalize the same way stores do.
	vector, ok = cache.TagVector("  WINTER  ")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestTagVectorCachePutCopiesInput(t *testing.T) {
	cache := embed.NewTagVectorCache(nil)
	source := []float32{1, 2, 3}
	cache.Put("tag", source)

	source[0] = 99
	vector, ok := cache.TagVector("tag")
	require.True(t, ok)
	assert.Equal(t, float32(1), vector[0])
}

func TestTagVectorCachePutIgnoresEmpty(t *testing.T) {
	cache := embed.NewTagVectorCache(nil)
	cache.Put("tag", nil)
	cache.Put("", []float32{1})

	assert.Equal(t, 0, cache.Len())
}

func TestTagVectorCacheWarm(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.Dimension = 8
	cache := embed.NewTagVectorCache(embedder)

	err := cache.Warm(context.Background(), []string{"coffee", "Morning", "coffee"})
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 1, embedder.CallCount())

	vector, ok := cache.TagVector("morning")
	require.True(t, ok)
	assert.Len(t, vector, 8)
}

func TestTagVectorCacheWarmSkipsCached(t *testing.T) {
	embedder := mock.NewEmbedder()
	cache := embed.NewTagVectorCache(embedder)

	require.NoError(t, cache.Warm(context.Background(), []string{"coffee"}))
	require.NoError(t, cache.Warm(context.Background(), []string{"coffee"}))

	assert.Equal(t, 1, embedder.CallCount())
}

func TestTagVectorCacheWarmError(t *testing.T) {
	embedFailure := errors.New("embedding service down")
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedFailure
	}
	cache := embed.NewTagVectorCache(embedder)

	err := cache.Warm(context.Background(), []string{"coffee"})
	assert.ErrorIs(t, err, embedFailure)
	assert.Equal(t, 0, cache.Len())
}

func TestTagVectorCacheWarmWithoutEmbedder(t *testing.T) {
	cache := embed.NewTagVectorCache(nil)

	require.NoError(t, cache.Warm(context.Background(), []string{"coffee"}))
	assert.Equal(t, 0, cache.Len())
}

func TestMockEmbedderDeterminism(t *testing.T) {
	embedder := mock.NewEmbedder()

	first, err := embedder.EmbedText(context.Background(), "winter jacket")
	require.NoError(t, err)
	second, err := embedder.EmbedText(context.Background(), "winter jacket")
	require.NoError(t, err)
	other, err := embedder.EmbedText(context.Background(), "summer dress")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, mock.DefaultDimension)
}
