package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}

	_, err := CosineSimilarity([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}

func TestFindTopK(t *testing.T) {
	corpus := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
		{1, 0, 0}, // wrong dimension, skipped
		{1, 0.1},
	}

	results, err := FindTopK([]float32{1, 0}, corpus, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 4, results[1].Index)
	assert.True(t, results[0].Similarity >= results[1].Similarity)

	all, err := FindTopK([]float32{1, 0}, corpus, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = FindTopK(nil, corpus, 3)
	assert.Error(t, err)
}

type fakeEngine struct{ queried bool }

func (f *fakeEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (f *fakeEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func (f *fakeEngine) Dimensions() int { return 1 }
func (f *fakeEngine) Name() string    { return "fake" }

type fakeQueryEngine struct{ fakeEngine }

func (f *fakeQueryEngine) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queried = true
	return []float32{math.MaxFloat32}, nil
}

func TestEmbedQueryPrefersQueryEmbedder(t *testing.T) {
	plain := &fakeEngine{}
	vec, err := EmbedQuery(context.Background(), plain, "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vec)

	q := &fakeQueryEngine{}
	_, err = EmbedQuery(context.Background(), q, "abc")
	require.NoError(t, err)
	assert.True(t, q.queried)
}

func TestNewEngineRequiresKey(t *testing.T) {
	_, err := NewEngine(DefaultConfig())
	assert.Error(t, err)
}

func TestNormalizeTaskType(t *testing.T) {
	assert.Equal(t, "RETRIEVAL_DOCUMENT", normalizeTaskType(""))
	assert.Equal(t, "CLUSTERING", normalizeTaskType("CLUSTERING"))
	assert.Equal(t, "SEMANTIC_SIMILARITY", normalizeTaskType("bogus"))
}
