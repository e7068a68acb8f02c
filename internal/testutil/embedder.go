package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// FakeEmbedder produces deterministic embeddings without a network call.
// Identical texts map to identical unit vectors; distinct texts map to
// independent random unit vectors, which in 768 dimensions are close to
// orthogonal. That gives integration tests a usable similarity signal:
// querying with a chunk's exact text ranks that chunk first, everything
// else lands near zero similarity.
type FakeEmbedder struct {
	Dimension int
}

// NewFakeEmbedder returns a FakeEmbedder with the production dimension.
func NewFakeEmbedder() *FakeEmbedder {
	return &FakeEmbedder{Dimension: 768}
}

// Embed implements ai.Embedder.
func (e *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

func (e *FakeEmbedder) vectorFor(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.Dimension)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
