package vectorindex

import (
	"errors"
	"math"
	"sort"

	"docchat-be/pkg/store"
)

var ErrLengthMismatch = errors.New("chunks and vectors length mismatch")

// Index is a brute-force cosine-similarity index over chunk embeddings.
// Vectors are normalized at build time so similarity reduces to a dot product.
// An Index is immutable after Build and safe for concurrent Search calls.
type Index struct {
	chunks  []store.Chunk
	vectors [][]float32
}

var _ store.VectorIndex = &Index{}

// Build constructs a fresh index from one ingestion batch. The i-th vector
// must be the embedding of the i-th chunk.
func Build(chunks []store.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrLengthMismatch
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = normalize(v)
	}

	return &Index{
		chunks:  append([]store.Chunk(nil), chunks...),
		vectors: normalized,
	}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Search returns up to topK chunks ordered by descending cosine similarity
// to the query vector.
func (ix *Index) Search(vector []float32, topK int) []store.SearchResult {
	if topK <= 0 || len(ix.chunks) == 0 {
		return nil
	}

	query := normalize(vector)
	results := make([]store.SearchResult, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = store.SearchResult{
			Chunk: ix.chunks[i],
			Score: dot(ix.vectors[i], query),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize scales a vector to unit length. Cosine similarity via dot product
// requires magnitude = 1.
func normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
