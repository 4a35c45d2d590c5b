package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-be/pkg/store"
)

func chunksOf(texts ...string) []store.Chunk {
	chunks := make([]store.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = store.Chunk{Source: "doc.pdf", Index: i, Text: text}
	}
	return chunks
}

func TestBuildRejectsLengthMismatch(t *testing.T) {
	_, err := Build(chunksOf("a", "b"), [][]float32{{1, 0}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBuildEmpty(t *testing.T) {
	index, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
	assert.Nil(t, index.Search([]float32{1, 0}, 3))
}

func TestSearchOrdersByCosineSimilarity(t *testing.T) {
	index, err := Build(
		chunksOf("north", "east", "northeast"),
		[][]float32{
			{0, 1},
			{1, 0},
			{1, 1},
		},
	)
	require.NoError(t, err)

	results := index.Search([]float32{0, 1}, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "north", results[0].Chunk.Text)
	assert.Equal(t, "northeast", results[1].Chunk.Text)
	assert.Equal(t, "east", results[2].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSearchIgnoresVectorMagnitude(t *testing.T) {
	index, err := Build(
		chunksOf("long", "short"),
		[][]float32{
			{100, 0},
			{0, 0.001},
		},
	)
	require.NoError(t, err)

	// Direction decides, not length.
	results := index.Search([]float32{0, 5}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "short", results[0].Chunk.Text)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestSearchClampsTopK(t *testing.T) {
	index, err := Build(chunksOf("only"), [][]float32{{1, 0}})
	require.NoError(t, err)

	assert.Len(t, index.Search([]float32{1, 0}, 10), 1)
	assert.Nil(t, index.Search([]float32{1, 0}, 0))
	assert.Nil(t, index.Search([]float32{1, 0}, -1))
}

func TestBuildCopiesChunks(t *testing.T) {
	chunks := chunksOf("original")
	index, err := Build(chunks, [][]float32{{1, 0}})
	require.NoError(t, err)

	chunks[0].Text = "mutated"

	results := index.Search([]float32{1, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "original", results[0].Chunk.Text)
}
