package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-be/internal/apperror"
)

func fixedEmbedder() *stubEmbedder {
	return &stubEmbedder{fn: func(text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}}
}

func TestIngestBuildsAndAttachesIndex(t *testing.T) {
	sessions := newTestSessions()
	id := sessions.Create()

	loader := &stubLoader{texts: map[string]string{
		"doc.pdf": strings.Repeat("a", 2000),
	}}
	ingest := NewIngestService(sessions, loader, fixedEmbedder(), &recordPublisher{}, 600, 150, nopLogger{})

	result, err := ingest.Ingest(context.Background(), id, []string{"doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentCount)
	// 2000 chars at size 600 / overlap 150 advance 450 per chunk:
	// starts at 0, 450, 900, 1350, 1800 -> 5 chunks.
	assert.Equal(t, 5, result.ChunkCount)

	sess, err := sessions.Get(id)
	require.NoError(t, err)
	require.True(t, sess.HasDocuments())
	assert.Equal(t, 5, sess.Index.Len())
	assert.Equal(t, []string{"doc.pdf"}, sess.UploadedFiles)
}

func TestIngestSkipsUnreadableFiles(t *testing.T) {
	sessions := newTestSessions()
	id := sessions.Create()

	loader := &stubLoader{
		texts: map[string]string{"good.pdf": "usable content"},
		errs:  map[string]error{"bad.pdf": errors.New("corrupt xref table")},
	}
	ingest := NewIngestService(sessions, loader, fixedEmbedder(), &recordPublisher{}, 600, 150, nopLogger{})

	result, err := ingest.Ingest(context.Background(), id, []string{"bad.pdf", "good.pdf"})
	require.NoError(t, err, "one unreadable file must not fail the batch")
	assert.Equal(t, 1, result.DocumentCount)
	assert.Equal(t, 1, result.ChunkCount)
}

func TestIngestFailsWhenNothingLoads(t *testing.T) {
	sessions := newTestSessions()
	id := sessions.Create()

	loader := &stubLoader{errs: map[string]error{
		"one.pdf": errors.New("unreadable"),
		"two.pdf": errors.New("unreadable"),
	}}
	ingest := NewIngestService(sessions, loader, fixedEmbedder(), &recordPublisher{}, 600, 150, nopLogger{})

	_, err := ingest.Ingest(context.Background(), id, []string{"one.pdf", "two.pdf"})
	assert.ErrorIs(t, err, apperror.ErrNoDocumentsLoaded)

	sess, getErr := sessions.Get(id)
	require.NoError(t, getErr)
	assert.False(t, sess.HasDocuments(), "a failed batch must not attach anything")
}

func TestIngestEmbeddingFailureAttachesNothing(t *testing.T) {
	sessions := newTestSessions()
	id := sessions.Create()

	loader := &stubLoader{texts: map[string]string{"doc.pdf": "content"}}
	embedder := &stubEmbedder{fn: func(text string) ([]float32, error) {
		return nil, errors.New("backend down")
	}}
	ingest := NewIngestService(sessions, loader, embedder, &recordPublisher{}, 600, 150, nopLogger{})

	_, err := ingest.Ingest(context.Background(), id, []string{"doc.pdf"})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Status)

	sess, getErr := sessions.Get(id)
	require.NoError(t, getErr)
	assert.False(t, sess.HasDocuments())
}

func TestIngestReplacesIndexWholesale(t *testing.T) {
	sessions := newTestSessions()
	id := sessions.Create()

	loader := &stubLoader{texts: map[string]string{
		"first.pdf":  "first batch",
		"second.pdf": "second batch",
	}}
	publisher := &recordPublisher{}
	ingest := NewIngestService(sessions, loader, fixedEmbedder(), publisher, 600, 150, nopLogger{})

	_, err := ingest.Ingest(context.Background(), id, []string{"first.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 0, publisher.releasedCount(), "the first batch displaces nothing")

	_, err = ingest.Ingest(context.Background(), id, []string{"second.pdf"})
	require.NoError(t, err)

	sess, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"second.pdf"}, sess.UploadedFiles,
		"a new batch replaces the owned paths, it does not merge them")
	assert.Equal(t, 1, sess.Index.Len())

	// The superseded batch's files go to file release instead of leaking.
	require.Equal(t, 1, publisher.releasedCount())
	assert.Equal(t, []string{"first.pdf"}, publisher.releasedBatches()[0])
}

func TestIngestUnknownSession(t *testing.T) {
	sessions := newTestSessions()

	loader := &stubLoader{texts: map[string]string{"doc.pdf": "content"}}
	ingest := NewIngestService(sessions, loader, fixedEmbedder(), &recordPublisher{}, 600, 150, nopLogger{})

	_, err := ingest.Ingest(context.Background(), "ghost", []string{"doc.pdf"})
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
}
