package service

import (
	"context"

	"docchat-be/internal/apperror"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/documents"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/store"
	"docchat-be/pkg/utils"
	"docchat-be/pkg/vectorindex"
)

type IIngestService interface {
	// Ingest loads, chunks, embeds and indexes the given files, then attaches
	// the finished index to the session in one atomic update.
	Ingest(ctx context.Context, sessionID string, paths []string) (*dto.IngestResult, error)
}

type ingestService struct {
	sessions          ISessionService
	loader            documents.Loader
	embeddingProvider embedding.EmbeddingProvider
	publisher         IPublisherService
	chunkSize         int
	chunkOverlap      int
	log               logger.ILogger
}

func NewIngestService(
	sessions ISessionService,
	loader documents.Loader,
	embeddingProvider embedding.EmbeddingProvider,
	publisher IPublisherService,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		sessions:          sessions,
		loader:            loader,
		embeddingProvider: embeddingProvider,
		publisher:         publisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		log:               log,
	}
}

func (is *ingestService) Ingest(ctx context.Context, sessionID string, paths []string) (*dto.IngestResult, error) {
	// 1. Load. One file failing to parse is not fatal for the batch; the
	// batch fails only when nothing could be loaded at all.
	var docs []*documents.Document
	for _, path := range paths {
		doc, err := is.loader.Load(path)
		if err != nil {
			is.log.Warn("ingest", "skipping unreadable file", map[string]interface{}{
				"session_id": sessionID,
				"path":       path,
				"error":      err.Error(),
			})
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, apperror.ErrNoDocumentsLoaded
	}

	// 2. Split.
	var chunks []store.Chunk
	for _, doc := range docs {
		for i, text := range utils.SplitText(doc.Text, is.chunkSize, is.chunkOverlap) {
			chunks = append(chunks, store.Chunk{
				Source: doc.Source,
				Index:  i,
				Text:   text,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, apperror.ErrNoDocumentsLoaded
	}

	// 3. Embed + index. No session lock is held during provider calls.
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		res, err := is.embeddingProvider.Generate(chunk.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, apperror.Provider("embedding", err)
		}
		vectors[i] = res.Embedding.Values
	}

	index, err := vectorindex.Build(chunks, vectors)
	if err != nil {
		return nil, apperror.Provider("indexing", err)
	}

	// 4. Attach. All-or-nothing: the session sees either its previous index
	// or the complete new batch, never a partial one. A concurrent ingestion
	// for the same session serializes here; last writer wins.
	var displaced []string
	err = is.sessions.Update(sessionID, func(sess *store.Session) {
		displaced = sess.UploadedFiles
		sess.Index = index
		sess.UploadedFiles = append([]string(nil), paths...)
	})
	if err != nil {
		return nil, err
	}

	// The superseded batch's files have no owner anymore; release them.
	if len(displaced) > 0 {
		if err := is.publisher.PublishFileRelease(sessionID, displaced); err != nil {
			is.log.Warn("ingest", "failed to publish displaced file release", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	is.log.Info("ingest", "ingestion batch attached", map[string]interface{}{
		"session_id": sessionID,
		"documents":  len(docs),
		"chunks":     len(chunks),
	})

	return &dto.IngestResult{
		DocumentCount: len(docs),
		ChunkCount:    len(chunks),
	}, nil
}
