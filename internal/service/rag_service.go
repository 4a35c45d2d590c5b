package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docchat-be/internal/apperror"
	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm"
	"docchat-be/pkg/store"
)

type IRagService interface {
	Chat(ctx context.Context, sessionID string, question string) (*dto.SendChatResponse, error)
	History(sessionID string) ([]store.ChatMessage, error)
}

// ragService answers a question strictly from the session's documents:
// embed the question, retrieve the closest chunks, ground the prompt in them,
// generate, then record the exchange. Each stage fails the turn on its own;
// a failed turn leaves no trace in the history.
type ragService struct {
	sessions          ISessionService
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	topK              int
	temperature       float64
	log               logger.ILogger
}

func NewRagService(
	sessions ISessionService,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	topK int,
	temperature float64,
	log logger.ILogger,
) IRagService {
	return &ragService{
		sessions:          sessions,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		topK:              topK,
		temperature:       temperature,
		log:               log,
	}
}

func (rs *ragService) Chat(ctx context.Context, sessionID string, question string) (*dto.SendChatResponse, error) {
	sess, err := rs.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasDocuments() {
		return nil, apperror.ErrNoDocumentsUploaded
	}

	// Retrieval. The snapshot's index handle stays valid even if a concurrent
	// ingestion replaces it on the session; this turn just answers from the
	// batch it saw.
	queryEmbedding, err := rs.embeddingProvider.Generate(question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, apperror.Provider("embedding", err)
	}
	results := sess.Index.Search(queryEmbedding.Embedding.Values, rs.topK)

	prompt := fmt.Sprintf(constant.GroundedAnswerPromptV1, formatContext(results), question)

	answer, err := rs.llmProvider.Generate(ctx, prompt, llm.WithTemperature(rs.temperature))
	if err != nil {
		return nil, apperror.Provider("generation", err)
	}

	// Record the exchange in one atomic update so concurrent turns on other
	// sessions cannot interleave with this session's history.
	now := time.Now()
	err = rs.sessions.Update(sessionID, func(s *store.Session) {
		s.ChatHistory = append(s.ChatHistory,
			store.ChatMessage{Role: store.RoleUser, Content: question, Timestamp: now},
			store.ChatMessage{Role: store.RoleAssistant, Content: answer, Timestamp: now},
		)
	})
	if err != nil {
		return nil, err
	}

	rs.log.Info("rag", "chat turn answered", map[string]interface{}{
		"session_id": sessionID,
		"retrieved":  len(results),
	})

	return &dto.SendChatResponse{
		Question:  question,
		Answer:    answer,
		Timestamp: now.UnixMilli(),
	}, nil
}

func (rs *ragService) History(sessionID string) ([]store.ChatMessage, error) {
	sess, err := rs.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.ChatHistory, nil
}

// formatContext joins retrieved chunk texts with blank lines, best match first.
func formatContext(results []store.SearchResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
