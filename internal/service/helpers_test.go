package service

import (
	"context"
	"sync"

	"docchat-be/pkg/documents"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm"
)

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubEmbedder delegates to a per-test function.
type stubEmbedder struct {
	fn func(text string) ([]float32, error)
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	values, err := s.fn(text)
	if err != nil {
		return nil, err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: values},
	}, nil
}

// stubLLM records prompts and applied options, replying with a canned
// answer (or error).
type stubLLM struct {
	mu           sync.Mutex
	prompts      []string
	temperatures []float64
	answer       string
	err          error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) > 0 {
		return s.Generate(ctx, history[len(history)-1].Content, opts...)
	}
	return s.Generate(ctx, "", opts...)
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.temperatures = append(s.temperatures, options.Temperature)
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

// stubLoader serves in-memory documents keyed by path.
type stubLoader struct {
	texts map[string]string
	errs  map[string]error
}

func (s *stubLoader) Load(path string) (*documents.Document, error) {
	if err, ok := s.errs[path]; ok {
		return nil, err
	}
	text, ok := s.texts[path]
	if !ok {
		return nil, documents.ErrUnsupportedFileType
	}
	return &documents.Document{Source: path, Text: text}, nil
}

// recordPublisher captures file-release events.
type recordPublisher struct {
	mu       sync.Mutex
	released [][]string
}

func (r *recordPublisher) PublishFileRelease(sessionID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, paths)
	return nil
}

func (r *recordPublisher) releasedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.released)
}

func (r *recordPublisher) releasedBatches() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.released...)
}
