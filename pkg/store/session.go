package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a session's conversational record.
// Immutable once appended; ordering is insertion order.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Chunk is a bounded span of normalized text derived from one source document.
// It is the unit of embedding and retrieval.
type Chunk struct {
	Source string `json:"source"` // originating file path
	Index  int    `json:"index"`  // position within the source document
	Text   string `json:"text"`
}

// SearchResult is a chunk matched by a similarity query, with its score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// VectorIndex is the nearest-neighbor capability a session's documents expose.
// Implementations are immutable after construction and safe for concurrent reads.
type VectorIndex interface {
	Search(vector []float32, topK int) []SearchResult
	Len() int
}

// Session is the in-memory state owned by one client session.
//
// The index, once attached, is replaced wholesale by each ingestion batch and
// never shared across sessions. UploadedFiles are the paths the session owns
// and that must be released on teardown.
type Session struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	LastActivity  time.Time     `json:"last_activity"`
	Index         VectorIndex   `json:"-"` // nil until first successful ingestion
	ChatHistory   []ChatMessage `json:"chat_history"`
	UploadedFiles []string      `json:"uploaded_files"`
}

// HasDocuments reports whether at least one ingestion batch has been attached.
func (s *Session) HasDocuments() bool {
	return s.Index != nil
}
