package dto

import "time"

type SessionInfoResponse struct {
	SessionID        string    `json:"sessionId"`
	HasDocuments     bool      `json:"hasDocuments"`
	UploadedFiles    []string  `json:"uploadedFiles"`
	ChatHistoryCount int       `json:"chatHistoryCount"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActivity     time.Time `json:"lastActivity"`
}

type ClearSessionResponse struct {
	NewSessionID string `json:"newSessionId"`
}

type CleanupSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type HealthResponse struct {
	ActiveSessions int   `json:"activeSessions"`
	Timestamp      int64 `json:"timestamp"` // unix milliseconds
}

// FileReleaseMessage rides the in-process bus from the clear/sweep path to
// the consumer that deletes the files.
type FileReleaseMessage struct {
	SessionID string   `json:"session_id"`
	Paths     []string `json:"paths"`
}
