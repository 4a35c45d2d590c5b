package dto

import (
	"docchat-be/pkg/store"
)

type SendChatRequest struct {
	Question string `json:"question" validate:"required"`
}

type SendChatResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

type ChatHistoryResponse struct {
	History []store.ChatMessage `json:"history"`
	Count   int                 `json:"count"`
}
