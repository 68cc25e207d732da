package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartChatRequest struct {
	StartNewChat bool `json:"start_new_chat"`
}

type StartChatResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}

type AskRequest struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	Query     string    `json:"query" binding:"required"`
}

type AskResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

type ChatSessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	History []ChatSessionResponse `json:"history"`
}

type ChatMessageResponse struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessagesResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}
