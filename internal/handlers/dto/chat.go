package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Audio    string `json:"audio"`
}

// DegradedChatResponse отдаётся со статусом 200, когда модель или синтез речи недоступны
type DegradedChatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type TalkResponse struct {
	UserText string `json:"user_text"`
	AIText   string `json:"ai_text"`
	Audio    string `json:"audio"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
