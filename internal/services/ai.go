package services

import "context"

// Роли на стороне языковой модели
const (
	ModelRoleSystem    = "system"
	ModelRoleUser      = "user"
	ModelRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Transcriber interface {
	// Transcribe читает аудиофайл по пути path
	Transcribe(ctx context.Context, path string) (string, error)
}

