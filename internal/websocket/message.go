package websocket

import (
	"encoding/json"
	"time"
)

// MessageType определяет типы сообщений
type MessageType string

const (
	// Системные типы
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// Ход диалога
	TypeChat  MessageType = "chat"
	TypeReply MessageType = "reply"

	// Сброс истории
	TypeReset     MessageType = "reset"
	TypeResetDone MessageType = "reset_done"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
