package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/mindsync/internal/conversation"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/services"
	ws "github.com/thereayou/mindsync/internal/websocket"
)

// WebSocketHandler ведёт диалог через WebSocket теми же ходами, что и /chat
type WebSocketHandler struct {
	conv     *conversation.Service
	log      logging.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler
func NewWebSocketHandler(conv *conversation.Service, log logging.Logger, checkOrigin func(r *http.Request) bool) *WebSocketHandler {
	return &WebSocketHandler{
		conv: conv,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn(c.Request.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := ws.NewClient(conn, userID, h.log.With("user_id", userID))
	h.log.Debug(c.Request.Context(), "websocket connected", "user_id", userID, "client_id", client.ID)

	go client.WritePump()
	go client.ReadPump(h)
}

func (h *WebSocketHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *ws.Message) error {
	switch msg.Type {
	case ws.TypeChat:
		var req dto.ChatRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.Message == "" {
			return ws.ErrInvalidMessage
		}

		reply, err := h.conv.Chat(ctx, client.UserID, req.Message)
		if err != nil {
			h.log.Error(ctx, "websocket turn failed",
				"user_id", client.UserID,
				"service", services.KindOf(err),
				"retryable", services.Retryable(err),
				"error", err,
			)
			return err
		}

		return client.SendMessage(ws.TypeReply, dto.ChatResponse{Response: reply.Text, Audio: reply.Audio})

	case ws.TypeReset:
		if err := h.conv.Reset(ctx, client.UserID); err != nil {
			return err
		}
		return client.SendMessage(ws.TypeResetDone, gin.H{"status": "reset"})

	default:
		return ws.ErrUnknownType
	}
}
