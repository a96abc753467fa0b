package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/conversation"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/internal/services"
)

const apologyText = "I am having trouble thinking right now."

// Whisper не принимает файлы больше 25 MB
const maxAudioBytes = 25 << 20

type ChatHandler struct {
	db   *database.Database
	conv *conversation.Service
	log  logging.Logger
}

func NewChatHandler(db *database.Database, conv *conversation.Service, log logging.Logger) *ChatHandler {
	return &ChatHandler{db: db, conv: conv, log: log}
}

// Chat текстовый ход диалога. Сбой модели или синтеза отдаётся как 200
// с извинением и текстом ошибки.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.conv.Chat(c.Request.Context(), userID, req.Message)
	if err != nil {
		h.logTurnError(c, userID, err)
		if errors.Is(err, conversation.ErrSaveInput) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
			return
		}
		c.JSON(http.StatusOK, dto.DegradedChatResponse{Response: apologyText, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{Response: reply.Text, Audio: reply.Audio})
}

// Talk голосовой ход: multipart поле file с записью
func (h *ChatHandler) Talk(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	f, ok := openUpload(c, maxAudioBytes)
	if !ok {
		return
	}
	defer f.Close()

	reply, err := h.conv.Talk(c.Request.Context(), userID, f)
	if err != nil {
		h.logTurnError(c, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.TalkResponse{
		UserText: reply.UserText,
		AIText:   reply.Text,
		Audio:    reply.Audio,
	})
}

// History возвращает всю историю пользователя, старые первыми
func (h *ChatHandler) History(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messages, err := h.db.GetMessages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		result[i] = formatMessageResponse(&msg)
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) Reset(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	if err := h.conv.Reset(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (h *ChatHandler) logTurnError(c *gin.Context, userID uuid.UUID, err error) {
	h.log.Error(c.Request.Context(), "conversation turn failed",
		"user_id", userID,
		"service", services.KindOf(err),
		"retryable", services.Retryable(err),
		"error", err,
	)
}

func formatMessageResponse(msg *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
	}
}
