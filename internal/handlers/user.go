package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/avatar"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/models"
)

type UserHandler struct {
	db  *database.Database
	log logging.Logger
}

func NewUserHandler(db *database.Database, log logging.Logger) *UserHandler {
	return &UserHandler{db: db, log: log}
}

// GetMe возвращает информацию о текущем пользователе
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// UploadAvatar уменьшает картинку до 300x300 и сохраняет её в профиле
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	f, ok := openUpload(c, avatar.MaxUploadBytes)
	if !ok {
		return
	}
	defer f.Close()

	dataURI, err := avatar.Process(f)
	if err != nil {
		if errors.Is(err, avatar.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image"})
			return
		}
		h.log.Error(c.Request.Context(), "failed to process avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process image"})
		return
	}

	if err := h.db.UpdateAvatar(c.Request.Context(), userID, dataURI); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar": dataURI})
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		IsActive:     user.IsActive,
		IsSubscribed: user.IsSubscribed,
		Avatar:       user.Avatar,
	}
}
