package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/pkg/auth"
	"gorm.io/gorm"
)

const (
	UserIDKey = "userID"
	TokenKey  = "token"
	UserKey   = "user"
)

type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware проверяет JWT токен из заголовка Authorization
func AuthMiddleware(jwtManager *auth.JWTManager, blacklist *auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		authenticate(c, jwtManager, blacklist, token)
	}
}

// WSAuthMiddleware специальный middleware для WebSocket: браузер не умеет
// ставить заголовки при апгрейде, поэтому токен можно передать в ?token=
func WSAuthMiddleware(jwtManager *auth.JWTManager, blacklist *auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = auth.ExtractTokenFromHeader(c.Request)
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		authenticate(c, jwtManager, blacklist, token)
	}
}

func authenticate(c *gin.Context, jwtManager *auth.JWTManager, blacklist *auth.Blacklist, token string) {
	// Проверяем, не в черном списке ли токен
	revoked, err := blacklist.IsRevoked(c.Request.Context(), token)
	if err != nil || revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is blacklisted"})
		return
	}

	userID, err := jwtManager.UserID(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(UserIDKey, userID)
	c.Set(TokenKey, token)
	c.Next()
}

// RequireSubscription пускает дальше только активного пользователя с
// оплаченной подпиской. Ставится после AuthMiddleware.
func RequireSubscription(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(UserIDKey).(uuid.UUID)

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "inactive user"})
			return
		}

		if !user.IsSubscribed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "subscription required"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}
