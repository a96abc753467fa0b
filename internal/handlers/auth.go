package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/handlers/dto"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/internal/models"
	"github.com/thereayou/mindsync/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	blacklist  *auth.Blacklist
	log        logging.Logger
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, blacklist *auth.Blacklist, log logging.Logger) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, blacklist: blacklist, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := h.db.SaveUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		h.log.Error(c.Request.Context(), "failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusOK, dto.RegisterResponse{Email: user.Email, ID: user.ID})
}

// Token выдаёт JWT по форме username/password
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.FindUserByEmail(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken := c.MustGet(middleware.TokenKey).(string)

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.blacklist.Revoke(c.Request.Context(), rawToken, exp); err != nil {
		if errors.Is(err, auth.ErrBlacklistDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "logout is not available"})
			return
		}
		h.log.Error(c.Request.Context(), "failed to revoke token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	c.Status(http.StatusOK)
}
