package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/mindsync/internal/handlers"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Chat      *handlers.ChatHandler
	Billing   *handlers.BillingHandler
	WebSocket *handlers.WebSocketHandler
}

type Guards struct {
	Auth       gin.HandlerFunc
	WSAuth     gin.HandlerFunc
	Subscribed gin.HandlerFunc
}

func APIEndpoints(r *gin.Engine, h *Handlers, g Guards) {
	// Auth endpoints
	r.POST("/register", h.Auth.Register)
	r.POST("/token", h.Auth.Token)

	// Stripe подписывает тело сам, токена тут нет
	r.POST("/webhook", h.Billing.Webhook)

	authed := r.Group("/", g.Auth)
	{
		authed.POST("/logout", h.Auth.Logout)
		authed.GET("/users/me", h.User.GetMe)
		authed.POST("/users/me/avatar", h.User.UploadAvatar)

		authed.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)
		authed.POST("/create-portal-session", h.Billing.CreatePortalSession)
		authed.POST("/verify-payment", h.Billing.VerifyPayment)
	}

	paid := r.Group("/", g.Auth, g.Subscribed)
	{
		paid.POST("/chat", h.Chat.Chat)
		paid.POST("/talk", h.Chat.Talk)
		paid.GET("/chat/history", h.Chat.History)
		paid.GET("/reset", h.Chat.Reset)
	}

	r.GET("/ws", g.WSAuth, g.Subscribed, h.WebSocket.HandleWebSocket)
}

// StaticFiles раздаёт фронтенд на всё, что не совпало с API
func StaticFiles(r *gin.Engine, dir string) {
	files := http.FileServer(http.Dir(dir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
