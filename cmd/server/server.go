package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/mindsync/internal/ai"
	"github.com/thereayou/mindsync/internal/billing"
	"github.com/thereayou/mindsync/internal/config"
	"github.com/thereayou/mindsync/internal/conversation"
	"github.com/thereayou/mindsync/internal/database"
	"github.com/thereayou/mindsync/internal/handlers"
	"github.com/thereayou/mindsync/internal/logging"
	"github.com/thereayou/mindsync/internal/middleware"
	"github.com/thereayou/mindsync/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Config     *config.Config
	log        logging.Logger
}

func NewServer(cfg *config.Config, log logging.Logger) (*Server, error) {
	ctx := context.Background()

	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL, cfg.SQLitePath); err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}
	if cfg.DatabaseURL == "" {
		log.Warn(ctx, "DATABASE_URL is not set, using sqlite", "path", cfg.SQLitePath)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(redisOpts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}
	} else {
		log.Warn(ctx, "REDIS_URL is not set, logout is disabled")
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	blacklist := auth.NewBlacklist(rdb)

	aiClient := ai.NewClient(cfg.OpenAIKey, ai.Options{
		ChatModel:          cfg.ChatModel,
		TTSModel:           cfg.TTSModel,
		TTSVoice:           cfg.TTSVoice,
		TranscriptionModel: cfg.TranscriptionModel,
	})
	stripeClient := billing.NewStripe(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		FrontendURL:   cfg.FrontendURL,
	}, nil)

	conv := conversation.NewService(
		dbConn,
		conversation.NewAssembler(dbConn, cfg.ContextWindow),
		aiClient, aiClient, aiClient,
		log,
	)

	router := gin.Default()
	APIEndpoints(router, &Handlers{
		Auth:      handlers.NewAuthHandler(dbConn, jwtMgr, blacklist, log),
		User:      handlers.NewUserHandler(dbConn, log),
		Chat:      handlers.NewChatHandler(dbConn, conv, log),
		Billing:   handlers.NewBillingHandler(dbConn, stripeClient, log),
		WebSocket: handlers.NewWebSocketHandler(conv, log, sameOrigin(cfg.FrontendURL)),
	}, Guards{
		Auth:       middleware.AuthMiddleware(jwtMgr, blacklist),
		WSAuth:     middleware.WSAuthMiddleware(jwtMgr, blacklist),
		Subscribed: middleware.RequireSubscription(dbConn),
	})
	StaticFiles(router, cfg.StaticDir)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Config:     cfg,
		log:        log,
	}, nil
}

func (s *Server) Run() error {
	s.log.Info(context.Background(), "server starting", "port", s.Config.Port)
	return s.Router.Run(":" + s.Config.Port)
}

// sameOrigin разрешает апгрейд без Origin или с хоста фронтенда
func sameOrigin(frontendURL string) func(r *http.Request) bool {
	allowed := ""
	if u, err := url.Parse(frontendURL); err == nil {
		allowed = u.Host
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == allowed || u.Host == r.Host
	}
}
