package main

import (
	"context"
	"log"
	"os"

	"github.com/thereayou/mindsync/cmd/server"
	"github.com/thereayou/mindsync/internal/config"
	"github.com/thereayou/mindsync/internal/logging"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		log.Println(".env not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "server init failed", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error(context.Background(), "server run error", "error", err)
		os.Exit(1)
	}
}
