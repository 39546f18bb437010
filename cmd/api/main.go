package main

import (
	"log"

	"github.com/anime-shed/lab-report-inspector-go/internal/cli"
	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
)

func main() {
	// Load .env before reading the environment
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Configure(cfg.LogLevel, nil)

	if err := cli.Serve(cfg); err != nil {
		logger.WithError(err).Fatal("Server exited with error")
	}
}
