// Command server runs the wisdom-share API.
//
// Settings come from config.yaml (or CONFIG_PATH), an optional .env file
// and the environment; see internal/config. JWT_SECRET is required.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/wisdom-share/internal/config"
	"github.com/sakif/wisdom-share/internal/server"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("loading config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if !cfg.GitHubEnabled() {
		logger.Warn("GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, GitHub login is disabled")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
