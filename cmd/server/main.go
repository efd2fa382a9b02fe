package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/api"
	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/services"
	"github.com/codyseavey/pokecard-lookup/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	english := services.NewPokemonTCGService(cfg.English, logger)
	if cfg.English.APIKey == "" {
		logger.Warn("POKEMONTCG_API_KEY not set, requests are subject to anonymous rate limits")
	}

	// The Japanese source is optional; without it the "all" scope is English only
	var japanese services.CardSource
	if cfg.Japanese.Enabled() {
		japanese = services.NewJapaneseTCGService(cfg.Japanese, logger)
		logger.Info("japanese card source enabled", zap.String("base_url", cfg.Japanese.BaseURL))
	}

	searchService := services.NewSearchService(english, japanese, logger)
	sessions := session.NewStore(cfg.Session.MaxSessions, cfg.GetSessionTTL(), logger)

	// Setup router
	router := api.SetupRouter(cfg, searchService, sessions, logger)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-quit:
	}
	logger.Info("shutting down server")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
