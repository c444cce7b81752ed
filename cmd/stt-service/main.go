package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sttstack/sttstack/adapters/stt"
	"github.com/sttstack/sttstack/domain"
	"github.com/sttstack/sttstack/internal/api"
	"github.com/sttstack/sttstack/internal/auth"
	"github.com/sttstack/sttstack/internal/config"
	"github.com/sttstack/sttstack/internal/websocket"
)

func main() {
	cfg := config.Load("8082")

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()
	e.Validator = api.NewValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.AuthSecret != "" {
		e.Use(auth.Middleware([]byte(cfg.AuthSecret), logger))
	}

	// Initialize the mock model
	modelConfig, err := domain.NewModelConfig("mock", "/models/mock", nil)
	if err != nil {
		logger.Fatal("invalid model configuration", zap.Error(err))
	}
	model, err := stt.NewMockSpeechToTextModel(modelConfig, logger)
	if err != nil {
		logger.Fatal("failed to build model", zap.Error(err))
	}

	// Load eagerly so the first transcription does not pay the load delay.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := model.LoadModel(loadCtx); err != nil {
		logger.Warn("Model load failed at startup, load via /model/load", zap.Error(err))
	}
	cancelLoad()

	// Initialize WebSocket hub for streaming transcription
	hub := websocket.NewHub(model, logger)

	// Initialize API routes
	api.InitSTTRoutes(e, model, hub, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Speech-to-text service started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(level string) *zap.Logger {
	zapConfig := zap.NewProductionConfig()
	if parsed, err := zap.ParseAtomicLevel(level); err == nil {
		zapConfig.Level = parsed
	}
	logger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
