package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"interviewgw/internal/ai"
	"interviewgw/internal/api"
	"interviewgw/internal/config"
	"interviewgw/internal/logger"
	"interviewgw/internal/session"
	"interviewgw/internal/speech"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if envErr != nil {
		zl.Info("no .env file found, using environment variables")
	}

	// Set Gin mode (default to release mode)
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	speechClient := speech.NewFromConfig(cfg, zl)

	if !cfg.LLMConfigured() {
		zl.Warn("DEEPSEEK_API_KEY not set; interview endpoints will serve mock data")
	}
	llm := ai.NewClient(ai.Config{
		APIKey:             cfg.DeepSeekAPIKey,
		BaseURL:            cfg.DeepSeekBaseURL,
		Model:              cfg.DeepSeekModel,
		Temperature:        cfg.LLMTemperature,
		MaxTokens:          cfg.LLMMaxTokens,
		Timeout:            cfg.UpstreamTimeout,
		BreakerFailures:    cfg.BreakerFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, zl)

	sessions := session.Open(context.Background(), cfg.RedisURL, cfg.SessionTTL, zl)
	defer sessions.Close()

	handler := api.NewHandler(api.Deps{
		TTS:           speechClient,
		ASR:           speechClient,
		LLM:           llm,
		Sessions:      sessions,
		Logger:        zl,
		MaxAudioBytes: cfg.MaxAudioBytes,
	})
	router := api.NewRouter(handler, zl)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("interview gateway running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	// Outbound calls may take up to the upstream timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
