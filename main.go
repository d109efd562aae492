package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tutor-service/config"
	"tutor-service/llm"
	"tutor-service/metrics"
	"tutor-service/openai"
	"tutor-service/stubllm"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("Warning: .env file not found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	setupLogging(cfg)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	streamer, err := newStreamer(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure upstream")
	}

	metrics.Register()

	log.WithFields(log.Fields{
		"port":          cfg.Port,
		"source":        streamer.SourceName(),
		"token_cap":     cfg.SessionTokenCap,
		"chars_per_tok": cfg.CharsPerToken,
		"char_limit":    cfg.CharLimit(),
	}).Info("Starting the tutor service...")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, streamer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func newStreamer(cfg *config.Config) (llm.Streamer, error) {
	switch cfg.LLMProvider {
	case config.ProviderStub:
		return stubllm.NewClient(), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY environment variable is required")
		}
		return openai.NewClient(cfg), nil
	default:
		return nil, errors.New("unknown LLM_PROVIDER " + cfg.LLMProvider)
	}
}
