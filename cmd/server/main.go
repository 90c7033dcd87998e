package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nvoss/agent-chat/internal/api"
	"github.com/nvoss/agent-chat/internal/config"
	"github.com/nvoss/agent-chat/internal/repository/mongo"
	"github.com/nvoss/agent-chat/internal/repository/redis"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("APP_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	setupLogging(cfg)

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting agent-chat API server")

	// Initialize database
	db, err := mongo.NewDB(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Close(context.Background())

	// Initialize Redis
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize router and agent bridge
	router, bridge := api.NewRouter(cfg, db, redisClient)

	// Run the bridge until shutdown; it reconnects on its own while the
	// context is live.
	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()
	go bridge.Run(bridgeCtx)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Drain in-flight requests before tearing the bridge down so replies
	// for just-accepted messages still land.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopBridge()

	log.Info().Msg("Server stopped")
}

// setupLogging applies the configured level and, when a log file is set,
// tees output into a daily-rotated file alongside the console.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.File == "" {
		return
	}

	dir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create log directory, file logging disabled")
		return
	}

	rotator, err := rotatelogs.New(
		cfg.Logging.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.Logging.File),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(cfg.Logging.MaxAgeDays)*24*time.Hour),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open rotating log file, file logging disabled")
		return
	}

	var console io.Writer = os.Stderr
	if !cfg.IsProduction() {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(console, rotator))
}
