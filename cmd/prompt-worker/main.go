package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/dago-node-prompt/internal/assemble"
	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/config"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/aescanero/dago-node-prompt/internal/store"
	"github.com/aescanero/dago-node-prompt/internal/tokenizer"
	"github.com/aescanero/dago-node-prompt/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting prompt worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize tokenizer (optional, token_size fails without it)
	tok := initTokenizer(cfg.TokenizerEncoding, logger)

	// Initialize block store
	blockStore := store.NewRedisBlockStore(redisClient, cfg.BlockKeyPrefix, cfg.BlockTTL, logger)

	// Initialize renderer and assembler
	renderer := block.NewRenderer(nil, logger)
	assembler := assemble.NewAssembler(renderer, logger)
	logger.Info("renderer initialized",
		zap.Strings("filters", renderer.Engine().Filters()),
		zap.Strings("macros", renderer.Engine().Macros()),
	)

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, assembler, blockStore, tok, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, cfg.StreamKey, cfg.ConsumerGroup, tok != nil, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("prompt worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	logger.Info("worker stopped gracefully")
}

// initLogger builds a JSON production logger at the configured level
func initLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stdout"}
	return cfg.Build()
}

// initTokenizer loads the BPE encoding, returning nil when disabled or unavailable
func initTokenizer(encoding string, logger *zap.Logger) prompt.Tokenizer {
	if encoding == "" {
		logger.Warn("tokenizer disabled (token_size will fail)")
		return nil
	}

	tok, err := tokenizer.New(encoding)
	if err != nil {
		logger.Warn("failed to load tokenizer (token_size will fail)",
			zap.String("encoding", encoding),
			zap.Error(err),
		)
		return nil
	}

	logger.Info("tokenizer initialized", zap.String("encoding", encoding))
	return tok
}
