package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/berserkgame/berserk-server-go/internal/config"
	"github.com/berserkgame/berserk-server-go/internal/game"
	"github.com/berserkgame/berserk-server-go/internal/game/cards"
	"github.com/berserkgame/berserk-server-go/internal/repository"
	"github.com/berserkgame/berserk-server-go/internal/server"
	"github.com/berserkgame/berserk-server-go/internal/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Berserk server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("content_hash", cards.ContentHash()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		logger.Warn("failed to initialize tracing", zap.Error(err))
	} else if cfg.Telemetry.Enabled {
		logger.Info("tracing initialized", zap.String("endpoint", cfg.Telemetry.Endpoint))
	}

	// Open result storage
	store, err := repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open result store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("result store initialized", zap.String("driver", cfg.Storage.Driver))

	opts := []server.Option{
		server.WithResultStore(store),
		server.WithVersion(version),
	}
	if cfg.Game.RecordReplays {
		opts = append(opts, server.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Storage.ReplayDir)))
		logger.Info("replay recording enabled", zap.String("dir", cfg.Storage.ReplayDir))
	}

	srv := server.New(cfg, logger, opts...)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("Berserk server initialized",
		zap.String("version", version),
		zap.Stringer("address", srv.Addr()),
		zap.Bool("tls", cfg.TLS.Enabled()),
		zap.Bool("websocket", cfg.WebSocket.Enabled),
		zap.Bool("admin", cfg.Admin.Enabled),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := srv.Stop(stopCtx); err != nil {
		logger.Warn("server did not stop cleanly", zap.Error(err))
	}
	if err := shutdownTracing(stopCtx); err != nil {
		logger.Warn("failed to flush traces", zap.Error(err))
	}
	cancel()

	logger.Info("Berserk server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
