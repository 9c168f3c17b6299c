package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mazecom/labyrinth-server-go/internal/config"
	"github.com/mazecom/labyrinth-server-go/internal/referee"
	"github.com/mazecom/labyrinth-server-go/internal/repository"
	"github.com/mazecom/labyrinth-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting labyrinth server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	opts := []referee.Option{
		referee.WithObserver(referee.NewLoggingObserver(logger)),
	}

	if cfg.Database.URL != "" {
		db, dberr := repository.NewDB(ctx, cfg.Database, logger)
		if dberr != nil {
			logger.Fatal("failed to connect to database", zap.Error(dberr))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		results, rerr := repository.NewResultsRepository(ctx, db)
		if rerr != nil {
			logger.Fatal("failed to prepare outcome store", zap.Error(rerr))
		}
		opts = append(opts, referee.WithOutcomeSink(results))
	}

	refCfg := referee.Config{
		Columns:           cfg.Game.Columns,
		Rows:              cfg.Game.Rows,
		CallTimeout:       cfg.Remote.CallTimeout,
		MaxRounds:         cfg.Game.MaxRounds,
		MaxGoalGrants:     cfg.Game.MaxGoalGrants,
		UseProposedBoards: cfg.Game.UseProposedBoards,
	}
	ref := referee.New(refCfg, logger, opts...)

	signup := server.NewSignupServer(cfg.Server, logger)
	outcome, err := signup.Run(ctx, ref)
	if err != nil {
		logger.Fatal("game run failed", zap.Error(err))
	}

	logger.Info("server done",
		zap.Strings("winners", outcome.Winners),
		zap.Strings("ejected", outcome.Ejected),
	)
	fmt.Printf("[%s, %s]\n", formatNames(outcome.Winners), formatNames(outcome.Ejected))
}

func formatNames(names []string) string {
	out := "["
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", n)
	}
	return out + "]"
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
