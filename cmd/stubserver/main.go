package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"tallysentry/internal/config"
	"tallysentry/internal/stubserver"
	"tallysentry/pkg/database"
	"tallysentry/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting stub election backend",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(stubserver.Migrations()); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	store := stubserver.NewStore(db, logger)
	if err := seedMonitors(store, logger); err != nil {
		logger.Fatal("Failed to seed monitors", zap.Error(err))
	}

	server := stubserver.NewServer(stubserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

// seedMonitors creates development monitor accounts from the
// SEED_MONITORS env var, formatted as "id:password,id:password".
func seedMonitors(store *stubserver.Store, logger *zap.Logger) error {
	seeds := os.Getenv("SEED_MONITORS")
	if seeds == "" {
		return nil
	}

	for _, pair := range strings.Split(seeds, ",") {
		id, password, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" || password == "" {
			return fmt.Errorf("malformed SEED_MONITORS entry %q", pair)
		}
		if err := store.EnsureMonitor(context.Background(), id, password); err != nil {
			return err
		}
		logger.Info("Seeded monitor", zap.String("monitor_id", id))
	}
	return nil
}
