package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"tallysentry/internal/backend"
	"tallysentry/internal/config"
	"tallysentry/internal/evidence"
	"tallysentry/internal/export"
	"tallysentry/internal/history"
	"tallysentry/internal/session"
	"tallysentry/internal/submission"
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

	logger.Info("Starting monitor client",
		zap.String("backend", cfg.Backend.BaseURL))

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)

	formView := newConsoleFormView(os.Stdout)
	historyView := newConsoleHistoryView(os.Stdout)

	encoder := evidence.NewEncoder(logger)
	synchronizer := history.NewSynchronizer(client, historyView, logger)
	controller := session.NewController(client, synchronizer, logger)
	manager := submission.NewManager(controller.MonitorID, encoder, client, formView, logger)
	writer := export.NewExcelWriter(cfg.Export.OutputDir, logger)

	app := newApp(controller, manager, synchronizer, writer, formView, logger)
	if err := app.run(os.Stdin, os.Stdout); err != nil {
		logger.Error("Client exited with error", zap.Error(err))
		os.Exit(1)
	}
}
