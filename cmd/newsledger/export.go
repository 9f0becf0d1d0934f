package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsLedger/internal/config"
	"newsLedger/internal/storage"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Server.DB, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.Reset(); err != nil {
		return err
	}

	n, err := storage.Export(ctx, store, sink, cfg.BatchSize)
	if err != nil {
		return err
	}
	logger.Info("export finished", zap.Int("articles", n), zap.String("out", cfg.Out))
	return nil
}
