package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsLedger/internal/api"
	"newsLedger/internal/config"
	"newsLedger/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	router := api.NewRouter(api.Deps{
		Store:       a.store,
		Submitter:   a.submitter,
		Verifier:    a.verifier,
		Fetcher:     a.extractor,
		Identity:    a.identity,
		Mode:        a.mode,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.Named("http"),
	})
	server := api.NewServer(cfg.Listen, router, logger)

	logger.Info("server start",
		zap.String("listen", cfg.Listen),
		zap.String("store", cfg.DB.Store),
		zap.String("chain_mode", string(a.mode)),
		zap.Strings("cors_origins", cfg.CORSOrigins),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
