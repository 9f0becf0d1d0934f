package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsLedger/internal/config"
	"newsLedger/internal/crawler"
)

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCrawl(cfgFile, cmd.Flags())
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

	a, err := buildApp(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sources := make([]crawler.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, crawler.Source{Name: src.Name, URL: src.URL, LinkSelector: src.LinkSelector})
	}

	c := crawler.New(sources, a.submitter, crawler.Options{
		Client:       &http.Client{Timeout: cfg.Server.Fetch.Timeout},
		UserAgent:    cfg.Server.Fetch.UserAgent,
		Delay:        cfg.Delay,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger.Named("crawler"))

	logger.Info("crawl start",
		zap.Int("sources", len(sources)),
		zap.String("schedule", cfg.Schedule),
		zap.String("chain_mode", string(a.mode)),
		zap.Duration("delay", cfg.Delay),
	)

	var running sync.Mutex
	runOnce := func() {
		if !running.TryLock() {
			logger.Warn("previous crawl still running, skipping")
			return
		}
		defer running.Unlock()
		if _, err := c.Run(ctx); err != nil {
			logger.Error("crawl aborted", zap.Error(err))
		}
	}

	runOnce()
	if cfg.Schedule == "" {
		return nil
	}

	scheduler := cron.New()
	if err := scheduler.AddFunc(cfg.Schedule, runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	<-ctx.Done()
	logger.Info("crawl scheduler stopped")
	return nil
}
