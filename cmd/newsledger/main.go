package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "newsledger",
		Short:        "News article submission and verification backend",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	addServerFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":3001", "HTTP listen address")
	serveCmd.Flags().StringSlice("cors-origins", []string{"*"}, "allowed CORS origins (comma-separated)")

	root.AddCommand(serveCmd)

	crawlCmd := &cobra.Command{
		Use:   "crawl",
		Short: "Submit articles from trusted source listings",
		RunE:  runCrawl,
	}
	addServerFlags(crawlCmd.Flags())
	crawlCmd.Flags().String("schedule", "", "cron schedule for repeated crawls (e.g. @every 6h), empty runs once")
	crawlCmd.Flags().Duration("delay", 2*time.Second, "delay between article submissions")
	crawlCmd.Flags().Int("max-retries", 3, "maximum listing fetch retries")
	crawlCmd.Flags().Duration("retry-backoff", time.Second, "initial listing retry backoff")

	root.AddCommand(crawlCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored articles to JSONL",
		RunE:  runExport,
	}
	addServerFlags(exportCmd.Flags())
	exportCmd.Flags().String("out", "./data/articles.jsonl", "output JSONL path")
	exportCmd.Flags().Int("batch-size", 100, "articles per store page")

	root.AddCommand(exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServerFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")

	fs.String("store", "postgres", "article store (postgres, memory)")
	fs.String("pg-dsn", "", "Postgres DSN, overrides db-* flags")
	fs.String("db-host", "localhost", "Postgres host")
	fs.Int("db-port", 5432, "Postgres port")
	fs.String("db-name", "palestine_news", "Postgres database")
	fs.String("db-user", "postgres", "Postgres user")
	fs.String("db-password", "", "Postgres password")
	fs.Int32("db-max-conns", 5, "Postgres pool size")

	fs.String("rpc", "", "EVM RPC URL")
	fs.String("contract", "", "article registry contract address")
	fs.String("user-contract", "", "user verification contract address")
	fs.String("private-key", "", "hex private key used to register fingerprints")
	fs.Bool("testing-mode", false, "simulate the chain registry even when configured")
	fs.Duration("receipt-timeout", 2*time.Minute, "max wait for a registration receipt")
	fs.String("redis-addr", "", "Redis address for shared testing-mode state")

	fs.Duration("fetch-timeout", 20*time.Second, "article fetch timeout")
	fs.String("user-agent", "newsLedger/1.0", "User-Agent for article fetches")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
