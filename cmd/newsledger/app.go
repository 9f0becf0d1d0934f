package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsLedger/internal/chain"
	"newsLedger/internal/config"
	"newsLedger/internal/extract"
	"newsLedger/internal/identity"
	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
	"newsLedger/internal/registry"
	"newsLedger/internal/storage"
	"newsLedger/internal/storage/memory"
	"newsLedger/internal/storage/postgres"
	"newsLedger/internal/submission"
	"newsLedger/internal/verification"
)

// app holds the components shared by the commands.
type app struct {
	mode      model.ChainMode
	store     storage.ArticleStore
	registry  registry.Registry
	identity  identity.Directory
	extractor *extract.Extractor
	submitter *submission.Submitter
	verifier  *verification.Verifier

	closers []func()
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{mode: cfg.Chain.Mode()}

	store, closeStore, err := openStore(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	if a.mode == model.ChainModeLive {
		err = a.buildLive(ctx, cfg.Chain, logger)
	} else {
		err = a.buildTesting(ctx, cfg, logger)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	a.extractor = extract.New(&http.Client{Timeout: cfg.Fetch.Timeout}, cfg.Fetch.Timeout, cfg.Fetch.UserAgent, logger.Named("extract"))
	a.submitter = submission.New(a.store, a.extractor, a.registry, logger.Named("submission"))
	a.verifier = verification.New(a.store, a.extractor, a.registry, logger.Named("verification"))
	return a, nil
}

func (a *app) buildLive(ctx context.Context, cfg config.ChainConfig, logger *zap.Logger) error {
	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	a.registry, err = registry.New(registry.Options{
		Mode:           model.ChainModeLive,
		Backend:        client,
		Contract:       cfg.Contract,
		PrivateKey:     cfg.PrivateKey,
		ReceiptTimeout: cfg.ReceiptTimeout,
		Logger:         logger.Named("registry"),
	})
	if err != nil {
		return err
	}
	a.identity, err = identity.NewLive(client, cfg.UserContract, logger.Named("identity"))
	if err != nil {
		return err
	}

	logger.Info("chain registry live",
		zap.String("chain_id", chainID.String()),
		zap.String("contract", cfg.Contract),
		zap.String("user_contract", cfg.UserContract),
		zap.Bool("can_register", a.registry.CanRegister()),
	)
	return nil
}

func (a *app) buildTesting(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var state mockstore.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		state = mockstore.NewRedis(client)
	} else {
		state = mockstore.NewMemory()
	}

	var err error
	a.registry, err = registry.New(registry.Options{
		Mode:      model.ChainModeTesting,
		MockStore: state,
		Logger:    logger.Named("registry"),
	})
	if err != nil {
		return err
	}
	a.identity = identity.NewMock(state, logger.Named("identity"))

	logger.Warn("chain registry running in testing mode",
		zap.Bool("forced", cfg.Chain.TestingMode),
		zap.Bool("rpc_set", cfg.Chain.RPCURL != ""),
		zap.Bool("contract_set", cfg.Chain.Contract != ""),
		zap.Bool("user_contract_set", cfg.Chain.UserContract != ""),
		zap.Bool("redis_state", cfg.RedisAddr != ""),
	)
	return nil
}

func openStore(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (storage.ArticleStore, func(), error) {
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory article store, data is lost on exit")
		return memory.NewStore(), func() {}, nil
	case "postgres", "":
		dsn := cfg.PostgresDSN()
		store, err := postgres.NewStore(ctx, dsn, cfg.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		logger.Info("postgres store ready", zap.String("pg_dsn", redactDSN(dsn)), zap.Int32("max_conns", cfg.MaxConns))
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
