// Package registry anchors content fingerprints on the article registry
// contract, or simulates it in-process when the chain is not configured.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
)

var (
	// ErrNotConfigured is returned by Register when no signing key is available.
	ErrNotConfigured = errors.New("chain registration not configured")
	// ErrNotRegistered is returned by ReadRecord for unknown fingerprints.
	ErrNotRegistered = errors.New("fingerprint not registered")
)

// Registry is the chain registry capability shared by the live and mock variants.
type Registry interface {
	Mode() model.ChainMode
	// CanRegister reports whether Register may be attempted.
	CanRegister() bool
	Register(ctx context.Context, entry model.ChainEntry) (string, error)
	IsRegistered(ctx context.Context, hash string) (bool, error)
	ReadRecord(ctx context.Context, hash string) (model.ChainRecord, error)
	// Confirm returns the chain record for hash, or nil when the chain does not
	// know it. known is the stored article for hash, if any.
	Confirm(ctx context.Context, hash string, known *model.Article) (*model.ChainRecord, error)
}

// Options configures New.
type Options struct {
	Mode           model.ChainMode
	Backend        Backend
	Contract       string
	PrivateKey     string
	ReceiptTimeout time.Duration
	MockStore      mockstore.ChainStore
	Logger         *zap.Logger
}

// New builds the registry variant selected by opts.Mode.
func New(opts Options) (Registry, error) {
	if opts.Mode == model.ChainModeLive {
		if opts.Backend == nil {
			return nil, fmt.Errorf("live registry requires a chain backend")
		}
		return NewLive(opts.Backend, LiveConfig{
			Contract:       opts.Contract,
			PrivateKey:     opts.PrivateKey,
			ReceiptTimeout: opts.ReceiptTimeout,
		}, opts.Logger)
	}

	store := opts.MockStore
	if store == nil {
		store = mockstore.NewMemory()
	}
	return NewMock(store, opts.Logger), nil
}
