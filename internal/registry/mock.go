package registry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
)

// Mock simulates the registry contract on top of a mockstore.ChainStore.
type Mock struct {
	store  mockstore.ChainStore
	logger *zap.Logger
	seq    atomic.Uint64
}

var _ Registry = (*Mock)(nil)

func NewMock(store mockstore.ChainStore, logger *zap.Logger) *Mock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mock{store: store, logger: logger}
}

func (m *Mock) Mode() model.ChainMode {
	return model.ChainModeTesting
}

// CanRegister is false: submissions never write to the simulated chain.
func (m *Mock) CanRegister() bool {
	return false
}

// Register stores entry unless the fingerprint is already known and returns a fabricated tx reference.
func (m *Mock) Register(ctx context.Context, entry model.ChainEntry) (string, error) {
	ref := m.fabricateTxRef(entry)
	stored, err := m.store.PutRecordIfAbsent(ctx, model.ChainRecord{
		Hash:         entry.Hash,
		URL:          entry.URL,
		RegisteredAt: entry.Timestamp,
		TxRef:        ref,
	})
	if err != nil {
		return "", err
	}
	if stored.TxRef != "" {
		return stored.TxRef, nil
	}
	return ref, nil
}

func (m *Mock) IsRegistered(ctx context.Context, hash string) (bool, error) {
	_, ok, err := m.store.GetRecord(ctx, hash)
	return ok, err
}

func (m *Mock) ReadRecord(ctx context.Context, hash string) (model.ChainRecord, error) {
	rec, ok, err := m.store.GetRecord(ctx, hash)
	if err != nil {
		return model.ChainRecord{}, err
	}
	if !ok {
		return model.ChainRecord{}, ErrNotRegistered
	}
	return rec, nil
}

// Confirm synthesizes a record from the stored article the first time a known
// fingerprint is seen. Fingerprints without a stored article are never confirmed.
func (m *Mock) Confirm(ctx context.Context, hash string, known *model.Article) (*model.ChainRecord, error) {
	if known == nil {
		return nil, nil
	}
	rec, err := m.store.PutRecordIfAbsent(ctx, model.ChainRecord{
		Hash:         hash,
		URL:          known.SourceURL,
		RegisteredAt: known.CreatedAt.Unix(),
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("mock chain record", zap.String("hash", hash), zap.String("url", rec.URL))
	return &rec, nil
}

func (m *Mock) fabricateTxRef(entry model.ChainEntry) string {
	seed := fmt.Sprintf("%s|%s|%d|%d", entry.Hash, entry.URL, entry.Timestamp, m.seq.Add(1))
	return crypto.Keccak256Hash([]byte(seed)).Hex()
}
