package mockstore

import (
	"context"
	"sync"

	"newsLedger/internal/model"
)

// Memory is a process-local Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]model.ChainRecord
	users   map[string]model.UserIdentity
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]model.ChainRecord),
		users:   make(map[string]model.UserIdentity),
	}
}

func (m *Memory) GetRecord(_ context.Context, hash string) (model.ChainRecord, bool, error) {
	m.mu.RLock()
	rec, ok := m.records[hash]
	m.mu.RUnlock()
	return rec, ok, nil
}

func (m *Memory) PutRecordIfAbsent(_ context.Context, rec model.ChainRecord) (model.ChainRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[rec.Hash]; ok {
		return existing, nil
	}
	m.records[rec.Hash] = rec
	return rec, nil
}

func (m *Memory) GetUser(_ context.Context, address string) (model.UserIdentity, bool, error) {
	m.mu.RLock()
	user, ok := m.users[address]
	m.mu.RUnlock()
	return user, ok, nil
}

func (m *Memory) PutUser(_ context.Context, user model.UserIdentity) error {
	m.mu.Lock()
	m.users[user.Address] = user
	m.mu.Unlock()
	return nil
}
