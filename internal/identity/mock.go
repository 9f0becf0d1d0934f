package identity

import (
	"context"

	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
)

// Mock provisions every address it sees as a verified reader.
type Mock struct {
	store  mockstore.UserStore
	logger *zap.Logger
}

var _ Directory = (*Mock)(nil)

func NewMock(store mockstore.UserStore, logger *zap.Logger) *Mock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mock{store: store, logger: logger}
}

func (m *Mock) Verify(ctx context.Context, address string) (model.UserIdentity, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return model.UserIdentity{}, err
	}
	return m.lookup(ctx, normalized)
}

func (m *Mock) UpdateRole(ctx context.Context, address string, role model.Role) (model.UserIdentity, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return model.UserIdentity{}, err
	}
	if !role.Valid() {
		return model.UserIdentity{}, apperr.New(apperr.InvalidInput, "invalid role")
	}

	user, err := m.lookup(ctx, normalized)
	if err != nil {
		return model.UserIdentity{}, err
	}
	user.Role = role
	if err := m.store.PutUser(ctx, user); err != nil {
		return model.UserIdentity{}, apperr.Wrap(apperr.Internal, err, "store user")
	}
	m.logger.Info("mock role updated", zap.String("address", normalized), zap.Stringer("role", role))
	return user, nil
}

func (m *Mock) lookup(ctx context.Context, address string) (model.UserIdentity, error) {
	user, ok, err := m.store.GetUser(ctx, address)
	if err != nil {
		return model.UserIdentity{}, apperr.Wrap(apperr.Internal, err, "load user")
	}
	if ok {
		return user, nil
	}

	user = model.UserIdentity{Address: address, Verified: true, Role: model.RoleReader}
	if err := m.store.PutUser(ctx, user); err != nil {
		return model.UserIdentity{}, apperr.Wrap(apperr.Internal, err, "store user")
	}
	m.logger.Debug("mock user provisioned", zap.String("address", address))
	return user, nil
}
