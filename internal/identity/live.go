package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/contracts"
	"newsLedger/internal/metrics"
	"newsLedger/internal/model"
)

// Live reads identities from the user verification contract.
type Live struct {
	caller   contracts.Caller
	contract common.Address
	abi      abi.ABI
	logger   *zap.Logger
}

var _ Directory = (*Live)(nil)

func NewLive(caller contracts.Caller, contract string, logger *zap.Logger) (*Live, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid user contract address: %q", contract)
	}
	parsed, err := contracts.UserVerificationABI()
	if err != nil {
		return nil, fmt.Errorf("parse user verification abi: %w", err)
	}
	return &Live{
		caller:   caller,
		contract: common.HexToAddress(contract),
		abi:      parsed,
		logger:   logger,
	}, nil
}

func (l *Live) Verify(ctx context.Context, address string) (user model.UserIdentity, err error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return model.UserIdentity{}, err
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream("identity", "verify", start, err) }()

	addr := common.HexToAddress(normalized)
	values, err := contracts.Call(ctx, l.caller, l.contract, l.abi, "isVerified", addr)
	if err != nil {
		l.logger.Warn("isVerified failed", zap.String("address", normalized), zap.Error(err))
		return model.UserIdentity{}, apperr.Wrap(apperr.RemoteUnavailable, err, "user verification unavailable")
	}
	verified, err := contracts.AsBool(values[0])
	if err != nil {
		return model.UserIdentity{}, apperr.Wrap(apperr.RemoteUnavailable, err, "user verification unavailable")
	}

	values, err = contracts.Call(ctx, l.caller, l.contract, l.abi, "getUserRole", addr)
	if err != nil {
		l.logger.Warn("getUserRole failed", zap.String("address", normalized), zap.Error(err))
		return model.UserIdentity{}, apperr.Wrap(apperr.RemoteUnavailable, err, "user verification unavailable")
	}
	role, err := contracts.AsUint8(values[0])
	if err != nil {
		return model.UserIdentity{}, apperr.Wrap(apperr.RemoteUnavailable, err, "user verification unavailable")
	}

	return model.UserIdentity{Address: normalized, Verified: verified, Role: model.Role(role)}, nil
}

// UpdateRole is not available against the live contract, whatever the input.
func (l *Live) UpdateRole(context.Context, string, model.Role) (model.UserIdentity, error) {
	return model.UserIdentity{}, RoleUpdateForbidden()
}
