// Package identity answers whether a wallet address is a verified user and
// which role it holds.
package identity

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"newsLedger/internal/apperr"
	"newsLedger/internal/model"
)

// Directory looks up and updates user identities.
type Directory interface {
	Verify(ctx context.Context, address string) (model.UserIdentity, error)
	UpdateRole(ctx context.Context, address string, role model.Role) (model.UserIdentity, error)
}

// NormalizeAddress validates a hex address and returns it lowercased.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", apperr.New(apperr.InvalidInput, "address is required")
	}
	if !common.IsHexAddress(address) {
		return "", apperr.New(apperr.InvalidInput, "invalid address")
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// RoleUpdateForbidden is returned for every role update while the live
// contract owns user roles.
func RoleUpdateForbidden() error {
	return apperr.New(apperr.Unauthorized, "role updates require contract admin access")
}
