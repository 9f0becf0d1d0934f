package identity

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"

	"newsLedger/internal/apperr"
	"newsLedger/internal/contracts"
	"newsLedger/internal/mockstore"
	"newsLedger/internal/model"
)

const (
	userContract = "0x2222222222222222222222222222222222222222"
	mixedAddress = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"
)

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  " + mixedAddress + " ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != strings.ToLower(mixedAddress) {
		t.Fatalf("unexpected address %s", got)
	}

	for _, bad := range []string{"", "0x123", "not an address"} {
		if _, err := NormalizeAddress(bad); !apperr.Is(err, apperr.InvalidInput) {
			t.Fatalf("expected InvalidInput for %q, got %v", bad, err)
		}
	}
}

func TestMockVerifyProvisionsReader(t *testing.T) {
	dir := NewMock(mockstore.NewMemory(), nil)

	user, err := dir.Verify(context.Background(), mixedAddress)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !user.Verified || user.Role != model.RoleReader {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Address != strings.ToLower(mixedAddress) {
		t.Fatalf("address not normalized: %s", user.Address)
	}
}

func TestMockUpdateRoleCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	dir := NewMock(mockstore.NewMemory(), nil)

	if _, err := dir.UpdateRole(ctx, mixedAddress, model.RoleEditor); err != nil {
		t.Fatalf("update role: %v", err)
	}
	user, err := dir.Verify(ctx, strings.ToLower(mixedAddress))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.Role != model.RoleEditor {
		t.Fatalf("expected editor, got %s", user.Role)
	}

	again, err := dir.Verify(ctx, "0x"+strings.ToUpper(mixedAddress[2:]))
	if err != nil || again != user {
		t.Fatalf("expected idempotent lookup, got %+v %v", again, err)
	}
}

func TestMockUpdateRoleRejectsUnknownRole(t *testing.T) {
	dir := NewMock(mockstore.NewMemory(), nil)
	if _, err := dir.UpdateRole(context.Background(), mixedAddress, model.Role(4)); !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

type userCaller struct {
	verified bool
	role     uint8
	err      error
}

func (c *userCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	parsed, err := contracts.UserVerificationABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	if method.Name == "isVerified" {
		return method.Outputs.Pack(c.verified)
	}
	return method.Outputs.Pack(c.role)
}

func TestLiveVerify(t *testing.T) {
	dir, err := NewLive(&userCaller{verified: true, role: 2}, userContract, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}

	user, err := dir.Verify(context.Background(), mixedAddress)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !user.Verified || user.Role != model.RoleContributor {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLiveVerifyRemoteUnavailable(t *testing.T) {
	dir, err := NewLive(&userCaller{err: errors.New("connection refused")}, userContract, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	if _, err := dir.Verify(context.Background(), mixedAddress); !apperr.Is(err, apperr.RemoteUnavailable) {
		t.Fatalf("expected RemoteUnavailable, got %v", err)
	}
}

func TestLiveUpdateRoleUnauthorized(t *testing.T) {
	dir, err := NewLive(&userCaller{}, userContract, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	if _, err := dir.UpdateRole(context.Background(), mixedAddress, model.RoleEditor); !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	for _, address := range []string{"bad", ""} {
		if _, err := dir.UpdateRole(context.Background(), address, model.Role(200)); !apperr.Is(err, apperr.Unauthorized) {
			t.Fatalf("address %q: expected Unauthorized, got %v", address, err)
		}
	}
}
