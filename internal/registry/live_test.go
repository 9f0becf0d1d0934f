package registry

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"newsLedger/internal/contracts"
	"newsLedger/internal/model"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var testContract = "0x1111111111111111111111111111111111111111"

type fakeBackend struct {
	mu      sync.Mutex
	records map[string]model.ChainRecord
	sent    []*types.Transaction
	gasErr  error
	sendErr error
	status  uint64
	chainID *big.Int
	callErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		records: make(map[string]model.ChainRecord),
		status:  types.ReceiptStatusSuccessful,
		chainID: big.NewInt(11155111),
	}
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	parsed, err := contracts.ArticleRegistryABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	hash := args[0].(string)

	f.mu.Lock()
	rec, ok := f.records[hash]
	f.mu.Unlock()

	switch method.Name {
	case "isArticleHashStored":
		return method.Outputs.Pack(ok)
	case "getArticleData":
		return method.Outputs.Pack(rec.URL, big.NewInt(rec.RegisteredAt), common.HexToAddress(rec.Submitter))
	}
	return nil, errors.New("unexpected method " + method.Name)
}

func (f *fakeBackend) GetChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if f.gasErr != nil {
		return 0, f.gasErr
	}
	return 90000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	f.sent = append(f.sent, tx)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{Status: f.status, TxHash: tx.Hash(), BlockNumber: big.NewInt(42)}, nil
}

func newTestLive(t *testing.T, backend *fakeBackend, key string) *Live {
	t.Helper()
	live, err := NewLive(backend, LiveConfig{Contract: testContract, PrivateKey: key, ReceiptTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	return live
}

func TestLiveRegisterSignsStoreArticleHash(t *testing.T) {
	backend := newFakeBackend()
	live := newTestLive(t, backend, "0x"+testKey)

	entry := model.ChainEntry{Hash: "abc", URL: "https://example.org/a", Timestamp: 1700000000}
	ref, err := live.Register(context.Background(), entry)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected one tx, got %d", len(backend.sent))
	}
	tx := backend.sent[0]
	if ref != tx.Hash().Hex() {
		t.Fatalf("tx ref mismatch: %s vs %s", ref, tx.Hash().Hex())
	}
	if tx.To() == nil || *tx.To() != common.HexToAddress(testContract) {
		t.Fatalf("tx sent to wrong address")
	}
	if tx.Gas() != 90000 {
		t.Fatalf("unexpected gas: %d", tx.Gas())
	}

	sender, err := types.Sender(types.LatestSignerForChainID(backend.chainID), tx)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	key, _ := crypto.HexToECDSA(testKey)
	if sender != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("unexpected sender %s", sender.Hex())
	}

	parsed, _ := contracts.ArticleRegistryABI()
	method, err := parsed.MethodById(tx.Data()[:4])
	if err != nil || method.Name != "storeArticleHash" {
		t.Fatalf("unexpected method: %v %v", method, err)
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		t.Fatalf("unpack args: %v", err)
	}
	if args[0].(string) != "abc" || args[1].(string) != entry.URL || args[2].(*big.Int).Int64() != entry.Timestamp {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestLiveRegisterGasFallback(t *testing.T) {
	backend := newFakeBackend()
	backend.gasErr = errors.New("execution reverted")
	live := newTestLive(t, backend, testKey)

	if _, err := live.Register(context.Background(), model.ChainEntry{Hash: "abc", URL: "u", Timestamp: 1}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := backend.sent[0].Gas(); got != fallbackGasLimit {
		t.Fatalf("expected fallback gas, got %d", got)
	}
}

func TestLiveRegisterReverted(t *testing.T) {
	backend := newFakeBackend()
	backend.status = types.ReceiptStatusFailed
	live := newTestLive(t, backend, testKey)

	if _, err := live.Register(context.Background(), model.ChainEntry{Hash: "abc"}); err == nil {
		t.Fatalf("expected revert error")
	}
}

func TestLiveRegisterWithoutKey(t *testing.T) {
	live := newTestLive(t, newFakeBackend(), "")
	if live.CanRegister() {
		t.Fatalf("registry without key must not register")
	}
	if _, err := live.Register(context.Background(), model.ChainEntry{Hash: "abc"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLiveConfirm(t *testing.T) {
	backend := newFakeBackend()
	backend.records["abc"] = model.ChainRecord{
		URL:          "https://example.org/a",
		RegisteredAt: 1700000000,
		Submitter:    "0x3333333333333333333333333333333333333333",
	}
	live := newTestLive(t, backend, "")

	rec, err := live.Confirm(context.Background(), "abc", nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if rec == nil || rec.URL != "https://example.org/a" || rec.RegisteredAt != 1700000000 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Submitter != common.HexToAddress("0x3333333333333333333333333333333333333333").Hex() {
		t.Fatalf("unexpected submitter %s", rec.Submitter)
	}

	rec, err = live.Confirm(context.Background(), "missing", nil)
	if err != nil || rec != nil {
		t.Fatalf("expected no record, got %+v %v", rec, err)
	}
}

func TestLiveConfirmRPCError(t *testing.T) {
	backend := newFakeBackend()
	backend.callErr = errors.New("dial tcp: connection refused")
	live := newTestLive(t, backend, "")

	if _, err := live.Confirm(context.Background(), "abc", nil); err == nil {
		t.Fatalf("expected rpc error")
	}
}

func TestNewLiveRejectsBadInput(t *testing.T) {
	if _, err := NewLive(newFakeBackend(), LiveConfig{Contract: "nope"}, nil); err == nil {
		t.Fatalf("expected contract error")
	}
	if _, err := NewLive(newFakeBackend(), LiveConfig{Contract: testContract, PrivateKey: "zz"}, nil); err == nil {
		t.Fatalf("expected key error")
	}
}
