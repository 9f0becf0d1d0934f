package registry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"newsLedger/internal/contracts"
	"newsLedger/internal/metrics"
	"newsLedger/internal/model"
)

const fallbackGasLimit = 200000

// Backend is the chain access the live registry needs. *chain.Client implements it.
type Backend interface {
	contracts.Caller
	GetChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// LiveConfig holds live registry settings.
type LiveConfig struct {
	Contract       string
	PrivateKey     string
	ReceiptTimeout time.Duration
}

// Live talks to the deployed article registry contract.
type Live struct {
	backend        Backend
	contract       common.Address
	abi            abi.ABI
	key            *ecdsa.PrivateKey
	from           common.Address
	receiptTimeout time.Duration
	logger         *zap.Logger

	// serializes nonce allocation for the signing account
	sendMu sync.Mutex
}

var _ Registry = (*Live)(nil)

// NewLive builds a live registry. An empty private key yields a read-only registry.
func NewLive(backend Backend, cfg LiveConfig, logger *zap.Logger) (*Live, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("invalid contract address: %q", cfg.Contract)
	}
	parsed, err := contracts.ArticleRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	l := &Live{
		backend:        backend,
		contract:       common.HexToAddress(cfg.Contract),
		abi:            parsed,
		receiptTimeout: cfg.ReceiptTimeout,
		logger:         logger,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		l.key = key
		l.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	return l, nil
}

func (l *Live) Mode() model.ChainMode {
	return model.ChainModeLive
}

func (l *Live) CanRegister() bool {
	return l.key != nil
}

// Register sends storeArticleHash and waits for it to be mined.
func (l *Live) Register(ctx context.Context, entry model.ChainEntry) (txRef string, err error) {
	if l.key == nil {
		return "", ErrNotConfigured
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream("chain", "register", start, err) }()

	data, err := l.abi.Pack("storeArticleHash", entry.Hash, entry.URL, big.NewInt(entry.Timestamp))
	if err != nil {
		return "", fmt.Errorf("pack storeArticleHash: %w", err)
	}

	signed, err := l.send(ctx, data)
	if err != nil {
		return "", err
	}

	waitCtx := ctx
	if l.receiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.receiptTimeout)
		defer cancel()
	}
	receipt, err := l.backend.WaitMined(waitCtx, signed)
	if err != nil {
		return "", fmt.Errorf("wait for tx %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("tx %s reverted", signed.Hash().Hex())
	}

	l.logger.Info("fingerprint registered",
		zap.String("hash", entry.Hash),
		zap.String("tx", signed.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return signed.Hash().Hex(), nil
}

func (l *Live) send(ctx context.Context, data []byte) (*types.Transaction, error) {
	l.sendMu.Lock()
	defer l.sendMu.Unlock()

	chainID, err := l.backend.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	nonce, err := l.backend.PendingNonceAt(ctx, l.from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	gasPrice, err := l.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	gas, err := l.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     l.from,
		To:       &l.contract,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		l.logger.Warn("gas estimation failed, using fallback", zap.Uint64("gas", fallbackGasLimit), zap.Error(err))
		gas = fallbackGasLimit
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &l.contract,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), l.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := l.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}
	return signed, nil
}

func (l *Live) IsRegistered(ctx context.Context, hash string) (stored bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream("chain", "is_registered", start, err) }()

	values, err := contracts.Call(ctx, l.backend, l.contract, l.abi, "isArticleHashStored", hash)
	if err != nil {
		return false, err
	}
	return contracts.AsBool(values[0])
}

func (l *Live) ReadRecord(ctx context.Context, hash string) (rec model.ChainRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream("chain", "read_record", start, err) }()

	values, err := contracts.Call(ctx, l.backend, l.contract, l.abi, "getArticleData", hash)
	if err != nil {
		return model.ChainRecord{}, err
	}
	if len(values) < 3 {
		return model.ChainRecord{}, fmt.Errorf("getArticleData: expected 3 outputs, got %d", len(values))
	}
	url, err := contracts.AsString(values[0])
	if err != nil {
		return model.ChainRecord{}, fmt.Errorf("source url: %w", err)
	}
	ts, err := contracts.AsBigInt(values[1])
	if err != nil {
		return model.ChainRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	submitter, err := contracts.AsAddress(values[2])
	if err != nil {
		return model.ChainRecord{}, fmt.Errorf("submitter: %w", err)
	}

	return model.ChainRecord{
		Hash:         hash,
		URL:          url,
		RegisteredAt: ts.Int64(),
		Submitter:    submitter.Hex(),
	}, nil
}

func (l *Live) Confirm(ctx context.Context, hash string, _ *model.Article) (*model.ChainRecord, error) {
	stored, err := l.IsRegistered(ctx, hash)
	if err != nil || !stored {
		return nil, err
	}
	rec, err := l.ReadRecord(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
