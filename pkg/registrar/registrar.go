package registrar

import (
	"context"
	"errors"
	"math/big"
	"time"

	"cosmossdk.io/log"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/Modenjaya/og-upload/pkg/identity"
	"github.com/Modenjaya/og-upload/pkg/netclient"
	"github.com/Modenjaya/og-upload/pkg/pollwait"
	"github.com/Modenjaya/og-upload/pkg/types"
)

// Config pins the chain, contract and fee schedule.
type Config struct {
	ChainID         *big.Int
	Contract        common.Address
	MinBalance      *big.Int
	StorageFee      *big.Int
	DefaultGasLimit uint64
	ExplorerURL     string
}

// Registrar records uploaded roots on chain through the flow contract.
type Registrar struct {
	client ChainClient
	flow   *FlowContract
	cfg    Config
	clock  pollwait.Clock
	logger log.Logger
}

func New(client ChainClient, cfg Config, clock pollwait.Clock, logger log.Logger) (*Registrar, error) {
	if cfg.ChainID == nil || cfg.MinBalance == nil || cfg.StorageFee == nil {
		return nil, types.ErrConfiguration.Wrap("registrar needs chain id, min balance and storage fee")
	}
	if cfg.DefaultGasLimit == 0 {
		cfg.DefaultGasLimit = types.DefaultGasLimit
	}
	flow, err := NewFlowContract()
	if err != nil {
		return nil, err
	}
	return &Registrar{
		client: client,
		flow:   flow,
		cfg:    cfg,
		clock:  clock,
		logger: logger.With(log.ModuleKey, "registrar"),
	}, nil
}

// CheckNetwork fails with ErrChainMismatch when the RPC serves another chain,
// and uses the head block as a sync probe.
func (r *Registrar) CheckNetwork(ctx context.Context) (uint64, error) {
	id, err := r.client.ChainID(ctx)
	if err != nil {
		return 0, types.ErrTransientNetwork.Wrapf("chain id: %s", err)
	}
	if id.Cmp(r.cfg.ChainID) != 0 {
		return 0, types.ErrChainMismatch.Wrapf("expected %s, got %s", r.cfg.ChainID, id)
	}
	head, err := r.client.BlockNumber(ctx)
	if err != nil {
		return 0, types.ErrTransientNetwork.Wrapf("network sync check: %s", err)
	}
	r.logger.Info("connected to network", "chain_id", id, "block", head)
	return head, nil
}

// Balance returns the wei balance of addr at the latest block.
func (r *Registrar) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := r.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("balance of %s: %s", addr.Hex(), err)
	}
	return bal, nil
}

// MinBalance is the per-wallet preflight threshold.
func (r *Registrar) MinBalance() *big.Int { return new(big.Int).Set(r.cfg.MinBalance) }

// Register submits store(root, size) for d from id and waits for the receipt.
func (r *Registrar) Register(ctx context.Context, d types.ContentDescriptor, id identity.Identity) (*types.TransactionRecord, error) {
	balance, err := r.Balance(ctx, id.Address)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(r.cfg.MinBalance) < 0 {
		return nil, types.ErrInsufficientBalance.Wrapf("%s OG (required >%s OG)",
			types.FormatEther(balance), types.FormatEther(r.cfg.MinBalance))
	}
	r.logger.Info("wallet balance", "address", id.Address.Hex(), "balance", types.FormatEther(balance))

	data, err := r.flow.PackStore(d.Root, d.Size)
	if err != nil {
		return nil, err
	}
	value := new(big.Int).Set(r.cfg.StorageFee)

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("gas price: %s", err)
	}
	gasLimit := r.estimateGas(ctx, id.Address, data, value)

	required := RequiredFunds(gasPrice, gasLimit, value)
	if balance.Cmp(required) < 0 {
		return nil, types.ErrInsufficientBalance.Wrapf("for transaction: %s OG (required ~%s OG)",
			types.FormatEther(balance), types.FormatEther(required))
	}

	nonce, err := r.client.NonceAt(ctx, id.Address, nil)
	if err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("nonce: %s", err)
	}
	tx, err := ethtypes.SignTx(ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &r.cfg.Contract,
		Value:    value,
		Data:     data,
	}), ethtypes.NewEIP155Signer(r.cfg.ChainID), id.Key)
	if err != nil {
		return nil, err
	}
	if err := r.client.SendTransaction(ctx, tx); err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("send transaction: %s", err)
	}

	rec := &types.TransactionRecord{
		Hash:     tx.Hash(),
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		Value:    value,
	}
	link := types.ExplorerLink(r.cfg.ExplorerURL, rec.Hash)
	r.logger.Info("transaction sent", "hash", rec.Hash.Hex(), "explorer", link)

	if err := r.waitReceipt(ctx, rec); err != nil {
		if errors.Is(err, pollwait.ErrWindowElapsed) {
			return rec, types.ErrTransactionTimeout.Wrap(link)
		}
		return rec, err
	}
	if *rec.Status != ethtypes.ReceiptStatusSuccessful {
		return rec, types.ErrTransactionFailed.Wrapf("status %d: %s", *rec.Status, link)
	}
	r.logger.Info("file registered", "root", d.RootHex(), "block", rec.BlockNumber)
	return rec, nil
}

func (r *Registrar) estimateGas(ctx context.Context, from common.Address, data []byte, value *big.Int) uint64 {
	estimate, err := r.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &r.cfg.Contract,
		Value: value,
		Data:  data,
	})
	if err != nil {
		r.logger.Warn("gas estimation failed, using default", "gas_limit", r.cfg.DefaultGasLimit, "error", err)
		return r.cfg.DefaultGasLimit
	}
	limit := ApplyGasMargin(estimate)
	r.logger.Info("gas limit set", "estimate", estimate, "gas_limit", limit)
	return limit
}

// waitReceipt polls until a mined receipt lands on rec or the window closes.
func (r *Registrar) waitReceipt(ctx context.Context, rec *types.TransactionRecord) error {
	r.logger.Info("waiting for confirmation", "timeout", types.ReceiptTimeout)
	return pollwait.Until(ctx, r.clock, pollwait.NewReceiptBackOff(r.clock),
		func(ctx context.Context) (bool, error) {
			receipt, err := r.client.TransactionReceipt(ctx, rec.Hash)
			if errors.Is(err, ethereum.NotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			if receipt == nil || receipt.BlockNumber == nil {
				return false, nil
			}
			status := receipt.Status
			rec.BlockNumber = new(big.Int).Set(receipt.BlockNumber)
			rec.Status = &status
			r.logger.Info("transaction confirmed", "block", rec.BlockNumber)
			return true, nil
		},
		func(err error, next time.Duration) {
			if netclient.Classify(err) == netclient.KindTransient {
				r.logger.Warn("rate limited or temporary error fetching receipt", "retry_in", next, "error", err)
				return
			}
			r.logger.Error("receipt error", "retry_in", next, "error", err)
		})
}
