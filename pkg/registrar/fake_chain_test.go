package registrar

import (
	"context"
	"errors"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// fakeChain is an in-memory ChainClient. receipts is consumed one entry per
// TransactionReceipt call; the last entry repeats.
type fakeChain struct {
	chainID     *big.Int
	head        uint64
	balance     *big.Int
	balanceErr  error
	gasPrice    *big.Int
	estimate    uint64
	estimateErr error
	nonce       uint64
	sendErr     error

	receipts    []receiptReply
	receiptHits int

	sent      []*ethtypes.Transaction
	estimated []ethereum.CallMsg
}

type receiptReply struct {
	receipt *ethtypes.Receipt
	err     error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		chainID:  big.NewInt(16601),
		head:     100,
		balance:  ether(1),
		gasPrice: big.NewInt(1_000_000_000),
		estimate: 100_000,
		nonce:    7,
	}
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func mined(status uint64, block int64) receiptReply {
	return receiptReply{receipt: &ethtypes.Receipt{Status: status, BlockNumber: big.NewInt(block)}}
}

func pending() receiptReply { return receiptReply{err: ethereum.NotFound} }

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) { return f.head, nil }

func (f *fakeChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) { return f.gasPrice, nil }

func (f *fakeChain) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimated = append(f.estimated, msg)
	return f.estimate, f.estimateErr
}

func (f *fakeChain) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.nonce++
	return nil
}

func (f *fakeChain) TransactionReceipt(context.Context, common.Hash) (*ethtypes.Receipt, error) {
	if len(f.receipts) == 0 {
		return nil, errors.New("no receipts scripted")
	}
	i := f.receiptHits
	if i >= len(f.receipts) {
		i = len(f.receipts) - 1
	}
	f.receiptHits++
	return f.receipts[i].receipt, f.receipts[i].err
}
