package registrar

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/Modenjaya/og-upload/pkg/identity"
	"github.com/Modenjaya/og-upload/pkg/pollwait"
	"github.com/Modenjaya/og-upload/pkg/types"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testContract = common.HexToAddress(types.DefaultContractAddress)
	testRoot     = common.HexToHash("0x2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
)

func testConfig(t *testing.T) Config {
	t.Helper()
	minBal, err := types.ParseEther(types.DefaultMinBalance)
	require.NoError(t, err)
	fee, err := types.ParseEther(types.DefaultStorageFee)
	require.NoError(t, err)
	return Config{
		ChainID:     big.NewInt(16601),
		Contract:    testContract,
		MinBalance:  minBal,
		StorageFee:  fee,
		ExplorerURL: "https://explorer.test/tx/",
	}
}

func newTestRegistrar(t *testing.T, chain *fakeChain) (*Registrar, *pollwait.FakeClock) {
	t.Helper()
	clock := pollwait.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	r, err := New(chain, testConfig(t), clock, log.NewNopLogger())
	require.NoError(t, err)
	return r, clock
}

func testIdentity(t *testing.T) identity.Identity {
	t.Helper()
	id, err := identity.NewIdentity(testKey, 0)
	require.NoError(t, err)
	return id
}

func testDescriptor() types.ContentDescriptor {
	return types.ContentDescriptor{Root: testRoot, Data: "aGVsbG8=", Size: 5}
}

func TestPackStoreEncoding(t *testing.T) {
	flow, err := NewFlowContract()
	require.NoError(t, err)

	require.Equal(t, crypto.Keccak256([]byte("store(bytes32,uint64)"))[:4], flow.StoreSelector())

	data, err := flow.PackStore(testRoot, 123456)
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)
	require.Equal(t, flow.StoreSelector(), data[:4])
	require.Equal(t, testRoot.Bytes(), data[4:36])
	require.Equal(t, common.LeftPadBytes(big.NewInt(123456).Bytes(), 32), data[36:68])
}

func TestApplyGasMargin(t *testing.T) {
	cases := map[uint64]uint64{
		0:      0,
		1:      2,
		2:      3,
		21_001: 31_502,
		100000: 150000,
		33_333: 50_000,
	}
	for in, want := range cases {
		require.Equal(t, want, ApplyGasMargin(in), "estimate %d", in)
	}
}

func TestRegisterHappyPath(t *testing.T) {
	chain := newFakeChain()
	chain.receipts = []receiptReply{pending(), pending(), mined(1, 4242)}
	r, clock := newTestRegistrar(t, chain)
	id := testIdentity(t)

	rec, err := r.Register(context.Background(), testDescriptor(), id)
	require.NoError(t, err)
	require.True(t, rec.Confirmed())
	require.Equal(t, big.NewInt(4242), rec.BlockNumber)
	require.Equal(t, uint64(1), *rec.Status)
	require.Equal(t, uint64(150_000), rec.GasLimit)
	require.Equal(t, uint64(7), rec.Nonce)
	require.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, clock.Sleeps())

	require.Len(t, chain.sent, 1)
	tx := chain.sent[0]
	require.Equal(t, uint8(ethtypes.LegacyTxType), tx.Type())
	require.Equal(t, testContract, *tx.To())
	require.Equal(t, "839233398436224", tx.Value().String())
	require.Equal(t, uint64(150_000), tx.Gas())
	require.Equal(t, chain.gasPrice, tx.GasPrice())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, big.NewInt(16601), tx.ChainId())
	require.Equal(t, rec.Hash, tx.Hash())

	from, err := ethtypes.Sender(ethtypes.NewEIP155Signer(big.NewInt(16601)), tx)
	require.NoError(t, err)
	require.Equal(t, id.Address, from)

	require.Len(t, chain.estimated, 1)
	require.Equal(t, id.Address, chain.estimated[0].From)
	require.Equal(t, tx.Data(), chain.estimated[0].Data)
}

func TestRegisterGasEstimateFallback(t *testing.T) {
	chain := newFakeChain()
	chain.estimateErr = errors.New("execution reverted")
	chain.receipts = []receiptReply{mined(1, 1)}
	r, _ := newTestRegistrar(t, chain)

	rec, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.NoError(t, err)
	require.Equal(t, types.DefaultGasLimit, rec.GasLimit)
	require.Equal(t, types.DefaultGasLimit, chain.sent[0].Gas())
}

func TestRegisterBelowMinimumBalance(t *testing.T) {
	chain := newFakeChain()
	chain.balance = big.NewInt(1_000_000_000_000_000) // 0.001 OG
	r, _ := newTestRegistrar(t, chain)

	_, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.Empty(t, chain.sent)
	require.Empty(t, chain.estimated)
}

func TestRegisterFundingRecheck(t *testing.T) {
	chain := newFakeChain()
	// Clears the 0.0015 preflight but not 300 gwei * 150000 gas + fee.
	chain.balance = big.NewInt(2_000_000_000_000_000)
	chain.gasPrice = big.NewInt(300_000_000_000)
	r, _ := newTestRegistrar(t, chain)

	_, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.ErrorContains(t, err, "for transaction")
	require.Empty(t, chain.sent)
}

func TestRegisterRevertedReceipt(t *testing.T) {
	chain := newFakeChain()
	chain.receipts = []receiptReply{mined(0, 9)}
	r, _ := newTestRegistrar(t, chain)

	rec, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.ErrorIs(t, err, types.ErrTransactionFailed)
	require.ErrorContains(t, err, "https://explorer.test/tx/"+rec.Hash.Hex())
	require.Equal(t, uint64(0), *rec.Status)
}

func TestRegisterTimeout(t *testing.T) {
	chain := newFakeChain()
	chain.receipts = []receiptReply{pending()}
	r, clock := newTestRegistrar(t, chain)

	rec, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.ErrorIs(t, err, types.ErrTransactionTimeout)
	require.False(t, rec.Confirmed())

	var waited time.Duration
	for _, d := range clock.Sleeps() {
		waited += d
	}
	require.LessOrEqual(t, waited, types.ReceiptTimeout)
	require.Equal(t, len(clock.Sleeps())+1, chain.receiptHits)
}

type rateLimited struct{}

func (rateLimited) Error() string  { return "limit exceeded" }
func (rateLimited) ErrorCode() int { return -32005 }

func TestRegisterPollErrorsDoNotAbort(t *testing.T) {
	chain := newFakeChain()
	chain.receipts = []receiptReply{
		{err: rateLimited{}},
		{err: errors.New("connection reset by peer")},
		pending(),
		mined(1, 77),
	}
	r, _ := newTestRegistrar(t, chain)

	rec, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(77), rec.BlockNumber)
	require.Equal(t, 4, chain.receiptHits)
}

func TestRegisterSendFailure(t *testing.T) {
	chain := newFakeChain()
	chain.sendErr = errors.New("nonce too low")
	r, _ := newTestRegistrar(t, chain)

	_, err := r.Register(context.Background(), testDescriptor(), testIdentity(t))
	require.ErrorIs(t, err, types.ErrTransientNetwork)
	require.ErrorContains(t, err, "nonce too low")
}

func TestCheckNetwork(t *testing.T) {
	chain := newFakeChain()
	r, _ := newTestRegistrar(t, chain)

	head, err := r.CheckNetwork(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100), head)

	chain.chainID = big.NewInt(1)
	_, err = r.CheckNetwork(context.Background())
	require.ErrorIs(t, err, types.ErrChainMismatch)
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(newFakeChain(), Config{}, pollwait.RealClock(), log.NewNopLogger())
	require.ErrorIs(t, err, types.ErrConfiguration)
}
