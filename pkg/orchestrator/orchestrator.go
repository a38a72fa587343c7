package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Modenjaya/og-upload/pkg/identity"
	"github.com/Modenjaya/og-upload/pkg/pollwait"
	"github.com/Modenjaya/og-upload/pkg/types"
)

// DescriptorProducer acquires content and dedups it, once per call.
type DescriptorProducer interface {
	Produce(ctx context.Context) (types.ContentDescriptor, error)
}

type SegmentUploader interface {
	UploadSegment(ctx context.Context, d types.ContentDescriptor) error
}

type ChainRegistrar interface {
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)
	MinBalance() *big.Int
	Register(ctx context.Context, d types.ContentDescriptor, id identity.Identity) (*types.TransactionRecord, error)
}

// Config holds the retry limit and the fixed pacing delays.
type Config struct {
	MaxAttempts            int
	RetryDelayMin          time.Duration
	RetryDelayMax          time.Duration
	DelayAfterSuccess      time.Duration
	DelayAfterFailure      time.Duration
	DelayBetweenIdentities time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:            types.MaxUploadAttempts,
		RetryDelayMin:          types.RetryDelayMin,
		RetryDelayMax:          types.RetryDelayMax,
		DelayAfterSuccess:      types.DelayAfterSuccess,
		DelayAfterFailure:      types.DelayAfterFailure,
		DelayBetweenIdentities: types.DelayBetweenAccounts,
	}
}

// Summary is the end-of-run report.
type Summary struct {
	Identities  int
	PerIdentity int
	Attempted   int
	Successful  int
	Failed      int
	Skipped     int
}

// Orchestrator runs uploads one at a time across all identities. Work is
// never parallel, which keeps nonces ordered per wallet.
type Orchestrator struct {
	identities *identity.Rotator[identity.Identity]
	producer   DescriptorProducer
	uploader   SegmentUploader
	registrar  ChainRegistrar
	clock      pollwait.Clock
	jitter     func() float64
	cfg        Config
	logger     log.Logger
}

func New(
	identities *identity.Rotator[identity.Identity],
	producer DescriptorProducer,
	uploader SegmentUploader,
	registrar ChainRegistrar,
	clock pollwait.Clock,
	cfg Config,
	logger log.Logger,
) *Orchestrator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Orchestrator{
		identities: identities,
		producer:   producer,
		uploader:   uploader,
		registrar:  registrar,
		clock:      clock,
		jitter:     rand.Float64,
		cfg:        cfg,
		logger:     logger.With(log.ModuleKey, "orchestrator"),
	}
}

// WithJitter replaces the [0,1) source used for retry delays.
func (o *Orchestrator) WithJitter(f func() float64) *Orchestrator {
	o.jitter = f
	return o
}

// Attempt uploads one fresh descriptor for id and registers it, retrying the
// whole sequence (new content, new segment, new transaction) up to
// MaxAttempts times.
func (o *Orchestrator) Attempt(ctx context.Context, id identity.Identity) (*types.TransactionRecord, error) {
	for attempt := 1; ; attempt++ {
		rec, err := o.tryOnce(ctx, id, attempt)
		if err == nil {
			return rec, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.Error("upload attempt failed", "attempt", attempt, "max", o.cfg.MaxAttempts, "error", err)
		if attempt >= o.cfg.MaxAttempts {
			return rec, err
		}

		delay := o.retryDelay()
		o.logger.Warn("retrying upload", "after", delay.Round(10*time.Millisecond))
		if err := o.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (o *Orchestrator) tryOnce(ctx context.Context, id identity.Identity, attempt int) (*types.TransactionRecord, error) {
	d, err := o.producer.Produce(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Info("uploading file segment",
		"wallet", id.Index+1, "address", id.Address.Hex(), "attempt", attempt, "max", o.cfg.MaxAttempts)
	if err := o.uploader.UploadSegment(ctx, d); err != nil {
		return nil, err
	}
	o.logger.Info("file segment uploaded", "root", d.RootHex())
	return o.registrar.Register(ctx, d, id)
}

// retryDelay is uniform in [RetryDelayMin, RetryDelayMax).
func (o *Orchestrator) retryDelay() time.Duration {
	span := o.cfg.RetryDelayMax - o.cfg.RetryDelayMin
	return o.cfg.RetryDelayMin + time.Duration(o.jitter()*float64(span))
}

// Run performs count uploads for every identity in rotation order. Only
// context cancellation stops it early; per-upload failures are counted.
func (o *Orchestrator) Run(ctx context.Context, count int) (Summary, error) {
	n := o.identities.Len()
	sum := Summary{Identities: n, PerIdentity: count}
	if count <= 0 {
		return sum, types.ErrConfiguration.Wrapf("upload count must be positive, got %d", count)
	}
	total := n * count
	o.logger.Info("starting uploads", "total", total, "per_wallet", count)

	for i := 0; i < n; i++ {
		id, _ := o.identities.Current()
		if err := o.runIdentity(ctx, id, i, count, total, &sum); err != nil {
			return sum, err
		}
		if i < n-1 {
			o.identities.Advance()
		}
	}
	o.logger.Info("all operations completed")
	return sum, nil
}

func (o *Orchestrator) runIdentity(ctx context.Context, id identity.Identity, i, count, total int, sum *Summary) error {
	logger := o.logger.With("wallet", i+1, "address", id.Address.Hex())
	logger.Info(fmt.Sprintf("processing wallet #%d", i+1))

	balance, err := o.registrar.Balance(ctx, id.Address)
	if err != nil {
		logger.Error("failed to check balance, skipping wallet", "error", err)
		sum.Skipped++
		return ctx.Err()
	}
	if threshold := o.registrar.MinBalance(); balance.Cmp(threshold) < 0 {
		logger.Warn("wallet balance too low, skipping wallet",
			"balance", types.FormatEther(balance), "required", types.FormatEther(threshold))
		sum.Skipped++
		return nil
	}
	logger.Info("wallet balance sufficient", "balance", types.FormatEther(balance))

	for k := 1; k <= count; k++ {
		num := i*count + k
		logger.Info(fmt.Sprintf("upload %d/%d", num, total), "file", k)
		sum.Attempted++

		rec, err := o.Attempt(ctx, id)
		if err != nil {
			sum.Failed++
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error(fmt.Sprintf("upload %d failed", num), "error", err)
			if err := o.clock.Sleep(ctx, o.cfg.DelayAfterFailure); err != nil {
				return err
			}
			continue
		}

		sum.Successful++
		logger.Info(fmt.Sprintf("upload %d completed", num), "tx", rec.Hash.Hex(), "block", rec.BlockNumber)
		if num < total {
			if err := o.clock.Sleep(ctx, o.cfg.DelayAfterSuccess); err != nil {
				return err
			}
		}
	}

	if i < o.identities.Len()-1 {
		logger.Info("switching to next wallet")
		return o.clock.Sleep(ctx, o.cfg.DelayBetweenIdentities)
	}
	return nil
}
