package pollwait

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// ErrWindowElapsed is returned by Until when the schedule runs out.
var ErrWindowElapsed = errors.New("poll window elapsed")

// NewReceiptBackOff is the confirmation schedule: 2s growing by 1.5x up to
// 30s per wait, inside a 300s window measured on clock.
func NewReceiptBackOff(clock backoff.Clock) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     types.ReceiptInitialPoll,
		RandomizationFactor: 0,
		Multiplier:          types.ReceiptPollGrowth,
		MaxInterval:         types.ReceiptMaxPoll,
		MaxElapsedTime:      types.ReceiptTimeout,
		Stop:                backoff.Stop,
		Clock:               clock,
	}
	b.Reset()
	return b
}

// Probe is one poll. done stops the loop; a non-nil err is reported through
// onErr and polling continues.
type Probe func(ctx context.Context) (done bool, err error)

// Until runs probe, then waits the next interval of b, until probe is done or
// b stops. Only the schedule (or ctx) ends the loop; probe errors never do.
func Until(ctx context.Context, clock Clock, b backoff.BackOff, probe Probe, onErr func(err error, next time.Duration)) error {
	for {
		done, err := probe(ctx)
		if done {
			return nil
		}
		next := b.NextBackOff()
		if err != nil && onErr != nil {
			// no further poll follows the last one
			if next == backoff.Stop {
				onErr(err, 0)
			} else {
				onErr(err, next)
			}
		}
		if next == backoff.Stop {
			return ErrWindowElapsed
		}
		if err := clock.Sleep(ctx, next); err != nil {
			return err
		}
	}
}
