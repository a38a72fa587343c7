package content

import (
	"context"
	"crypto/sha256"
	"encoding/base64"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// ExistenceChecker asks the indexer whether a root is already finalized.
type ExistenceChecker interface {
	FileFinalized(ctx context.Context, root string) (bool, error)
}

// Digest is the content address of buf.
func Digest(buf []byte) common.Hash {
	return common.Hash(sha256.Sum256(buf))
}

// NewDescriptor encodes buf. The caller guarantees root == Digest(buf).
func NewDescriptor(buf []byte, root common.Hash) types.ContentDescriptor {
	return types.ContentDescriptor{
		Root: root,
		Data: base64.StdEncoding.EncodeToString(buf),
		Size: uint64(len(buf)),
	}
}

// Deduper turns content into a descriptor whose root the indexer has not
// finalized yet. The check is advisory: another uploader may still finalize
// the same root afterwards.
type Deduper struct {
	index       ExistenceChecker
	maxAttempts int
	logger      log.Logger
}

func NewDeduper(index ExistenceChecker, logger log.Logger) *Deduper {
	return &Deduper{
		index:       index,
		maxAttempts: types.MaxHashAttempts,
		logger:      logger.With(log.ModuleKey, "dedup"),
	}
}

// MakeDescriptor hashes buf and, on a finalized collision, swaps in content
// from reacquire. Every digest check or failed reacquire uses one attempt.
func (d *Deduper) MakeDescriptor(ctx context.Context, buf []byte, reacquire AcquireFunc) (types.ContentDescriptor, error) {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return types.ContentDescriptor{}, err
		}
		if buf == nil {
			next, err := reacquire(ctx)
			if err != nil {
				lastErr = err
				d.logger.Error("failed to replace content", "attempt", attempt, "error", err)
				continue
			}
			buf = next
		}

		root := Digest(buf)
		if d.finalized(ctx, root) {
			d.logger.Warn("hash already finalized, retrying with new content", "root", root.Hex(), "attempt", attempt)
			buf = nil
			continue
		}
		d.logger.Info("generated unique file hash", "root", root.Hex(), "size", len(buf))
		return NewDescriptor(buf, root), nil
	}

	if lastErr != nil {
		return types.ContentDescriptor{}, types.ErrHashCollisionExhausted.Wrapf("after %d attempts: %s", d.maxAttempts, lastErr)
	}
	return types.ContentDescriptor{}, types.ErrHashCollisionExhausted.Wrapf("after %d attempts", d.maxAttempts)
}

func (d *Deduper) finalized(ctx context.Context, root common.Hash) bool {
	exists, err := d.index.FileFinalized(ctx, root.Hex())
	if err != nil {
		d.logger.Warn("failed to check file hash, assuming new", "root", root.Hex(), "error", err)
		return false
	}
	return exists
}
