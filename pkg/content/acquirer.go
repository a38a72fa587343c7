package content

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"cosmossdk.io/log"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// Acquirer produces a fresh content buffer per call.
type Acquirer interface {
	Acquire(ctx context.Context) ([]byte, error)
}

// AcquireFunc adapts a function to Acquirer.
type AcquireFunc func(ctx context.Context) ([]byte, error)

func (f AcquireFunc) Acquire(ctx context.Context) ([]byte, error) { return f(ctx) }

// DefaultImageSources serve a random 800x600 image per request.
var DefaultImageSources = []string{
	"https://picsum.photos/800/600",
	"https://loremflickr.com/800/600",
}

const maxImageBytes = 16 << 20

type ClientFactory interface {
	Client() *http.Client
}

// ImageFetcher downloads a random image through the rotating proxy pool.
type ImageFetcher struct {
	sources []string
	clients ClientFactory
	logger  log.Logger
}

func NewImageFetcher(sources []string, clients ClientFactory, logger log.Logger) *ImageFetcher {
	if len(sources) == 0 {
		sources = DefaultImageSources
	}
	return &ImageFetcher{
		sources: sources,
		clients: clients,
		logger:  logger.With(log.ModuleKey, "image"),
	}
}

func (f *ImageFetcher) Acquire(ctx context.Context) ([]byte, error) {
	src := f.sources[rand.Intn(len(f.sources))]
	f.logger.Debug("fetching random image", "source", src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := f.clients.Client().Do(req)
	if err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("fetch image: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, types.ErrTransientNetwork.Wrapf("fetch image: status %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, types.ErrTransientNetwork.Wrapf("read image: %s", err)
	}
	if len(buf) == 0 {
		return nil, types.ErrTransientNetwork.Wrap("fetch image: empty body")
	}
	if len(buf) > maxImageBytes {
		return nil, fmt.Errorf("image from %s exceeds %d bytes", src, maxImageBytes)
	}
	f.logger.Info("image fetched", "bytes", len(buf))
	return buf, nil
}
