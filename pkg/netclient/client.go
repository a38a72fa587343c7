package netclient

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"cosmossdk.io/log"

	"github.com/Modenjaya/og-upload/pkg/identity"
)

const maxRedirects = 5

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.6261.119 Mobile Safari/537.36",
}

// Factory builds one-shot HTTP clients, rotating the outbound proxy on every
// construction.
type Factory struct {
	proxies *identity.Rotator[identity.ProxyEndpoint]
	timeout time.Duration
	referer string
	logger  log.Logger
}

func NewFactory(proxies []identity.ProxyEndpoint, timeout time.Duration, referer string, logger log.Logger) *Factory {
	return &Factory{
		proxies: identity.NewRotator(proxies),
		timeout: timeout,
		referer: referer,
		logger:  logger.With(log.ModuleKey, "http"),
	}
}

// Client returns a client bound to the next proxy, if any.
func (f *Factory) Client() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// each client serves a single request and is then dropped
	transport.DisableKeepAlives = true
	if p, ok := f.proxies.Next(); ok {
		if u, err := p.URL(); err != nil {
			f.logger.Warn("ignoring malformed proxy", "proxy", p.Host, "error", err)
		} else {
			f.logger.Debug("using proxy", "ip", p.Host)
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout: f.timeout,
		Transport: &headerTransport{
			base:      transport,
			userAgent: userAgents[rand.Intn(len(userAgents))],
			referer:   f.referer,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("stopped after 5 redirects")
			}
			return nil
		},
	}
}

type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	referer   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	if t.referer != "" {
		req.Header.Set("Referer", t.referer)
	}
	return t.base.RoundTrip(req)
}
