package identity

import (
	"net/url"
	"strings"
)

// ProxyEndpoint is one outbound proxy from the proxy file.
type ProxyEndpoint struct {
	RawURL string
	Host   string
}

func NewProxyEndpoint(raw string) ProxyEndpoint {
	raw = strings.TrimSpace(raw)
	return ProxyEndpoint{RawURL: raw, Host: ExtractProxyHost(raw)}
}

// URL parses the proxy, defaulting to http:// when no scheme is given.
func (p ProxyEndpoint) URL() (*url.URL, error) {
	raw := p.RawURL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return url.Parse(raw)
}

// ExtractProxyHost strips scheme, credentials and port from a proxy line.
func ExtractProxyHost(raw string) string {
	clean := strings.TrimSpace(raw)
	if i := strings.Index(clean, "://"); i >= 0 {
		clean = clean[i+3:]
	}
	if i := strings.LastIndex(clean, "@"); i >= 0 {
		clean = clean[i+1:]
	}
	if strings.HasPrefix(clean, "[") {
		if end := strings.Index(clean, "]"); end > 0 {
			return clean[1:end]
		}
	}
	host := strings.Split(clean, ":")[0]
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return raw
	}
	return host
}
