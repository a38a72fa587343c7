package identity

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"cosmossdk.io/log"

	"github.com/Modenjaya/og-upload/pkg/types"
)

func readLines(r io.Reader, skip func(string) bool) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || (skip != nil && skip(line)) {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// ParseIdentities keeps every valid key in r and drops the rest.
func ParseIdentities(r io.Reader) ([]Identity, error) {
	lines, err := readLines(r, nil)
	if err != nil {
		return nil, types.ErrConfiguration.Wrapf("read keys: %s", err)
	}
	var ids []Identity
	for _, line := range lines {
		if !ValidatePrivateKey(line) {
			continue
		}
		id, err := NewIdentity(line, len(ids))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, types.ErrConfiguration.Wrap("no valid private keys found")
	}
	return ids, nil
}

// LoadIdentities reads the key file at path.
func LoadIdentities(path string) ([]Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.ErrConfiguration.Wrapf("private keys file %s: %s", path, err)
	}
	defer f.Close()
	ids, err := ParseIdentities(f)
	if err != nil {
		return nil, types.ErrConfiguration.Wrapf("%s: %s", path, err)
	}
	return ids, nil
}

// ParseProxies reads proxy lines, skipping # comments.
func ParseProxies(r io.Reader) ([]ProxyEndpoint, error) {
	lines, err := readLines(r, func(s string) bool { return strings.HasPrefix(s, "#") })
	if err != nil {
		return nil, err
	}
	out := make([]ProxyEndpoint, 0, len(lines))
	for _, line := range lines {
		out = append(out, NewProxyEndpoint(line))
	}
	return out, nil
}

// LoadProxies reads the proxy file. A missing or empty file disables proxying.
func LoadProxies(path string, logger log.Logger) []ProxyEndpoint {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("proxy file not found, proxying disabled", "path", path)
		return nil
	}
	if err != nil {
		logger.Error("failed to load proxies", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	proxies, err := ParseProxies(f)
	if err != nil {
		logger.Error("failed to load proxies", "path", path, "error", err)
		return nil
	}
	if len(proxies) == 0 {
		logger.Warn("no proxies found", "path", path)
		return nil
	}
	logger.Info("loaded proxies", "count", len(proxies), "path", path)
	return proxies
}
