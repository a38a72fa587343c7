package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cosmossdk.io/log"

	"github.com/Modenjaya/og-upload/pkg/netclient"
	"github.com/Modenjaya/og-upload/pkg/types"
)

// ClientFactory hands out a fresh HTTP client per request.
type ClientFactory interface {
	Client() *http.Client
}

// Client talks to the storage indexer REST API.
type Client struct {
	baseURL string
	clients ClientFactory
	logger  log.Logger
}

func NewClient(baseURL string, clients ClientFactory, logger log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		clients: clients,
		logger:  logger.With(log.ModuleKey, "indexer"),
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fileInfo struct {
	Finalized bool `json:"finalized"`
}

// SegmentProof is the merkle proof attached to a segment. A single-segment
// file proves itself: the only sibling is the root and the path is empty.
type SegmentProof struct {
	Siblings []string `json:"siblings"`
	Path     []bool   `json:"path"`
}

type SegmentRequest struct {
	Root  string       `json:"root"`
	Index int          `json:"index"`
	Data  string       `json:"data"`
	Proof SegmentProof `json:"proof"`
}

// NewSegmentRequest builds the one-segment upload body for d.
func NewSegmentRequest(d types.ContentDescriptor) SegmentRequest {
	root := d.RootHex()
	return SegmentRequest{
		Root:  root,
		Index: 0,
		Data:  d.Data,
		Proof: SegmentProof{Siblings: []string{root}, Path: []bool{}},
	}
}

// FileFinalized reports whether the indexer already holds a finalized file
// with this root.
func (c *Client) FileFinalized(ctx context.Context, root string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/file/info/%s", c.baseURL, root), nil)
	if err != nil {
		return false, err
	}
	var env envelope
	if err := c.do(req, &env); err != nil {
		return false, err
	}
	if env.Code != 0 || len(env.Data) == 0 || string(env.Data) == "null" {
		return false, nil
	}
	var info fileInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		return false, types.ErrIndexerRejected.Wrapf("decode file info: %s", err)
	}
	return info.Finalized, nil
}

// UploadSegment posts d as segment 0. No retry happens here.
func (c *Client) UploadSegment(ctx context.Context, d types.ContentDescriptor) error {
	body, err := json.Marshal(NewSegmentRequest(d))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/segment", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var env envelope
	if err := c.do(req, &env); err != nil {
		return err
	}
	if env.Code != 0 {
		return types.ErrIndexerRejected.Wrapf("segment upload code %d: %s", env.Code, env.Message)
	}
	c.logger.Debug("segment accepted", "root", d.RootHex(), "size", d.Size)
	return nil
}

func (c *Client) do(req *http.Request, out *envelope) error {
	resp, err := c.clients.Client().Do(req)
	if err != nil {
		return types.ErrTransientNetwork.Wrapf("%s %s: %s", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return types.ErrTransientNetwork.Wrapf("read %s: %s", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &netclient.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if netclient.ClassifyStatus(resp.StatusCode) == netclient.KindTransient {
			return types.ErrTransientNetwork.Wrap(statusErr.Error())
		}
		return types.ErrIndexerRejected.Wrap(statusErr.Error())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	// Some deployments answer with plain text; only JSON envelopes carry a code.
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Debug("undecodable indexer reply", "path", req.URL.Path, "status", resp.StatusCode,
			"body", truncate(string(raw), 256), "error", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
