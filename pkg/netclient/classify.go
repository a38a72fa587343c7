package netclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// Kind is the retry class of a collaborator failure.
type Kind int

const (
	KindPermanent Kind = iota
	KindTransient
)

func (k Kind) String() string {
	if k == KindTransient {
		return "transient"
	}
	return "permanent"
}

// rpcLimitExceeded is the JSON-RPC code providers use for rate limiting.
const rpcLimitExceeded = -32005

// StatusError is a non-2xx reply from a plain HTTP endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// ClassifyStatus marks throttling and server-side failures as transient.
func ClassifyStatus(code int) Kind {
	if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500 {
		return KindTransient
	}
	return KindPermanent
}

// Classify decides once whether err is worth retrying.
func Classify(err error) Kind {
	if err == nil {
		return KindPermanent
	}
	if errors.Is(err, types.ErrTransientNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == rpcLimitExceeded {
		return KindTransient
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return ClassifyStatus(httpErr.StatusCode)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ClassifyStatus(statusErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return KindTransient
	}
	return KindPermanent
}
