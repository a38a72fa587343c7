package netclient

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"github.com/Modenjaya/og-upload/pkg/types"
)

type codedErr struct{ code int }

func (e codedErr) Error() string  { return fmt.Sprintf("rpc error %d", e.code) }
func (e codedErr) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindPermanent},
		{"rate limited rpc", codedErr{-32005}, KindTransient},
		{"wrapped rate limited rpc", fmt.Errorf("receipt: %w", codedErr{-32005}), KindTransient},
		{"other rpc code", codedErr{-32000}, KindPermanent},
		{"http 429", rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, KindTransient},
		{"http 503", rpc.HTTPError{StatusCode: 503}, KindTransient},
		{"http 400", rpc.HTTPError{StatusCode: 400}, KindPermanent},
		{"indexer 502", &StatusError{Code: 502}, KindTransient},
		{"indexer 404", &StatusError{Code: 404}, KindPermanent},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), KindTransient},
		{"registered transient", types.ErrTransientNetwork.Wrap("fetch"), KindTransient},
		{"plain", errors.New("boom"), KindPermanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	require.Equal(t, "http status 500", (&StatusError{Code: 500}).Error())
	require.Equal(t, "http status 400: bad root", (&StatusError{Code: 400, Body: "bad root"}).Error())
}
