//go:build unix

package cmd

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunExitsCleanlyOnInterruptAtPrompt(t *testing.T) {
	out, done := startRunAtPrompt(t, context.Background())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	select {
	case err := <-done:
		require.NoError(t, err)
		require.Contains(t, out.String(), "shutting down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt at the prompt was not handled")
	}
}
