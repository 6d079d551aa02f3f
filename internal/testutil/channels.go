// Package testutil provides helpers shared by sheriff tests
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultTestTimeout bounds waits on asynchronous test events
const DefaultTestTimeout = 5 * time.Second

// WaitForChannel waits for ch to be closed or receive, failing the test
// with msg after timeout.
func WaitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(t, msg)
	}
}
