package netmux

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddListenerAcceptsConnections(t *testing.T) {
	m := New()
	received := make(chan struct{}, 1)

	addr, err := m.AddListener("127.0.0.1:0", func(ctx context.Context, conn net.Conn) {
		received <- struct{}{}
	})
	require.NoError(t, err)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}

	require.True(t, m.WaitIdleFor(2*time.Second))
}

func TestRemoveListenerStopsAccepting(t *testing.T) {
	m := New()
	addr, err := m.AddListener("127.0.0.1:0", func(ctx context.Context, conn net.Conn) {})
	require.NoError(t, err)

	require.NoError(t, m.RemoveListener(addr))

	_, err = net.Dial("tcp", addr)
	assert.Error(t, err)
}

func TestAddrsReflectsCurrentListeners(t *testing.T) {
	m := New()
	addr, err := m.AddListener("127.0.0.1:0", func(ctx context.Context, conn net.Conn) {})
	require.NoError(t, err)
	assert.Contains(t, m.Addrs(), addr)

	require.NoError(t, m.RemoveListener(addr))
	assert.NotContains(t, m.Addrs(), addr)
}

func TestShutdownWaitsForActiveConnections(t *testing.T) {
	m := New()
	release := make(chan struct{})
	started := make(chan struct{})

	addr, err := m.AddListener("127.0.0.1:0", func(ctx context.Context, conn net.Conn) {
		close(started)
		<-release
	})
	require.NoError(t, err)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = m.Shutdown(ctx)
	assert.Error(t, err, "shutdown should time out while the handler is still blocked")

	close(release)
}

func TestShutdownSucceedsWhenConnectionsFinish(t *testing.T) {
	m := New()
	_, err := m.AddListener("127.0.0.1:0", func(ctx context.Context, conn net.Conn) {})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Shutdown(ctx))
}
