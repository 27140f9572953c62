package controlplane

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
)

func newTestActor(t *testing.T) *Actor {
	t.Helper()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)

	a := New(Options{
		Users:             store,
		Metrics:           metrics.New(),
		Bus:               events.NewBus(),
		Mux:               netmux.New(),
		SocksHandler:      func(ctx context.Context, conn net.Conn) {},
		SandstormHandler:  func(ctx context.Context, conn net.Conn) {},
		InitialBufferSize: 4096,
	})
	go a.Run()
	t.Cleanup(a.Shutdown)
	return a
}

func TestAddAndListSocket(t *testing.T) {
	a := newTestActor(t)
	bound, err := a.AddSocket(events.SocketSocks5, "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, a.ListSockets(events.SocketSocks5), bound)
	assert.Empty(t, a.ListSockets(events.SocketSandstorm))
}

func TestRemoveSocketNotFound(t *testing.T) {
	a := newTestActor(t)
	err := a.RemoveSocket(events.SocketSocks5, "127.0.0.1:9999")
	assert.ErrorIs(t, err, ErrSocketNotFound)
}

func TestRemoveSocketOk(t *testing.T) {
	a := newTestActor(t)
	bound, err := a.AddSocket(events.SocketSandstorm, "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, a.RemoveSocket(events.SocketSandstorm, bound))
	assert.Empty(t, a.ListSockets(events.SocketSandstorm))
}

func TestAddUserDuplicateRejected(t *testing.T) {
	a := newTestActor(t)
	assert.Equal(t, AddUserAlreadyExists, a.AddUser("admin", "admin", "x", users.RoleRegular))
}

func TestAddUserInvalidValues(t *testing.T) {
	a := newTestActor(t)
	assert.Equal(t, AddUserInvalidValues, a.AddUser("admin", "", "pw", users.RoleRegular))
}

func TestAddUserOk(t *testing.T) {
	a := newTestActor(t)
	assert.Equal(t, AddUserOk, a.AddUser("admin", "bob", "pw", users.RoleRegular))
	assert.Len(t, a.ListUsers(), 2)
}

func TestDeleteCannotRemoveOnlyAdmin(t *testing.T) {
	a := newTestActor(t)
	assert.Equal(t, users.DeleteCannotRemoveOnlyAdmin, a.DeleteUser("admin", "admin"))
}

func TestToggleAuthMethodIdempotent(t *testing.T) {
	a := newTestActor(t)
	assert.True(t, a.ToggleAuthMethod("admin", events.AuthNoAuth, true))
	assert.False(t, a.ToggleAuthMethod("admin", events.AuthNoAuth, true))
	methods := a.ListAuthMethods()
	assert.True(t, methods[events.AuthNoAuth])
}

func TestSetBufferSizeRejectsZero(t *testing.T) {
	a := newTestActor(t)
	assert.False(t, a.SetBufferSize("admin", 0))
	assert.Equal(t, uint32(4096), a.GetBufferSize())
}

func TestSetBufferSizeAccepted(t *testing.T) {
	a := newTestActor(t)
	assert.True(t, a.SetBufferSize("admin", 8192))
	assert.Equal(t, uint32(8192), a.GetBufferSize())
}

func TestSubscribeReceivesEmittedEvents(t *testing.T) {
	a := newTestActor(t)
	_, ch, initial := a.Subscribe(8)
	assert.Equal(t, uint32(0), initial.CurrentClients)

	_, err := a.AddSocket(events.SocketSocks5, "127.0.0.1:0")
	require.NoError(t, err)

	select {
	case env := <-ch:
		_, ok := env.Event.Data.(events.NewSocket)
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a NewSocket event")
	}
}

func TestCommandsAreSerializedAndRepliesOrdered(t *testing.T) {
	a := newTestActor(t)
	for i := 0; i < 20; i++ {
		username := string(rune('a' + i))
		result := a.AddUser("admin", username, "pw", users.RoleRegular)
		require.Equal(t, AddUserOk, result)
	}
	assert.Len(t, a.ListUsers(), 21)
}
