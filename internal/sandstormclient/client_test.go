package sandstormclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/sandstorm"
	"github.com/duststorm/duststorm/internal/users"
)

func newTestActor(t *testing.T, store *users.Store) *controlplane.Actor {
	t.Helper()
	a := controlplane.New(controlplane.Options{
		Users:              store,
		Metrics:            metrics.New(),
		Bus:                events.NewBus(),
		Mux:                netmux.New(),
		SocksHandler:       func(context.Context, net.Conn) {},
		SandstormHandler:   func(context.Context, net.Conn) {},
		InitialBufferSize:  4096,
		EnabledAuthMethods: map[events.AuthMethod]bool{events.AuthNoAuth: true},
	})
	go a.Run()
	t.Cleanup(a.Shutdown)
	return a
}

// listenAndServe starts a Sandstorm listener backed by srv and returns its
// address; each accepted connection is served on its own goroutine exactly
// like the real netmux-dispatched listener would.
func listenAndServe(t *testing.T, srv *sandstorm.Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			h := srv.Handler()
			go h(context.Background(), conn)
		}
	}()
	return ln.Addr().String()
}

func dialTestClient(t *testing.T, addr, username, password string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, username, password)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDialAndMeow(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	c := dialTestClient(t, addr, "admin", "secret")
	reply, err := c.Meow()
	require.NoError(t, err)
	require.Equal(t, "MEOW", reply)
}

func TestDialRejectsWrongPassword(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr, "admin", "nope")
	require.Error(t, err)
	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
	require.Equal(t, byte(handshakeInvalidUsernameOrPassword), hsErr.Status)
}

func TestDialDeniesNonAdmin(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("viewer", "hunter2", users.RoleRegular)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, addr, "viewer", "hunter2")
	require.Error(t, err)
	var hsErr *HandshakeError
	require.ErrorAs(t, err, &hsErr)
	require.Equal(t, byte(handshakePermissionDenied), hsErr.Status)
}

func TestListUsersAndAddUser(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	c := dialTestClient(t, addr, "admin", "secret")

	entries, err := c.ListUsers()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "admin", entries[0].Username)

	status, err := c.AddUser("bob", "builder", byte(users.RoleRegular))
	require.NoError(t, err)
	require.Equal(t, byte(controlplane.AddUserOk), status)

	entries, err = c.ListUsers()
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestGetAndSetBufferSize(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	c := dialTestClient(t, addr, "admin", "secret")

	size, err := c.GetBufferSize()
	require.NoError(t, err)
	require.Equal(t, uint32(4096), size)

	accepted, err := c.SetBufferSize(8192)
	require.NoError(t, err)
	require.True(t, accepted)

	size, err = c.GetBufferSize()
	require.NoError(t, err)
	require.Equal(t, uint32(8192), size)
}

func TestEventStreamDeliversPushedEvents(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	c := dialTestClient(t, addr, "admin", "secret")

	status, err := c.EventStreamConfig(true)
	require.NoError(t, err)
	require.Equal(t, byte(1), status) // eventStreamEnabled

	result := a.AddUser("admin", "carol", "pw", users.RoleRegular)
	require.Equal(t, controlplane.AddUserOk, result)

	select {
	case ev := <-c.Events():
		_, ok := ev.Data.(events.UserRegisteredByManager)
		require.True(t, ok, "expected a UserRegisteredByManager event, got %T", ev.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pushed event")
	}
}

func TestTerminalErrorFailsPendingCalls(t *testing.T) {
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	a := newTestActor(t, store)
	bus := events.NewBus()
	srv := sandstorm.NewServer(a, store, bus)
	addr := listenAndServe(t, srv)

	c := dialTestClient(t, addr, "admin", "secret")

	_, err := c.Meow()
	require.NoError(t, err)

	c.Close()

	_, err = c.Meow()
	require.Error(t, err)
}
