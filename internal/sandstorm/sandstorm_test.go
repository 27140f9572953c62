package sandstorm

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/duststorm/duststorm/internal/wire"
)

func newTestActor(t *testing.T) *controlplane.Actor {
	t.Helper()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	store.InsertOrUpdate("viewer", "hunter2", users.RoleRegular)

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
	return a
}

func dialSandstormPair(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		srv.serve(context.Background(), conn)
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func doHandshake(t *testing.T, client net.Conn, r *bufio.Reader, username, password string) byte {
	t.Helper()
	require.NoError(t, wire.WriteU8(client, handshakeVersion))
	require.NoError(t, wire.WriteShortString(client, username))
	require.NoError(t, wire.WriteShortString(client, password))
	status, err := wire.ReadU8(r)
	require.NoError(t, err)
	return status
}

func TestHandshakeSucceedsForAdmin(t *testing.T) {
	a := newTestActor(t)
	t.Cleanup(a.Shutdown)
	bus := events.NewBus()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	srv := NewServer(a, store, bus)

	client := dialSandstormPair(t, srv)
	r := bufio.NewReader(client)
	status := doHandshake(t, client, r, "admin", "secret")
	require.Equal(t, byte(handshakeOk), status)
}

func TestHandshakeRejectsWrongPassword(t *testing.T) {
	a := newTestActor(t)
	t.Cleanup(a.Shutdown)
	bus := events.NewBus()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	srv := NewServer(a, store, bus)

	client := dialSandstormPair(t, srv)
	r := bufio.NewReader(client)
	status := doHandshake(t, client, r, "admin", "nope")
	require.Equal(t, byte(handshakeInvalidUsernameOrPassword), status)
}

func TestHandshakeDeniesNonAdmin(t *testing.T) {
	a := newTestActor(t)
	t.Cleanup(a.Shutdown)
	bus := events.NewBus()
	store := users.New()
	store.InsertOrUpdate("viewer", "hunter2", users.RoleRegular)
	srv := NewServer(a, store, bus)

	client := dialSandstormPair(t, srv)
	r := bufio.NewReader(client)
	status := doHandshake(t, client, r, "viewer", "hunter2")
	require.Equal(t, byte(handshakePermissionDenied), status)
}

func TestHandshakeRejectsUnsupportedVersion(t *testing.T) {
	a := newTestActor(t)
	t.Cleanup(a.Shutdown)
	bus := events.NewBus()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	srv := NewServer(a, store, bus)

	client := dialSandstormPair(t, srv)
	r := bufio.NewReader(client)

	require.NoError(t, wire.WriteU8(client, 9))
	require.NoError(t, wire.WriteShortString(client, "admin"))
	require.NoError(t, wire.WriteShortString(client, "secret"))
	status, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(handshakeUnsupportedVersion), status)
}

func authedSession(t *testing.T) (net.Conn, *bufio.Reader, *controlplane.Actor) {
	a := newTestActor(t)
	t.Cleanup(a.Shutdown)
	bus := events.NewBus()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)
	srv := NewServer(a, store, bus)

	client := dialSandstormPair(t, srv)
	r := bufio.NewReader(client)
	status := doHandshake(t, client, r, "admin", "secret")
	require.Equal(t, byte(handshakeOk), status)
	return client, r, a
}

func TestMeowCommand(t *testing.T) {
	client, r, _ := authedSession(t)
	require.NoError(t, wire.WriteU8(client, tagMeow))

	tag, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(tagMeow), tag)

	body := make([]byte, 4)
	_, err = readFullTest(r, body)
	require.NoError(t, err)
	require.Equal(t, "MEOW", string(body))
}

func TestListUsersReflectsStore(t *testing.T) {
	client, r, _ := authedSession(t)
	require.NoError(t, wire.WriteU8(client, tagListUsers))

	tag, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(tagListUsers), tag)

	entries, err := wire.ReadShortList(r, func(rd io.Reader) (users.Entry, error) {
		username, err := wire.ReadShortString(rd)
		if err != nil {
			return users.Entry{}, err
		}
		roleByte, err := wire.ReadU8(rd)
		if err != nil {
			return users.Entry{}, err
		}
		return users.Entry{Username: username, Role: users.Role(roleByte)}, nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "admin", entries[0].Username)
}

func TestAddUserReturnsOk(t *testing.T) {
	client, r, _ := authedSession(t)

	require.NoError(t, wire.WriteU8(client, tagAddUser))
	require.NoError(t, wire.WriteShortString(client, "bob"))
	require.NoError(t, wire.WriteShortString(client, "builder"))
	require.NoError(t, wire.WriteU8(client, uint8(users.RoleRegular)))

	tag, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(tagAddUser), tag)
	status, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(controlplane.AddUserOk), status)
}

func TestGetAndSetBufferSize(t *testing.T) {
	client, r, _ := authedSession(t)

	require.NoError(t, wire.WriteU8(client, tagGetBufferSize))
	tag, err := wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(tagGetBufferSize), tag)
	size, err := wire.ReadU32(r)
	require.NoError(t, err)
	require.Equal(t, uint32(4096), size)

	require.NoError(t, wire.WriteU8(client, tagSetBufferSize))
	require.NoError(t, wire.WriteU32(client, 8192))
	tag, err = wire.ReadU8(r)
	require.NoError(t, err)
	require.Equal(t, byte(tagSetBufferSize), tag)
	accepted, err := wire.ReadBool(r)
	require.NoError(t, err)
	require.True(t, accepted)
}

func TestUnknownTagEndsSession(t *testing.T) {
	client, r, _ := authedSession(t)
	require.NoError(t, wire.WriteU8(client, 0x7F))

	buf := make([]byte, 1)
	_, err := r.Read(buf)
	require.Error(t, err)
}

func readFullTest(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
