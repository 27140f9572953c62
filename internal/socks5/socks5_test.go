package socks5

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
)

func newTestActor(t *testing.T, enabled map[events.AuthMethod]bool) *controlplane.Actor {
	t.Helper()
	store := users.New()
	store.InsertOrUpdate("admin", "secret", users.RoleAdmin)

	a := controlplane.New(controlplane.Options{
		Users:              store,
		Metrics:            metrics.New(),
		Bus:                events.NewBus(),
		Mux:                netmux.New(),
		SocksHandler:       func(context.Context, net.Conn) {},
		SandstormHandler:   func(context.Context, net.Conn) {},
		InitialBufferSize:  4096,
		EnabledAuthMethods: enabled,
	})
	go a.Run()
	t.Cleanup(a.Shutdown)
	return a
}

// echoListener starts a TCP listener that echoes every byte it receives
// back to the caller, standing in for the CONNECT destination.
func echoListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				_, _ = io.Copy(c, c)
			}(conn)
		}
	}()
	return ln
}

func dialSocksPair(t *testing.T, srv *Server) (client net.Conn) {
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

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNoAuthConnectToEchoServer(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthNoAuth: true})
	store := users.New()
	srv := NewServer(a, store, bus)

	dest := echoListener(t)
	defer dest.Close()

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	// greeting: version 5, 1 method, NoAuth
	_, err := client.Write([]byte{0x05, 0x01, 0x00})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)
	require.Equal(t, []byte{0x05, 0x00}, resp)

	destAddr := dest.Addr().(*net.TCPAddr)
	req := []byte{0x05, 0x01, 0x00, 0x01}
	req = append(req, destAddr.IP.To4()...)
	req = append(req, byte(destAddr.Port>>8), byte(destAddr.Port))
	_, err = client.Write(req)
	require.NoError(t, err)

	reply := make([]byte, 10)
	_, err = readFull(r, reply)
	require.NoError(t, err)
	require.Equal(t, byte(0x05), reply[0])
	require.Equal(t, byte(replySuccess), reply[1])

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)
	echoed := make([]byte, 5)
	_, err = readFull(r, echoed)
	require.NoError(t, err)
	require.Equal(t, "hello", string(echoed))
}

func TestUserPassAuthenticationSuccess(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthUserPass: true})
	store := users.New()
	store.InsertOrUpdate("alice", "wonderland", users.RoleRegular)
	srv := NewServer(a, store, bus)

	dest := echoListener(t)
	defer dest.Close()

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	_, err := client.Write([]byte{0x05, 0x01, 0x02})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)
	require.Equal(t, []byte{0x05, 0x02}, resp)

	authReq := []byte{0x01, 0x05}
	authReq = append(authReq, []byte("alice")...)
	authReq = append(authReq, 0x0a)
	authReq = append(authReq, []byte("wonderland")...)
	_, err = client.Write(authReq)
	require.NoError(t, err)

	authResp := make([]byte, 2)
	_, err = readFull(r, authResp)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00}, authResp)
}

func TestUserPassAuthenticationFailureClosesSession(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthUserPass: true})
	store := users.New()
	store.InsertOrUpdate("alice", "wonderland", users.RoleRegular)
	srv := NewServer(a, store, bus)

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	_, err := client.Write([]byte{0x05, 0x01, 0x02})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)

	authReq := []byte{0x01, 0x05}
	authReq = append(authReq, []byte("alice")...)
	authReq = append(authReq, 0x05)
	authReq = append(authReq, []byte("wrong")...)
	_, err = client.Write(authReq)
	require.NoError(t, err)

	authResp := make([]byte, 2)
	_, err = readFull(r, authResp)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x01}, authResp)

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 1)
	_, err = client.Read(buf)
	require.Error(t, err)
}

func TestCommandNotSupportedRejected(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthNoAuth: true})
	store := users.New()
	srv := NewServer(a, store, bus)

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	_, err := client.Write([]byte{0x05, 0x01, 0x00})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)

	// BIND (0x02) instead of CONNECT
	_, err = client.Write([]byte{0x05, 0x02, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	reply := make([]byte, 10)
	_, err = readFull(r, reply)
	require.NoError(t, err)
	require.Equal(t, byte(replyCommandNotSupported), reply[1])
}

// TestDomainConnectUnresolvableHostReportsHostUnreachable exercises atyp=3
// (domain) where the name is well-formed but DNS resolution itself fails.
// Spec §4.5/§7 require this be reported as HostUnreachable, distinct from
// AddressTypeNotSupported which covers a malformed request body.
func TestDomainConnectUnresolvableHostReportsHostUnreachable(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthNoAuth: true})
	store := users.New()
	srv := NewServer(a, store, bus)
	srv.resolve = func(ctx context.Context, domain string) ([]net.IP, error) {
		return nil, &net.DNSError{Err: "no such host", Name: domain, IsNotFound: true}
	}

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	_, err := client.Write([]byte{0x05, 0x01, 0x00})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)

	domain := "nxdomain.invalid"
	req := []byte{0x05, 0x01, 0x00, 0x03, byte(len(domain))}
	req = append(req, []byte(domain)...)
	req = append(req, 0x01, 0xbb) // port 443
	_, err = client.Write(req)
	require.NoError(t, err)

	reply := make([]byte, 10)
	_, err = readFull(r, reply)
	require.NoError(t, err)
	require.Equal(t, byte(replyHostUnreachable), reply[1])
}

// TestDomainConnectInvalidCharsetReportsAddressTypeNotSupported exercises
// the malformed-body branch of the same code path: a domain containing a
// disallowed character must still map to AddressTypeNotSupported, not
// HostUnreachable, even though resolveTarget fails in both cases.
func TestDomainConnectInvalidCharsetReportsAddressTypeNotSupported(t *testing.T) {
	bus := events.NewBus()
	a := newTestActor(t, map[events.AuthMethod]bool{events.AuthNoAuth: true})
	store := users.New()
	srv := NewServer(a, store, bus)
	srv.resolve = func(ctx context.Context, domain string) ([]net.IP, error) {
		return nil, errors.New("resolve should not be called for an invalid domain")
	}

	client := dialSocksPair(t, srv)
	r := bufio.NewReader(client)

	_, err := client.Write([]byte{0x05, 0x01, 0x00})
	require.NoError(t, err)
	resp := make([]byte, 2)
	_, err = readFull(r, resp)
	require.NoError(t, err)

	domain := "bad_host!"
	req := []byte{0x05, 0x01, 0x00, 0x03, byte(len(domain))}
	req = append(req, []byte(domain)...)
	req = append(req, 0x01, 0xbb)
	_, err = client.Write(req)
	require.NoError(t, err)

	reply := make([]byte, 10)
	_, err = readFull(r, reply)
	require.NoError(t, err)
	require.Equal(t, byte(replyAddressTypeNotSupported), reply[1])
}
