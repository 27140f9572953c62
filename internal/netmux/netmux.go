// Package netmux implements the accept multiplexer that serves both the
// SOCKS5 and Sandstorm listener tables from a single dynamic set of
// net.Listeners that sockets can be added to or removed from at runtime
// (spec §3's AddSocket/RemoveSocket commands).
package netmux

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/duststorm/duststorm/internal/logger"
)

// Handler is invoked in its own goroutine for every accepted connection. It
// owns conn for its whole lifetime, including closing it.
type Handler func(ctx context.Context, conn net.Conn)

type listenerEntry struct {
	listener net.Listener
	cancel   func()
}

// Mux owns zero or more listening sockets, each dispatching accepted
// connections to the Handler it was registered with. Listeners can be
// added and removed while the Mux is running; this is the Go-goroutine
// equivalent of the teacher's single-listener BaseAdapter.ServeWithFactory
// accept loop, generalized to a dynamic vector of listeners instead of one.
type Mux struct {
	mu            sync.Mutex
	listeners     map[string]*listenerEntry
	activeConns   sync.WaitGroup
	shutdownOnce  sync.Once
	shutdown      chan struct{}
	baseCtx       context.Context
	cancelBaseCtx context.CancelFunc
}

// New returns a Mux with no listeners yet bound.
func New() *Mux {
	ctx, cancel := context.WithCancel(context.Background())
	return &Mux{
		listeners:     make(map[string]*listenerEntry),
		shutdown:      make(chan struct{}),
		baseCtx:       ctx,
		cancelBaseCtx: cancel,
	}
}

// AddListener binds addr and begins accepting connections for handler. The
// returned address is the listener's actual bound address (useful when addr
// ends in ":0"). Returns an error if addr is already bound or bind fails.
func (m *Mux) AddListener(addr string, handler Handler) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("netmux: listen %s: %w", addr, err)
	}
	bound := ln.Addr().String()

	m.mu.Lock()
	if _, exists := m.listeners[bound]; exists {
		m.mu.Unlock()
		_ = ln.Close()
		return "", fmt.Errorf("netmux: listener already bound for %s", bound)
	}
	entryCtx, cancel := context.WithCancel(m.baseCtx)
	m.listeners[bound] = &listenerEntry{listener: ln, cancel: cancel}
	m.mu.Unlock()

	logger.Info("socket added", "address", bound)
	go m.acceptLoop(entryCtx, bound, ln, handler)
	return bound, nil
}

// RemoveListener closes the listener bound at addr, stopping its accept
// loop; connections already accepted are unaffected.
func (m *Mux) RemoveListener(addr string) error {
	m.mu.Lock()
	entry, ok := m.listeners[addr]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("netmux: no listener bound for %s", addr)
	}
	delete(m.listeners, addr)
	m.mu.Unlock()

	entry.cancel()
	err := entry.listener.Close()
	logger.Info("socket removed", "address", addr)
	return err
}

// Addrs returns every currently bound listener address.
func (m *Mux) Addrs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	addrs := make([]string, 0, len(m.listeners))
	for addr := range m.listeners {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (m *Mux) acceptLoop(ctx context.Context, addr string, ln net.Listener, handler Handler) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logger.Debug("accept error", "address", addr, "error", err)
				return
			}
		}
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetNoDelay(true)
		}

		m.activeConns.Add(1)
		go func() {
			defer m.activeConns.Done()
			defer conn.Close()
			handler(ctx, conn)
		}()
	}
}

// CloseListeners closes every listener and cancels every handler's context
// without waiting for in-flight connections to finish. It does not block on
// I/O: closing a listener is immediate. Safe to call more than once.
func (m *Mux) CloseListeners() {
	m.shutdownOnce.Do(func() {
		close(m.shutdown)
		m.mu.Lock()
		for addr, entry := range m.listeners {
			entry.cancel()
			if err := entry.listener.Close(); err != nil {
				logger.Debug("error closing listener", "address", addr, "error", err)
			}
		}
		m.listeners = make(map[string]*listenerEntry)
		m.mu.Unlock()
		m.cancelBaseCtx()
	})
}

// Wait blocks until every in-flight connection handler has returned or ctx
// is done, whichever comes first.
func (m *Mux) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("netmux: shutdown deadline exceeded with connections still active")
	}
}

// Shutdown is CloseListeners followed by Wait(ctx); it is a convenience for
// callers that have no reason to separate the two steps (most tests).
func (m *Mux) Shutdown(ctx context.Context) error {
	m.CloseListeners()
	return m.Wait(ctx)
}

// WaitIdleFor is a test convenience: it blocks until all active connection
// handlers have returned or the timeout elapses.
func (m *Mux) WaitIdleFor(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		m.activeConns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
