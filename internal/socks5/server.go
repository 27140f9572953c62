package socks5

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/logger"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
)

// Server holds the dependencies every SOCKS5 session needs. One Server
// backs every listener of kind SocketSocks5 in the netmux.Mux.
type Server struct {
	actor   *controlplane.Actor
	users   *users.Store
	bus     *events.Bus
	nextID  atomic.Uint64
	resolve func(ctx context.Context, domain string) ([]net.IP, error)
}

// NewServer returns a Server ready to produce a netmux.Handler. actor may be
// nil at construction time and filled in later via BindActor — the actor
// and its two Servers are mutually referential (Options needs both
// netmux.Handlers, and each Server needs the actor its sessions dispatch
// commands to), so callers typically construct the Server first, build the
// Actor from its Handler, then bind the Actor back before any connection is
// accepted.
func NewServer(actor *controlplane.Actor, store *users.Store, bus *events.Bus) *Server {
	return &Server{actor: actor, users: store, bus: bus, resolve: defaultResolve}
}

// BindActor sets the actor a Server's sessions dispatch commands to. Must be
// called before Handler's netmux.Handler is ever invoked.
func (s *Server) BindActor(actor *controlplane.Actor) {
	s.actor = actor
}

// Handler returns the netmux.Handler to register for SOCKS5 listeners.
func (s *Server) Handler() netmux.Handler {
	return func(ctx context.Context, conn net.Conn) {
		s.serve(ctx, conn)
	}
}

func defaultResolve(ctx context.Context, domain string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, domain)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return ips, nil
}

func (s *Server) publish(data events.EventData) {
	s.bus.Publish(events.Event{Timestamp: time.Now().Unix(), Data: data})
}

func (s *Server) logDebug(msg string, args ...any) {
	logger.Debug(msg, args...)
}
