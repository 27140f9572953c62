package sandstorm

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/duststorm/duststorm/internal/controlplane"
	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
)

// Server holds the dependencies every Sandstorm session needs. One Server
// backs every listener of kind SocketSandstorm in the netmux.Mux.
type Server struct {
	actor  *controlplane.Actor
	users  *users.Store
	bus    *events.Bus
	nextID atomic.Uint64
}

// NewServer returns a Server ready to produce a netmux.Handler. actor may be
// nil at construction time and filled in later via BindActor — see the
// matching note on socks5.NewServer for why.
func NewServer(actor *controlplane.Actor, store *users.Store, bus *events.Bus) *Server {
	return &Server{actor: actor, users: store, bus: bus}
}

// BindActor sets the actor a Server's sessions dispatch commands to. Must be
// called before Handler's netmux.Handler is ever invoked.
func (s *Server) BindActor(actor *controlplane.Actor) {
	s.actor = actor
}

// Handler returns the netmux.Handler to register for Sandstorm listeners.
func (s *Server) Handler() netmux.Handler {
	return func(ctx context.Context, conn net.Conn) {
		s.serve(ctx, conn)
	}
}

func (s *Server) publish(data events.EventData) {
	s.bus.Publish(events.Event{Timestamp: time.Now().Unix(), Data: data})
}
