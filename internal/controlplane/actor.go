// Package controlplane implements the single-owner state actor (spec §4.3):
// it serializes every mutation to listeners, user records, auth-method
// toggles, buffer size, and metrics, and fans out events to subscribed
// Sandstorm sessions. Grounded on the teacher's pkg/controlplane
// constructor/options shape, re-expressed as a channel actor since there is
// no REST surface here.
package controlplane

import (
	"errors"
	"sync"
	"time"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/netmux"
	"github.com/duststorm/duststorm/internal/users"
)

// ErrSocketNotFound is returned by RemoveSocket when addr is not currently
// bound for the given kind.
var ErrSocketNotFound = errors.New("controlplane: socket not found")

// AddUserResult is the outcome of AddUser.
type AddUserResult uint8

const (
	AddUserOk AddUserResult = iota
	AddUserAlreadyExists
	AddUserInvalidValues
)

const minBufferSize = 1

// Options configures a new Actor. SocksHandler and SandstormHandler are
// invoked by the accept multiplexer for connections on sockets of the
// matching SocketKind; they are supplied by the server wiring (cmd/duststorm)
// since session construction needs a reference back to the Actor itself.
type Options struct {
	Users              *users.Store
	Metrics            *metrics.Metrics
	Bus                *events.Bus
	Mux                *netmux.Mux
	SocksHandler       netmux.Handler
	SandstormHandler   netmux.Handler
	InitialBufferSize  uint32
	EnabledAuthMethods map[events.AuthMethod]bool
}

// Actor is the control-plane's single-owner goroutine. Exported methods that
// read or change state send a command on an internal channel and block for
// its reply (Unsubscribe sends without waiting); the
// goroutine started by Run processes commands strictly one at a time, which
// is what gives every owned piece of state its serializable semantics.
type Actor struct {
	cmds chan any

	users   *users.Store
	metrics *metrics.Metrics
	bus     *events.Bus
	mux     *netmux.Mux

	socksHandler     netmux.Handler
	sandstormHandler netmux.Handler

	sockets    map[events.SocketKind]map[string]struct{}
	authEnabled map[events.AuthMethod]bool
	bufferSize  uint32

	shuttingDown bool
	done         chan struct{}
	doneOnce     sync.Once
}

// New constructs an Actor but does not start its goroutine; call Run.
func New(opts Options) *Actor {
	authEnabled := make(map[events.AuthMethod]bool, 2)
	for k, v := range opts.EnabledAuthMethods {
		authEnabled[k] = v
	}
	if _, ok := authEnabled[events.AuthNoAuth]; !ok {
		authEnabled[events.AuthNoAuth] = false
	}
	if _, ok := authEnabled[events.AuthUserPass]; !ok {
		authEnabled[events.AuthUserPass] = false
	}

	bufSize := opts.InitialBufferSize
	if bufSize == 0 {
		bufSize = 4096
	}

	return &Actor{
		cmds:             make(chan any, 64),
		users:            opts.Users,
		metrics:          opts.Metrics,
		bus:              opts.Bus,
		mux:              opts.Mux,
		socksHandler:     opts.SocksHandler,
		sandstormHandler: opts.SandstormHandler,
		sockets: map[events.SocketKind]map[string]struct{}{
			events.SocketSocks5:    {},
			events.SocketSandstorm: {},
		},
		authEnabled: authEnabled,
		bufferSize:  bufSize,
		done:        make(chan struct{}),
	}
}

// Run processes commands until Shutdown is called, then returns. It also
// starts the metrics consumer: per spec §5's "metrics counters are updated
// only by the control-plane actor in response to events", session tasks
// never touch Metrics directly — they only publish events to the shared
// Bus, and this consumer is what actually applies them to the counters.
func (a *Actor) Run() {
	metricsID, metricsCh := a.bus.Subscribe(256)
	go a.consumeMetricsEvents(metricsCh)
	defer a.bus.Unsubscribe(metricsID)

	for cmd := range a.cmds {
		a.dispatch(cmd)
		if a.shuttingDown {
			a.doneOnce.Do(func() { close(a.done) })
			return
		}
	}
}

func (a *Actor) consumeMetricsEvents(ch <-chan events.Envelope) {
	for env := range ch {
		switch data := env.Event.Data.(type) {
		case events.NewClientConnectionAccepted:
			a.metrics.ClientConnected()
		case events.ClientConnectionFinished:
			a.metrics.ClientDisconnected()
		case events.ClientBytesSent:
			a.metrics.AddBytesSent(data.Count)
		case events.ClientBytesReceived:
			a.metrics.AddBytesReceived(data.Count)
		case events.NewSandstormConnectionAccepted:
			a.metrics.ManagerConnected()
		case events.SandstormConnectionFinished:
			a.metrics.ManagerDisconnected()
		}
	}
}

// Done is closed once the shutdown command has been fully processed.
func (a *Actor) Done() <-chan struct{} { return a.done }

func (a *Actor) publish(data events.EventData) {
	a.bus.Publish(events.Event{Timestamp: time.Now().Unix(), Data: data})
}

func (a *Actor) handlerFor(kind events.SocketKind) netmux.Handler {
	if kind == events.SocketSocks5 {
		return a.socksHandler
	}
	return a.sandstormHandler
}
