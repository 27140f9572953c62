package controlplane

import (
	"fmt"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/logger"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/users"
)

type shutdownCmd struct{ reply chan struct{} }

type listSocketsCmd struct {
	kind  events.SocketKind
	reply chan []string
}

type addSocketCmd struct {
	kind  events.SocketKind
	addr  string
	reply chan addSocketResult
}

type addSocketResult struct {
	bound string
	err   error
}

type removeSocketCmd struct {
	kind  events.SocketKind
	addr  string
	reply chan error
}

type listUsersCmd struct{ reply chan []users.Entry }

type addUserCmd struct {
	manager  string
	username string
	password string
	role     users.Role
	reply    chan AddUserResult
}

type updateUserCmd struct {
	manager  string
	username string
	password *string
	role     *users.Role
	reply    chan users.UpdateResult
}

type deleteUserCmd struct {
	manager  string
	username string
	reply    chan users.DeleteResult
}

type listAuthMethodsCmd struct {
	reply chan map[events.AuthMethod]bool
}

type toggleAuthMethodCmd struct {
	manager string
	method  events.AuthMethod
	enabled bool
	reply   chan bool
}

type getBufferSizeCmd struct{ reply chan uint32 }

type setBufferSizeCmd struct {
	manager string
	size    uint32
	reply   chan bool
}

type requestMetricsCmd struct{ reply chan metrics.Snapshot }

type subscribeCmd struct {
	capacity int
	reply    chan subscribeResult
}

type subscribeResult struct {
	id      uint64
	ch      <-chan events.Envelope
	initial metrics.Snapshot
}

type unsubscribeCmd struct{ id uint64 }

func (a *Actor) dispatch(cmd any) {
	switch c := cmd.(type) {
	case shutdownCmd:
		a.handleShutdown(c)
	case listSocketsCmd:
		c.reply <- a.handleListSockets(c.kind)
	case addSocketCmd:
		c.reply <- a.handleAddSocket(c.kind, c.addr)
	case removeSocketCmd:
		c.reply <- a.handleRemoveSocket(c.kind, c.addr)
	case listUsersCmd:
		c.reply <- a.users.Snapshot()
	case addUserCmd:
		c.reply <- a.handleAddUser(c)
	case updateUserCmd:
		c.reply <- a.handleUpdateUser(c)
	case deleteUserCmd:
		c.reply <- a.handleDeleteUser(c)
	case listAuthMethodsCmd:
		c.reply <- a.handleListAuthMethods()
	case toggleAuthMethodCmd:
		c.reply <- a.handleToggleAuthMethod(c)
	case getBufferSizeCmd:
		c.reply <- a.bufferSize
	case setBufferSizeCmd:
		c.reply <- a.handleSetBufferSize(c)
	case requestMetricsCmd:
		c.reply <- a.metrics.Snapshot()
	case subscribeCmd:
		c.reply <- a.handleSubscribe(c.capacity)
	case unsubscribeCmd:
		a.bus.Unsubscribe(c.id)
	default:
		logger.Warn("controlplane: unknown command type", "type", fmt.Sprintf("%T", cmd))
	}
}

func (a *Actor) handleShutdown(c shutdownCmd) {
	a.shuttingDown = true
	a.mux.CloseListeners()
	close(c.reply)
}

func (a *Actor) handleListSockets(kind events.SocketKind) []string {
	addrs := make([]string, 0, len(a.sockets[kind]))
	for addr := range a.sockets[kind] {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (a *Actor) handleAddSocket(kind events.SocketKind, addr string) addSocketResult {
	bound, err := a.mux.AddListener(addr, a.handlerFor(kind))
	if err != nil {
		return addSocketResult{err: err}
	}
	a.sockets[kind][bound] = struct{}{}
	if kind == events.SocketSocks5 {
		a.publish(events.NewSocket{Kind: events.SocketSocks5, Addr: bound})
	} else {
		a.publish(events.NewSocket{Kind: events.SocketSandstorm, Addr: bound})
	}
	return addSocketResult{bound: bound}
}

func (a *Actor) handleRemoveSocket(kind events.SocketKind, addr string) error {
	if _, ok := a.sockets[kind][addr]; !ok {
		return ErrSocketNotFound
	}
	delete(a.sockets[kind], addr)
	err := a.mux.RemoveListener(addr)
	a.publish(events.RemovedSocket{Kind: kind, Addr: addr})
	return err
}

func (a *Actor) handleAddUser(c addUserCmd) AddUserResult {
	if c.username == "" || len(c.username) > users.MaxFieldLen ||
		c.password == "" || len(c.password) > users.MaxFieldLen {
		return AddUserInvalidValues
	}
	if _, _, ok := a.users.Lookup(c.username); ok {
		return AddUserAlreadyExists
	}
	a.users.InsertOrUpdate(c.username, c.password, c.role)
	a.publish(events.UserRegisteredByManager{Manager: c.manager, Username: c.username})
	return AddUserOk
}

func (a *Actor) handleUpdateUser(c updateUserCmd) users.UpdateResult {
	result := a.users.Update(c.username, c.password, c.role)
	if result == users.UpdateOk {
		a.publish(events.UserUpdatedByManager{Manager: c.manager, Username: c.username})
	}
	return result
}

func (a *Actor) handleDeleteUser(c deleteUserCmd) users.DeleteResult {
	result := a.users.Delete(c.username)
	if result == users.DeleteOk {
		a.publish(events.UserDeletedByManager{Manager: c.manager, Username: c.username})
	}
	return result
}

func (a *Actor) handleListAuthMethods() map[events.AuthMethod]bool {
	out := make(map[events.AuthMethod]bool, len(a.authEnabled))
	for k, v := range a.authEnabled {
		out[k] = v
	}
	return out
}

func (a *Actor) handleToggleAuthMethod(c toggleAuthMethodCmd) bool {
	previous := a.authEnabled[c.method]
	changed := previous != c.enabled
	a.authEnabled[c.method] = c.enabled
	if changed {
		a.publish(events.AuthMethodToggledByManager{Manager: c.manager, Method: c.method, Enabled: c.enabled})
	}
	return changed
}

func (a *Actor) handleSetBufferSize(c setBufferSizeCmd) bool {
	if c.size < 1 {
		return false
	}
	a.bufferSize = c.size
	a.publish(events.BufferSizeChangedByManager{Manager: c.manager, NewSize: c.size})
	return true
}

func (a *Actor) handleSubscribe(capacity int) subscribeResult {
	id, ch := a.bus.Subscribe(capacity)
	return subscribeResult{id: id, ch: ch, initial: a.metrics.Snapshot()}
}
