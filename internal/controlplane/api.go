package controlplane

import (
	"context"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/users"
)

// Shutdown latches the shutdown flag, drops every listener, and returns
// once the actor goroutine has acknowledged. It does not wait for in-flight
// sessions to finish — callers drain those separately (via the same Mux
// passed into Options) before persisting users to disk.
func (a *Actor) Shutdown() {
	reply := make(chan struct{})
	a.cmds <- shutdownCmd{reply: reply}
	<-reply
}

// ListSockets returns every currently bound address for kind.
func (a *Actor) ListSockets(kind events.SocketKind) []string {
	reply := make(chan []string, 1)
	a.cmds <- listSocketsCmd{kind: kind, reply: reply}
	return <-reply
}

// AddSocket binds addr for kind and returns the actual bound address (which
// may differ from addr when it ends in ":0").
func (a *Actor) AddSocket(kind events.SocketKind, addr string) (string, error) {
	reply := make(chan addSocketResult, 1)
	a.cmds <- addSocketCmd{kind: kind, addr: addr, reply: reply}
	res := <-reply
	return res.bound, res.err
}

// RemoveSocket unbinds addr for kind. Returns ErrSocketNotFound if addr was
// never bound.
func (a *Actor) RemoveSocket(kind events.SocketKind, addr string) error {
	reply := make(chan error, 1)
	a.cmds <- removeSocketCmd{kind: kind, addr: addr, reply: reply}
	return <-reply
}

// ListUsers returns a stable-ordered snapshot of every user.
func (a *Actor) ListUsers() []users.Entry {
	reply := make(chan []users.Entry, 1)
	a.cmds <- listUsersCmd{reply: reply}
	return <-reply
}

// AddUser registers a brand-new user. manager is the authenticated
// Sandstorm username issuing the command, recorded on the emitted event.
func (a *Actor) AddUser(manager, username, password string, role users.Role) AddUserResult {
	reply := make(chan AddUserResult, 1)
	a.cmds <- addUserCmd{manager: manager, username: username, password: password, role: role, reply: reply}
	return <-reply
}

// UpdateUser applies a partial change; see users.Store.Update for the
// semantics of nil password/role.
func (a *Actor) UpdateUser(manager, username string, password *string, role *users.Role) users.UpdateResult {
	reply := make(chan users.UpdateResult, 1)
	a.cmds <- updateUserCmd{manager: manager, username: username, password: password, role: role, reply: reply}
	return <-reply
}

// DeleteUser removes username.
func (a *Actor) DeleteUser(manager, username string) users.DeleteResult {
	reply := make(chan users.DeleteResult, 1)
	a.cmds <- deleteUserCmd{manager: manager, username: username, reply: reply}
	return <-reply
}

// ListAuthMethods reports whether each AuthMethod is currently enabled.
func (a *Actor) ListAuthMethods() map[events.AuthMethod]bool {
	reply := make(chan map[events.AuthMethod]bool, 1)
	a.cmds <- listAuthMethodsCmd{reply: reply}
	return <-reply
}

// ToggleAuthMethod sets method's enabled state and reports whether this
// changed anything (idempotent toggles report false).
func (a *Actor) ToggleAuthMethod(manager string, method events.AuthMethod, enabled bool) bool {
	reply := make(chan bool, 1)
	a.cmds <- toggleAuthMethodCmd{manager: manager, method: method, enabled: enabled, reply: reply}
	return <-reply
}

// GetBufferSize returns the relay buffer size applied to new sessions.
func (a *Actor) GetBufferSize() uint32 {
	reply := make(chan uint32, 1)
	a.cmds <- getBufferSizeCmd{reply: reply}
	return <-reply
}

// SetBufferSize changes the buffer size for sessions started after this
// call; size must be >= 1 or the change is rejected (accepted=false).
func (a *Actor) SetBufferSize(manager string, size uint32) bool {
	reply := make(chan bool, 1)
	a.cmds <- setBufferSizeCmd{manager: manager, size: size, reply: reply}
	return <-reply
}

// RequestMetrics returns a point-in-time copy of every counter.
func (a *Actor) RequestMetrics() metrics.Snapshot {
	reply := make(chan metrics.Snapshot, 1)
	a.cmds <- requestMetricsCmd{reply: reply}
	return <-reply
}

// Subscribe registers an event subscriber with the given channel capacity,
// returning its id (for Unsubscribe), its receive channel, and an initial
// metrics snapshot taken at registration time.
func (a *Actor) Subscribe(capacity int) (id uint64, ch <-chan events.Envelope, initial metrics.Snapshot) {
	reply := make(chan subscribeResult, 1)
	a.cmds <- subscribeCmd{capacity: capacity, reply: reply}
	res := <-reply
	return res.id, res.ch, res.initial
}

// Unsubscribe removes a previously registered subscriber.
func (a *Actor) Unsubscribe(id uint64) {
	a.cmds <- unsubscribeCmd{id: id}
}

// WaitIdle blocks until every session accepted through the Actor's Mux has
// finished, or ctx is done. Call this after Shutdown, before persisting
// users to disk, per spec §4.3's "persistence ... after the actor has
// drained".
func (a *Actor) WaitIdle(ctx context.Context) error {
	return a.mux.Wait(ctx)
}
