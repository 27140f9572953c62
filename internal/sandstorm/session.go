package sandstorm

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/duststorm/duststorm/internal/wire"
)

type eventSubscription struct {
	id uint64
	ch <-chan events.Envelope
}

type session struct {
	server    *Server
	conn      net.Conn
	r         *bufio.Reader
	w         *bufio.Writer
	writeMu   sync.Mutex
	managerID uint64
	username  string

	eventsMu sync.Mutex
	events   *eventSubscription
	pumpWG   sync.WaitGroup
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := s.nextID.Add(1)
	peer := conn.RemoteAddr().String()
	s.publish(events.NewSandstormConnectionAccepted{ManagerID: id, Peer: peer})

	sess := &session{
		server:    s,
		conn:      conn,
		r:         bufio.NewReader(conn),
		w:         bufio.NewWriter(conn),
		managerID: id,
	}
	defer sess.stopEventPump()

	if ok, err := sess.handshake(); err != nil || !ok {
		s.publish(events.SandstormConnectionFinished{ManagerID: id})
		return
	}

	sess.commandLoop(ctx)
	s.publish(events.SandstormConnectionFinished{ManagerID: id})
}

// handshake implements spec §4.6 step 1.
func (s *session) handshake() (bool, error) {
	version, err := wire.ReadU8(s.r)
	if err != nil {
		return false, err
	}
	if version != handshakeVersion {
		return false, s.writeStatus(handshakeUnsupportedVersion)
	}

	username, err := wire.ReadShortString(s.r)
	if err != nil {
		return false, err
	}
	password, err := wire.ReadShortString(s.r)
	if err != nil {
		return false, err
	}

	storedPassword, role, ok := s.server.users.Lookup(username)
	switch {
	case !ok || storedPassword != password:
		return false, s.writeStatus(handshakeInvalidUsernameOrPassword)
	case role != users.RoleAdmin:
		return false, s.writeStatus(handshakePermissionDenied)
	}

	s.username = username
	return true, s.writeStatus(handshakeOk)
}

func (s *session) writeStatus(status byte) error {
	if err := wire.WriteU8(s.w, status); err != nil {
		return err
	}
	return s.w.Flush()
}

// commandLoop implements spec §4.6 step 2: read a tag, dispatch, flush,
// repeat. Reaching EOF ends the session cleanly; an unrecognized tag ends
// it immediately without a response.
func (s *session) commandLoop(ctx context.Context) {
	for {
		tag, err := wire.ReadU8(s.r)
		if err != nil {
			return
		}

		shouldClose, err := s.dispatch(ctx, tag)
		if err != nil {
			return
		}
		if shouldClose {
			return
		}
	}
}

// dispatch runs one command tag to completion, including writing and
// flushing its response frame (tagged with the same byte per this
// session's framing convention: every response begins with the tag of the
// request it answers, and only server-pushed event frames use tag 0x02).
func (s *session) dispatch(ctx context.Context, tag byte) (shouldClose bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	switch tag {
	case tagShutdown:
		s.server.actor.Shutdown()
		if err := s.writeFrame(tagShutdown, nil); err != nil {
			return false, err
		}
		return true, nil
	case tagEventStreamConfig:
		return false, s.handleEventStreamConfig()
	case tagListSocks5Sockets:
		return false, s.handleListSockets(tagListSocks5Sockets, events.SocketSocks5)
	case tagAddSocks5Socket:
		return false, s.handleAddSocket(tagAddSocks5Socket, events.SocketSocks5)
	case tagRemoveSocks5Socket:
		return false, s.handleRemoveSocket(tagRemoveSocks5Socket, events.SocketSocks5)
	case tagListSandstormSockets:
		return false, s.handleListSockets(tagListSandstormSockets, events.SocketSandstorm)
	case tagAddSandstormSocket:
		return false, s.handleAddSocket(tagAddSandstormSocket, events.SocketSandstorm)
	case tagRemoveSandstormSocket:
		return false, s.handleRemoveSocket(tagRemoveSandstormSocket, events.SocketSandstorm)
	case tagListUsers:
		return false, s.handleListUsers()
	case tagAddUser:
		return false, s.handleAddUser()
	case tagUpdateUser:
		return false, s.handleUpdateUser()
	case tagDeleteUser:
		return false, s.handleDeleteUser()
	case tagListAuthMethods:
		return false, s.handleListAuthMethods()
	case tagToggleAuthMethod:
		return false, s.handleToggleAuthMethod()
	case tagRequestCurrentMetrics:
		return false, s.handleRequestMetrics()
	case tagGetBufferSize:
		return false, s.handleGetBufferSize()
	case tagSetBufferSize:
		return false, s.handleSetBufferSize()
	case tagMeow:
		return false, s.writeFrame(tagMeow, []byte("MEOW"))
	default:
		return true, fmt.Errorf("sandstorm: unsupported command tag %#x", tag)
	}
}

// writeFrame writes tag followed by body (already-encoded bytes) and
// flushes. Callers hold writeMu.
func (s *session) writeFrame(tag byte, body []byte) error {
	if err := wire.WriteU8(s.w, tag); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := s.w.Write(body); err != nil {
			return err
		}
	}
	return s.w.Flush()
}
