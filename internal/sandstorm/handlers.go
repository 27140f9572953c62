package sandstorm

import (
	"bytes"
	"io"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/duststorm/duststorm/internal/wire"
)

func newBuf() *bytes.Buffer { return &bytes.Buffer{} }

// handleEventStreamConfig implements tag 0x01. Callers hold writeMu.
func (s *session) handleEventStreamConfig() error {
	enable, err := wire.ReadBool(s.r)
	if err != nil {
		return err
	}

	var status byte
	if !enable {
		s.eventsMu.Lock()
		if s.events != nil {
			s.server.actor.Unsubscribe(s.events.id)
			s.events = nil
		}
		s.eventsMu.Unlock()
		status = eventStreamDisabledNow
	} else {
		s.eventsMu.Lock()
		if s.events != nil {
			status = eventStreamWasAlreadyEnabled
		} else {
			id, ch, _ := s.server.actor.Subscribe(64)
			s.events = &eventSubscription{id: id, ch: ch}
			s.pumpWG.Add(1)
			go s.pumpEvents(s.events)
			status = eventStreamEnabled
		}
		s.eventsMu.Unlock()
	}

	return s.writeFrame(tagEventStreamConfig, []byte{status})
}

// pumpEvents forwards every envelope on sub.ch as a tag-0x02 frame until
// the channel closes (Unsubscribe) or a write fails. Frames are
// interleaved with command responses under writeMu, never mid-frame, per
// spec §5's "event frames may interleave between responses but never
// mid-response".
func (s *session) pumpEvents(sub *eventSubscription) {
	defer s.pumpWG.Done()
	for env := range sub.ch {
		s.writeMu.Lock()
		err := wire.WriteU8(s.w, tagEventStream)
		if err == nil {
			err = events.WriteEvent(s.w, env.Event)
		}
		if err == nil {
			err = s.w.Flush()
		}
		s.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *session) stopEventPump() {
	s.eventsMu.Lock()
	if s.events != nil {
		s.server.actor.Unsubscribe(s.events.id)
		s.events = nil
	}
	s.eventsMu.Unlock()
	s.pumpWG.Wait()
}

func (s *session) handleListSockets(tag byte, kind events.SocketKind) error {
	addrs := s.server.actor.ListSockets(kind)
	socketAddrs := make([]wire.SocketAddr, 0, len(addrs))
	for _, addr := range addrs {
		sa, err := stringToSocketAddr(addr)
		if err != nil {
			continue
		}
		socketAddrs = append(socketAddrs, sa)
	}

	buf := newBuf()
	if err := wire.WriteShortList(buf, socketAddrs, wire.WriteSocketAddr); err != nil {
		return err
	}
	return s.writeFrame(tag, buf.Bytes())
}

func (s *session) handleAddSocket(tag byte, kind events.SocketKind) error {
	addr, err := wire.ReadSocketAddr(s.r)
	if err != nil {
		return err
	}
	addrStr, err := socketAddrToString(addr)

	buf := newBuf()
	if err != nil {
		result := wire.Err[struct{}](wire.InvalidInput, err.Error())
		if werr := wire.WriteResult(buf, result, encodeUnit); werr != nil {
			return werr
		}
		return s.writeFrame(tag, buf.Bytes())
	}

	_, bindErr := s.server.actor.AddSocket(kind, addrStr)
	var result wire.Result[struct{}]
	if bindErr != nil {
		result = wire.Err[struct{}](wire.Other, bindErr.Error())
	} else {
		result = wire.Ok(struct{}{})
	}
	if err := wire.WriteResult(buf, result, encodeUnit); err != nil {
		return err
	}
	return s.writeFrame(tag, buf.Bytes())
}

func (s *session) handleRemoveSocket(tag byte, kind events.SocketKind) error {
	addr, err := wire.ReadSocketAddr(s.r)
	if err != nil {
		return err
	}
	addrStr, err := socketAddrToString(addr)
	status := byte(removeSocketOk)
	if err != nil {
		status = removeSocketNotFound
	} else if rmErr := s.server.actor.RemoveSocket(kind, addrStr); rmErr != nil {
		status = removeSocketNotFound
	}
	return s.writeFrame(tag, []byte{status})
}

func (s *session) handleListUsers() error {
	entries := s.server.actor.ListUsers()
	buf := newBuf()
	if err := wire.WriteShortList(buf, entries, writeUserEntry); err != nil {
		return err
	}
	return s.writeFrame(tagListUsers, buf.Bytes())
}

func (s *session) handleAddUser() error {
	username, err := wire.ReadShortString(s.r)
	if err != nil {
		return err
	}
	password, err := wire.ReadShortString(s.r)
	if err != nil {
		return err
	}
	roleByte, err := wire.ReadU8(s.r)
	if err != nil {
		return err
	}
	role := users.Role(roleByte)

	result := s.server.actor.AddUser(s.username, username, password, role)
	return s.writeFrame(tagAddUser, []byte{byte(result)})
}

func (s *session) handleUpdateUser() error {
	username, err := wire.ReadShortString(s.r)
	if err != nil {
		return err
	}
	passwordOpt, err := wire.ReadOption(s.r, wire.ReadShortString)
	if err != nil {
		return err
	}
	roleOpt, err := wire.ReadOption(s.r, wire.ReadU8)
	if err != nil {
		return err
	}

	var password *string
	if v, ok := passwordOpt.Get(); ok {
		password = &v
	}
	var role *users.Role
	if v, ok := roleOpt.Get(); ok {
		r := users.Role(v)
		role = &r
	}

	result := s.server.actor.UpdateUser(s.username, username, password, role)
	return s.writeFrame(tagUpdateUser, []byte{byte(result)})
}

func (s *session) handleDeleteUser() error {
	username, err := wire.ReadShortString(s.r)
	if err != nil {
		return err
	}
	result := s.server.actor.DeleteUser(s.username, username)
	return s.writeFrame(tagDeleteUser, []byte{byte(result)})
}

func (s *session) handleListAuthMethods() error {
	enabled := s.server.actor.ListAuthMethods()
	type pair struct {
		method  events.AuthMethod
		enabled bool
	}
	pairs := []pair{
		{events.AuthNoAuth, enabled[events.AuthNoAuth]},
		{events.AuthUserPass, enabled[events.AuthUserPass]},
	}
	buf := newBuf()
	if err := wire.WriteShortList(buf, pairs, func(w io.Writer, p pair) error {
		return writeAuthMethodEntry(w, p.method, p.enabled)
	}); err != nil {
		return err
	}
	return s.writeFrame(tagListAuthMethods, buf.Bytes())
}

func (s *session) handleToggleAuthMethod() error {
	methodByte, err := wire.ReadU8(s.r)
	if err != nil {
		return err
	}
	enable, err := wire.ReadBool(s.r)
	if err != nil {
		return err
	}
	changed := s.server.actor.ToggleAuthMethod(s.username, events.AuthMethod(methodByte), enable)
	var body byte
	if changed {
		body = 1
	}
	return s.writeFrame(tagToggleAuthMethod, []byte{body})
}

func (s *session) handleRequestMetrics() error {
	snap := s.server.actor.RequestMetrics()
	buf := newBuf()
	opt := wire.Some(snap)
	if err := wire.WriteOption(buf, opt, writeMetricsSnapshot); err != nil {
		return err
	}
	return s.writeFrame(tagRequestCurrentMetrics, buf.Bytes())
}

func (s *session) handleGetBufferSize() error {
	size := s.server.actor.GetBufferSize()
	buf := newBuf()
	if err := wire.WriteU32(buf, size); err != nil {
		return err
	}
	return s.writeFrame(tagGetBufferSize, buf.Bytes())
}

func (s *session) handleSetBufferSize() error {
	size, err := wire.ReadU32(s.r)
	if err != nil {
		return err
	}
	accepted := s.server.actor.SetBufferSize(s.username, size)
	var body byte
	if accepted {
		body = 1
	}
	return s.writeFrame(tagSetBufferSize, []byte{body})
}

func encodeUnit(_ io.Writer, _ struct{}) error {
	return nil
}
