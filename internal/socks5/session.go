package socks5

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/wire"
)

type session struct {
	server   *Server
	conn     net.Conn
	r        *bufio.Reader
	w        *bufio.Writer
	clientID uint64
	username string
	sent     uint64
	received uint64
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := s.nextID.Add(1)
	peer := conn.RemoteAddr().String()
	s.publish(events.NewClientConnectionAccepted{ClientID: id, Peer: peer})

	sess := &session{
		server:   s,
		conn:     conn,
		r:        bufio.NewReader(conn),
		w:        bufio.NewWriter(conn),
		clientID: id,
	}

	var finishErr string
	if err := sess.run(ctx); err != nil {
		finishErr = err.Error()
	}

	s.publish(events.ClientConnectionFinished{
		ClientID: id,
		Sent:     sess.sent,
		Received: sess.received,
		Err:      finishErr,
	})
}

func (s *session) run(ctx context.Context) error {
	method, err := s.greeting()
	if err != nil {
		return err
	}
	if method == methodNoAcceptable {
		return nil
	}

	if method == methodUserPass {
		ok, err := s.authenticate()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("authentication failed")
		}
	}

	destConn, bindErr := s.handleRequest(ctx)
	if destConn == nil {
		return bindErr
	}
	defer destConn.Close()

	return s.relay(ctx, destConn)
}

// greeting implements spec §4.5 step 1.
func (s *session) greeting() (byte, error) {
	v, err := wire.ReadU8(s.r)
	if err != nil {
		return 0, err
	}
	if v != version5 {
		_ = writeRaw(s.w, version5, methodNoAcceptable)
		return methodNoAcceptable, fmt.Errorf("unsupported SOCKS version %d", v)
	}

	nmethods, err := wire.ReadU8(s.r)
	if err != nil {
		return 0, err
	}
	methods := make([]byte, nmethods)
	for i := range methods {
		b, err := wire.ReadU8(s.r)
		if err != nil {
			return 0, err
		}
		methods[i] = b
	}

	enabled := s.server.actor.ListAuthMethods()
	offered := map[byte]bool{}
	for _, m := range methods {
		offered[m] = true
	}

	selected := byte(methodNoAcceptable)
	if enabled[events.AuthNoAuth] && offered[methodNoAuth] {
		selected = methodNoAuth
	} else if enabled[events.AuthUserPass] && offered[methodUserPass] {
		selected = methodUserPass
	}

	if err := writeRaw(s.w, version5, selected); err != nil {
		return 0, err
	}
	if err := s.w.Flush(); err != nil {
		return 0, err
	}
	return selected, nil
}

// authenticate implements spec §4.5 step 2.
func (s *session) authenticate() (bool, error) {
	sub, err := wire.ReadU8(s.r)
	if err != nil {
		return false, err
	}
	if sub != userPassSubversion {
		return false, fmt.Errorf("unsupported auth sub-version %d", sub)
	}
	username, err := wire.ReadShortString(s.r)
	if err != nil {
		return false, err
	}
	password, err := wire.ReadShortString(s.r)
	if err != nil {
		return false, err
	}

	storedPassword, _, ok := s.server.users.Lookup(username)
	success := ok && storedPassword == password

	status := byte(1)
	if success {
		status = 0
	}
	if err := writeRaw(s.w, userPassSubversion, status); err != nil {
		return false, err
	}
	if err := s.w.Flush(); err != nil {
		return false, err
	}

	if success {
		s.username = username
		s.server.publish(events.ClientAuthenticated{ClientID: s.clientID, Username: username})
	}
	return success, nil
}

func writeRaw(w *bufio.Writer, bs ...byte) error {
	_, err := w.Write(bs)
	return err
}

const dialTimeout = 10 * time.Second
