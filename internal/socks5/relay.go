package socks5

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/duststorm/duststorm/internal/events"
)

// halfCloser is implemented by *net.TCPConn and *tls.Conn; it lets one
// direction of the relay signal EOF to its peer without tearing down the
// whole connection.
type halfCloser interface {
	CloseWrite() error
}

// relay implements spec §4.5 step 5: a bidirectional metered copy between
// the client connection and dest. Each direction is its own pump, advancing
// Running -> ShuttingDown -> Done independently; the session is finished
// once both pumps have returned. Metering is per-chunk (ClientBytesSent /
// ClientBytesReceived fire on every successful read+write, not once at
// EOF), per spec §5's live-metrics requirement.
func (s *session) relay(ctx context.Context, dest net.Conn) error {
	bufSize := s.server.actor.GetBufferSize()

	var wg sync.WaitGroup
	var sentTotal, receivedTotal atomic.Uint64
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		n, err := s.pump(dest, s.conn, bufSize, func(n uint64) {
			sentTotal.Add(n)
			s.server.publish(events.ClientBytesSent{ClientID: s.clientID, Count: n})
		})
		_ = n
		s.server.publish(events.ClientSourceShutdown{ClientID: s.clientID})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		n, err := s.pump(s.conn, dest, bufSize, func(n uint64) {
			receivedTotal.Add(n)
			s.server.publish(events.ClientBytesReceived{ClientID: s.clientID, Count: n})
		})
		_ = n
		s.server.publish(events.ClientDestinationShutdown{ClientID: s.clientID})
		errs <- err
	}()

	wg.Wait()
	close(errs)

	s.sent = sentTotal.Load()
	s.received = receivedTotal.Load()

	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// pump copies from src to dst in bufSize chunks, invoking onChunk after
// every successful write with the number of bytes forwarded. It returns nil
// on a clean EOF from src. When dst supports half-close, EOF on src
// triggers CloseWrite on dst instead of a full Close so the other pump can
// keep draining.
func (s *session) pump(dst, src net.Conn, bufSize uint32, onChunk func(uint64)) (uint64, error) {
	if bufSize == 0 {
		bufSize = 4096
	}
	buf := make([]byte, bufSize)
	var total uint64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return total, writeErr
			}
			total += uint64(n)
			onChunk(uint64(n))
		}
		if readErr != nil {
			if readErr == io.EOF {
				if hc, ok := dst.(halfCloser); ok {
					_ = hc.CloseWrite()
				}
				return total, nil
			}
			return total, readErr
		}
	}
}
