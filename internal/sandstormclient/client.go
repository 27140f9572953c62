// Package sandstormclient implements the client side of the Sandstorm
// administrative protocol (spec §4.7): a request manager that lets an
// interactive caller issue commands and receive their responses without
// blocking on the network reader, plus a dedicated subscriber for
// server-pushed event frames. Grounded on the teacher's pkg/apiclient
// client/request-response shape, re-expressed for a framed TCP connection
// instead of HTTP round trips.
package sandstormclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/wire"
)

// pendingRequest is queued by the writer task in request order and popped
// by the reader task in the same order, mirroring spec §4.7's "responses
// ... delivered in FIFO order" guarantee.
type pendingRequest struct {
	tag    byte
	decode func(io.Reader) (any, error)
	reply  chan clientResult
}

type clientResult struct {
	value any
	err   error
}

type writeJob struct {
	frame   []byte
	pending *pendingRequest
}

// Client drives one Sandstorm session: a single background reader task
// and a single background writer task, per spec §4.7. Pending requests
// are tracked in a mutex-guarded FIFO queue rather than a channel, so
// terminating the session can drain it without a send-on-closed-channel
// race between the two tasks.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	writeCh  chan writeJob
	eventsCh chan events.Event

	mu      sync.Mutex
	pending []*pendingRequest
	ended   bool
	endErr  error

	closeOnce sync.Once
	closedCh  chan struct{}
}

// Dial connects to addr, performs the handshake (spec §4.6 step 1), and
// starts the reader/writer tasks. It returns an error wrapping the
// handshake's rejection status if the server declines.
func Dial(ctx context.Context, addr, username, password string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sandstormclient: dial %s: %w", addr, err)
	}

	c := &Client{
		conn:     conn,
		r:        bufio.NewReader(conn),
		w:        bufio.NewWriter(conn),
		writeCh:  make(chan writeJob, 32),
		eventsCh: make(chan events.Event, 256),
		closedCh: make(chan struct{}),
	}

	if err := c.handshake(username, password); err != nil {
		conn.Close()
		return nil, err
	}

	go c.writeLoop()
	go c.readLoop()
	return c, nil
}

// Close tears down the underlying connection, ending both background
// tasks. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closedCh)
		c.conn.Close()
	})
	return nil
}

// Done is closed once the session has ended (local Close, or the reader
// task hit EOF/a decode error).
func (c *Client) Done() <-chan struct{} { return c.closedCh }

// end marks the session terminated with err (the first error wins) and
// drains every still-pending request with it. Called by whichever task
// (reader or writer) first observes a fatal condition.
func (c *Client) end(err error) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	c.endErr = err
	drained := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, p := range drained {
		p.reply <- clientResult{err: err}
	}
	c.Close()
}

// Events returns the channel server-pushed event frames are delivered on.
// It is only populated after a successful EventStreamConfig(true) call.
func (c *Client) Events() <-chan events.Event { return c.eventsCh }

// writeLoop is the single task that owns the connection's write side.
func (c *Client) writeLoop() {
	for {
		select {
		case job := <-c.writeCh:
			c.handleWriteJob(job)
		case <-c.closedCh:
			return
		}
	}
}

func (c *Client) handleWriteJob(job writeJob) {
	_, err := c.w.Write(job.frame)
	if err == nil {
		err = c.w.Flush()
	}
	if err != nil {
		if job.pending != nil {
			job.pending.reply <- clientResult{err: err}
		}
		c.end(err)
		return
	}
	if job.pending == nil {
		return
	}

	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		job.pending.reply <- clientResult{err: c.endErr}
		return
	}
	c.pending = append(c.pending, job.pending)
	c.mu.Unlock()
}

// readLoop is the single task that owns the connection's read side. Tag
// 0x02 frames are event pushes and go to eventsCh; every other tag is a
// response matched against the oldest still-pending request.
func (c *Client) readLoop() {
	for {
		tag, err := wire.ReadU8(c.r)
		if err != nil {
			c.end(err)
			return
		}

		if tag == tagEventStream {
			ev, err := events.ReadEvent(c.r)
			if err != nil {
				c.end(err)
				return
			}
			select {
			case c.eventsCh <- ev:
			case <-c.closedCh:
				return
			}
			continue
		}

		pending, ok := c.popPending()
		if !ok {
			c.end(fmt.Errorf("sandstormclient: unexpected response tag %#x with no pending request", tag))
			return
		}
		if pending.tag != tag {
			err := fmt.Errorf("sandstormclient: expected response tag %#x, got %#x", pending.tag, tag)
			pending.reply <- clientResult{err: err}
			c.end(err)
			return
		}
		value, decodeErr := pending.decode(c.r)
		pending.reply <- clientResult{value: value, err: decodeErr}
		if decodeErr != nil {
			c.end(decodeErr)
			return
		}
	}
}

func (c *Client) popPending() (*pendingRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil, false
	}
	p := c.pending[0]
	c.pending = c.pending[1:]
	return p, true
}

// call enqueues frame for writing and, if decode is non-nil, blocks for
// the matching response and returns its decoded value.
func (c *Client) call(tag byte, frame []byte, decode func(io.Reader) (any, error)) (any, error) {
	c.mu.Lock()
	if c.ended {
		err := c.endErr
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	var pending *pendingRequest
	var reply chan clientResult
	if decode != nil {
		reply = make(chan clientResult, 1)
		pending = &pendingRequest{tag: tag, decode: decode, reply: reply}
	}

	select {
	case c.writeCh <- writeJob{frame: frame, pending: pending}:
	case <-c.closedCh:
		c.mu.Lock()
		err := c.endErr
		c.mu.Unlock()
		return nil, err
	}

	if reply == nil {
		return nil, nil
	}
	res := <-reply
	return res.value, res.err
}
