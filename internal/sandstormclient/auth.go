package sandstormclient

import (
	"bytes"

	"github.com/duststorm/duststorm/internal/wire"
)

// handshake implements the client half of spec §4.6 step 1: send version,
// username, password; read back a one-byte status.
func (c *Client) handshake(username, password string) error {
	buf := &bytes.Buffer{}
	if err := wire.WriteU8(buf, handshakeVersion); err != nil {
		return err
	}
	if err := wire.WriteShortString(buf, username); err != nil {
		return err
	}
	if err := wire.WriteShortString(buf, password); err != nil {
		return err
	}
	if _, err := c.w.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := c.w.Flush(); err != nil {
		return err
	}

	status, err := wire.ReadU8(c.r)
	if err != nil {
		return err
	}
	if status != handshakeOk {
		return &HandshakeError{Status: status}
	}
	return nil
}
