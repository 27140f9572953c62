package sandstormclient

import (
	"bytes"
	"io"

	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/wire"
)

// UserEntry mirrors one row of a ListUsers response.
type UserEntry struct {
	Username string
	Role     byte
}

// AuthMethodEntry mirrors one row of a ListAuthMethods response.
type AuthMethodEntry struct {
	Method  byte
	Enabled bool
}

func frame(tag byte, body func(w io.Writer) error) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte(tag)
	if body != nil {
		if err := body(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Shutdown asks the server to shut down; it closes the connection after
// acknowledging (spec §4.6 tag 0x00).
func (c *Client) Shutdown() error {
	f, err := frame(tagShutdown, nil)
	if err != nil {
		return err
	}
	_, err = c.call(tagShutdown, f, func(io.Reader) (any, error) { return nil, nil })
	return err
}

// EventStreamConfig enables or disables event delivery on this session
// (spec §4.6 tag 0x01); the returned status distinguishes a fresh enable
// from "was already enabled".
func (c *Client) EventStreamConfig(enable bool) (byte, error) {
	f, err := frame(tagEventStreamConfig, func(w io.Writer) error { return wire.WriteBool(w, enable) })
	if err != nil {
		return 0, err
	}
	v, err := c.call(tagEventStreamConfig, f, func(r io.Reader) (any, error) { return wire.ReadU8(r) })
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

func (c *Client) listSockets(tag byte) ([]wire.SocketAddr, error) {
	f, err := frame(tag, nil)
	if err != nil {
		return nil, err
	}
	v, err := c.call(tag, f, func(r io.Reader) (any, error) {
		return wire.ReadShortList(r, wire.ReadSocketAddr)
	})
	if err != nil {
		return nil, err
	}
	return v.([]wire.SocketAddr), nil
}

// ListSocks5Sockets lists the currently bound SOCKS5 listeners (tag 0x03).
func (c *Client) ListSocks5Sockets() ([]wire.SocketAddr, error) {
	return c.listSockets(tagListSocks5Sockets)
}

// ListSandstormSockets lists the currently bound Sandstorm listeners (tag 0x06).
func (c *Client) ListSandstormSockets() ([]wire.SocketAddr, error) {
	return c.listSockets(tagListSandstormSockets)
}

func (c *Client) addSocket(tag byte, addr wire.SocketAddr) error {
	f, err := frame(tag, func(w io.Writer) error { return wire.WriteSocketAddr(w, addr) })
	if err != nil {
		return err
	}
	v, err := c.call(tag, f, func(r io.Reader) (any, error) {
		return wire.ReadResult(r, func(io.Reader) (struct{}, error) { return struct{}{}, nil })
	})
	if err != nil {
		return err
	}
	_, unwrapErr := v.(wire.Result[struct{}]).Unwrap()
	return unwrapErr
}

// AddSocks5Socket binds a new SOCKS5 listener (tag 0x04).
func (c *Client) AddSocks5Socket(addr wire.SocketAddr) error {
	return c.addSocket(tagAddSocks5Socket, addr)
}

// AddSandstormSocket binds a new Sandstorm listener (tag 0x07).
func (c *Client) AddSandstormSocket(addr wire.SocketAddr) error {
	return c.addSocket(tagAddSandstormSocket, addr)
}

func (c *Client) removeSocket(tag byte, addr wire.SocketAddr) (byte, error) {
	f, err := frame(tag, func(w io.Writer) error { return wire.WriteSocketAddr(w, addr) })
	if err != nil {
		return 0, err
	}
	v, err := c.call(tag, f, func(r io.Reader) (any, error) { return wire.ReadU8(r) })
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

// RemoveSocks5Socket unbinds a SOCKS5 listener (tag 0x05).
func (c *Client) RemoveSocks5Socket(addr wire.SocketAddr) (byte, error) {
	return c.removeSocket(tagRemoveSocks5Socket, addr)
}

// RemoveSandstormSocket unbinds a Sandstorm listener (tag 0x08).
func (c *Client) RemoveSandstormSocket(addr wire.SocketAddr) (byte, error) {
	return c.removeSocket(tagRemoveSandstormSocket, addr)
}

// ListUsers lists every registered user (tag 0x09).
func (c *Client) ListUsers() ([]UserEntry, error) {
	f, err := frame(tagListUsers, nil)
	if err != nil {
		return nil, err
	}
	v, err := c.call(tagListUsers, f, func(r io.Reader) (any, error) {
		return wire.ReadShortList(r, func(rd io.Reader) (UserEntry, error) {
			username, err := wire.ReadShortString(rd)
			if err != nil {
				return UserEntry{}, err
			}
			role, err := wire.ReadU8(rd)
			if err != nil {
				return UserEntry{}, err
			}
			return UserEntry{Username: username, Role: role}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]UserEntry), nil
}

// AddUser registers a new user (tag 0x0A).
func (c *Client) AddUser(username, password string, role byte) (byte, error) {
	f, err := frame(tagAddUser, func(w io.Writer) error {
		if err := wire.WriteShortString(w, username); err != nil {
			return err
		}
		if err := wire.WriteShortString(w, password); err != nil {
			return err
		}
		return wire.WriteU8(w, role)
	})
	if err != nil {
		return 0, err
	}
	v, err := c.call(tagAddUser, f, func(r io.Reader) (any, error) { return wire.ReadU8(r) })
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

// UpdateUser applies a partial update (tag 0x0B); nil password/role leaves
// that field unchanged.
func (c *Client) UpdateUser(username string, password *string, role *byte) (byte, error) {
	f, err := frame(tagUpdateUser, func(w io.Writer) error {
		if err := wire.WriteShortString(w, username); err != nil {
			return err
		}
		pwOpt := wire.None[string]()
		if password != nil {
			pwOpt = wire.Some(*password)
		}
		if err := wire.WriteOption(w, pwOpt, wire.WriteShortString); err != nil {
			return err
		}
		roleOpt := wire.None[uint8]()
		if role != nil {
			roleOpt = wire.Some(*role)
		}
		return wire.WriteOption(w, roleOpt, wire.WriteU8)
	})
	if err != nil {
		return 0, err
	}
	v, err := c.call(tagUpdateUser, f, func(r io.Reader) (any, error) { return wire.ReadU8(r) })
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

// DeleteUser removes a user (tag 0x0C).
func (c *Client) DeleteUser(username string) (byte, error) {
	f, err := frame(tagDeleteUser, func(w io.Writer) error { return wire.WriteShortString(w, username) })
	if err != nil {
		return 0, err
	}
	v, err := c.call(tagDeleteUser, f, func(r io.Reader) (any, error) { return wire.ReadU8(r) })
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

// ListAuthMethods reports whether each auth method is enabled (tag 0x0D).
func (c *Client) ListAuthMethods() ([]AuthMethodEntry, error) {
	f, err := frame(tagListAuthMethods, nil)
	if err != nil {
		return nil, err
	}
	v, err := c.call(tagListAuthMethods, f, func(r io.Reader) (any, error) {
		return wire.ReadShortList(r, func(rd io.Reader) (AuthMethodEntry, error) {
			method, err := wire.ReadU8(rd)
			if err != nil {
				return AuthMethodEntry{}, err
			}
			enabled, err := wire.ReadBool(rd)
			if err != nil {
				return AuthMethodEntry{}, err
			}
			return AuthMethodEntry{Method: method, Enabled: enabled}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]AuthMethodEntry), nil
}

// ToggleAuthMethod flips a method's enabled state (tag 0x0E).
func (c *Client) ToggleAuthMethod(method byte, enabled bool) (bool, error) {
	f, err := frame(tagToggleAuthMethod, func(w io.Writer) error {
		if err := wire.WriteU8(w, method); err != nil {
			return err
		}
		return wire.WriteBool(w, enabled)
	})
	if err != nil {
		return false, err
	}
	v, err := c.call(tagToggleAuthMethod, f, func(r io.Reader) (any, error) { return wire.ReadBool(r) })
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// RequestCurrentMetrics fetches a point-in-time metrics snapshot (tag
// 0x0F). A nil snapshot is a valid response (Option::None).
func (c *Client) RequestCurrentMetrics() (*metrics.Snapshot, error) {
	f, err := frame(tagRequestCurrentMetrics, nil)
	if err != nil {
		return nil, err
	}
	v, err := c.call(tagRequestCurrentMetrics, f, func(r io.Reader) (any, error) {
		return wire.ReadOption(r, readMetricsSnapshot)
	})
	if err != nil {
		return nil, err
	}
	opt := v.(wire.Option[metrics.Snapshot])
	snap, ok := opt.Get()
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func readMetricsSnapshot(r io.Reader) (metrics.Snapshot, error) {
	var s metrics.Snapshot
	var err error
	if s.CurrentClients, err = wire.ReadU32(r); err != nil {
		return s, err
	}
	if s.HistoricClients, err = wire.ReadU64(r); err != nil {
		return s, err
	}
	if s.ClientBytesSent, err = wire.ReadU64(r); err != nil {
		return s, err
	}
	if s.ClientBytesReceived, err = wire.ReadU64(r); err != nil {
		return s, err
	}
	if s.CurrentManagers, err = wire.ReadU32(r); err != nil {
		return s, err
	}
	if s.HistoricManagers, err = wire.ReadU64(r); err != nil {
		return s, err
	}
	return s, nil
}

// GetBufferSize fetches the relay buffer size applied to new sessions
// (tag 0x10).
func (c *Client) GetBufferSize() (uint32, error) {
	f, err := frame(tagGetBufferSize, nil)
	if err != nil {
		return 0, err
	}
	v, err := c.call(tagGetBufferSize, f, func(r io.Reader) (any, error) { return wire.ReadU32(r) })
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// SetBufferSize changes the relay buffer size (tag 0x11); size must be
// >= 1 or the server rejects it.
func (c *Client) SetBufferSize(size uint32) (bool, error) {
	f, err := frame(tagSetBufferSize, func(w io.Writer) error { return wire.WriteU32(w, size) })
	if err != nil {
		return false, err
	}
	v, err := c.call(tagSetBufferSize, f, func(r io.Reader) (any, error) { return wire.ReadBool(r) })
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Meow is the protocol's liveness probe (tag 0xFF): the server always
// replies with the four ASCII bytes "MEOW".
func (c *Client) Meow() (string, error) {
	f, err := frame(tagMeow, nil)
	if err != nil {
		return "", err
	}
	v, err := c.call(tagMeow, f, func(r io.Reader) (any, error) {
		body := make([]byte, 4)
		if _, err := io.ReadFull(r, body); err != nil {
			return "", err
		}
		return string(body), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
