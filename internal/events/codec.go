package events

import (
	"io"

	"github.com/duststorm/duststorm/internal/wire"
)

// WriteEvent encodes ev as i64 timestamp, tag byte, variant body — the
// payload carried by a Sandstorm tag-0x02 frame (spec §4.6/§6).
func WriteEvent(w io.Writer, ev Event) error {
	if err := wire.WriteI64(w, ev.Timestamp); err != nil {
		return err
	}
	if err := wire.WriteU8(w, ev.Data.eventTag()); err != nil {
		return err
	}
	switch d := ev.Data.(type) {
	case NewClientConnectionAccepted:
		if err := wire.WriteU64(w, d.ClientID); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Peer)
	case ClientAuthenticated:
		if err := wire.WriteU64(w, d.ClientID); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Username)
	case ClientSourceShutdown:
		return wire.WriteU64(w, d.ClientID)
	case ClientDestinationShutdown:
		return wire.WriteU64(w, d.ClientID)
	case ClientConnectionFinished:
		if err := wire.WriteU64(w, d.ClientID); err != nil {
			return err
		}
		if err := wire.WriteU64(w, d.Sent); err != nil {
			return err
		}
		if err := wire.WriteU64(w, d.Received); err != nil {
			return err
		}
		return wire.WriteOption(w, optionalString(d.Err), wire.WriteLongString)
	case ClientBytesSent:
		if err := wire.WriteU64(w, d.ClientID); err != nil {
			return err
		}
		return wire.WriteU64(w, d.Count)
	case ClientBytesReceived:
		if err := wire.WriteU64(w, d.ClientID); err != nil {
			return err
		}
		return wire.WriteU64(w, d.Count)
	case NewSandstormConnectionAccepted:
		if err := wire.WriteU64(w, d.ManagerID); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Peer)
	case SandstormConnectionFinished:
		return wire.WriteU64(w, d.ManagerID)
	case NewSocket:
		if err := wire.WriteU8(w, uint8(d.Kind)); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Addr)
	case RemovedSocket:
		if err := wire.WriteU8(w, uint8(d.Kind)); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Addr)
	case BufferSizeChangedByManager:
		if err := wire.WriteShortString(w, d.Manager); err != nil {
			return err
		}
		return wire.WriteU32(w, d.NewSize)
	case AuthMethodToggledByManager:
		if err := wire.WriteShortString(w, d.Manager); err != nil {
			return err
		}
		if err := wire.WriteU8(w, uint8(d.Method)); err != nil {
			return err
		}
		return wire.WriteBool(w, d.Enabled)
	case UserRegisteredByManager:
		if err := wire.WriteShortString(w, d.Manager); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Username)
	case UserUpdatedByManager:
		if err := wire.WriteShortString(w, d.Manager); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Username)
	case UserDeletedByManager:
		if err := wire.WriteShortString(w, d.Manager); err != nil {
			return err
		}
		return wire.WriteShortString(w, d.Username)
	default:
		return &wire.Error{Kind: wire.InvalidInput, Msg: "unknown EventData variant"}
	}
}

func optionalString(s string) wire.Option[string] {
	if s == "" {
		return wire.None[string]()
	}
	return wire.Some(s)
}

// ReadEvent decodes an Event previously written by WriteEvent.
func ReadEvent(r io.Reader) (Event, error) {
	ts, err := wire.ReadI64(r)
	if err != nil {
		return Event{}, err
	}
	tag, err := wire.ReadU8(r)
	if err != nil {
		return Event{}, err
	}
	data, err := readEventData(r, tag)
	if err != nil {
		return Event{}, err
	}
	return Event{Timestamp: ts, Data: data}, nil
}

func readEventData(r io.Reader, tag byte) (EventData, error) {
	switch tag {
	case tagNewClientConnectionAccepted:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		peer, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return NewClientConnectionAccepted{ClientID: id, Peer: peer}, nil
	case tagClientAuthenticated:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		user, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return ClientAuthenticated{ClientID: id, Username: user}, nil
	case tagClientSourceShutdown:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		return ClientSourceShutdown{ClientID: id}, nil
	case tagClientDestinationShutdown:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		return ClientDestinationShutdown{ClientID: id}, nil
	case tagClientConnectionFinished:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		sent, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		received, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		opt, err := wire.ReadOption(r, wire.ReadLongString)
		if err != nil {
			return nil, err
		}
		errStr, _ := opt.Get()
		return ClientConnectionFinished{ClientID: id, Sent: sent, Received: received, Err: errStr}, nil
	case tagClientBytesSent:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		n, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		return ClientBytesSent{ClientID: id, Count: n}, nil
	case tagClientBytesReceived:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		n, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		return ClientBytesReceived{ClientID: id, Count: n}, nil
	case tagNewSandstormConnectionAccepted:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		peer, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return NewSandstormConnectionAccepted{ManagerID: id, Peer: peer}, nil
	case tagSandstormConnectionFinished:
		id, err := wire.ReadU64(r)
		if err != nil {
			return nil, err
		}
		return SandstormConnectionFinished{ManagerID: id}, nil
	case tagNewSocket:
		kind, err := wire.ReadU8(r)
		if err != nil {
			return nil, err
		}
		addr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return NewSocket{Kind: SocketKind(kind), Addr: addr}, nil
	case tagRemovedSocket:
		kind, err := wire.ReadU8(r)
		if err != nil {
			return nil, err
		}
		addr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return RemovedSocket{Kind: SocketKind(kind), Addr: addr}, nil
	case tagBufferSizeChangedByManager:
		mgr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		size, err := wire.ReadU32(r)
		if err != nil {
			return nil, err
		}
		return BufferSizeChangedByManager{Manager: mgr, NewSize: size}, nil
	case tagAuthMethodToggledByManager:
		mgr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		method, err := wire.ReadU8(r)
		if err != nil {
			return nil, err
		}
		enabled, err := wire.ReadBool(r)
		if err != nil {
			return nil, err
		}
		return AuthMethodToggledByManager{Manager: mgr, Method: AuthMethod(method), Enabled: enabled}, nil
	case tagUserRegisteredByManager:
		mgr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		user, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return UserRegisteredByManager{Manager: mgr, Username: user}, nil
	case tagUserUpdatedByManager:
		mgr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		user, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return UserUpdatedByManager{Manager: mgr, Username: user}, nil
	case tagUserDeletedByManager:
		mgr, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		user, err := wire.ReadShortString(r)
		if err != nil {
			return nil, err
		}
		return UserDeletedByManager{Manager: mgr, Username: user}, nil
	default:
		return nil, &wire.Error{Kind: wire.InvalidData, Msg: "unknown event tag"}
	}
}
