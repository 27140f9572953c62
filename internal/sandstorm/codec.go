package sandstorm

import (
	"fmt"
	"io"
	"net"

	"github.com/duststorm/duststorm/internal/events"
	"github.com/duststorm/duststorm/internal/metrics"
	"github.com/duststorm/duststorm/internal/users"
	"github.com/duststorm/duststorm/internal/wire"
)

func writeUserEntry(w io.Writer, e users.Entry) error {
	if err := wire.WriteShortString(w, e.Username); err != nil {
		return err
	}
	return wire.WriteU8(w, uint8(e.Role))
}

func writeAuthMethodEntry(w io.Writer, method events.AuthMethod, enabled bool) error {
	if err := wire.WriteU8(w, uint8(method)); err != nil {
		return err
	}
	return wire.WriteBool(w, enabled)
}

// writeMetricsSnapshot encodes the six counters in Snapshot's field order.
// Grounded on the teacher's XDR struct-field encoding convention, adapted
// to the big-endian primitives in internal/wire since there is no XDR
// dependency wired into this module.
func writeMetricsSnapshot(w io.Writer, s metrics.Snapshot) error {
	if err := wire.WriteU32(w, s.CurrentClients); err != nil {
		return err
	}
	if err := wire.WriteU64(w, s.HistoricClients); err != nil {
		return err
	}
	if err := wire.WriteU64(w, s.ClientBytesSent); err != nil {
		return err
	}
	if err := wire.WriteU64(w, s.ClientBytesReceived); err != nil {
		return err
	}
	if err := wire.WriteU32(w, s.CurrentManagers); err != nil {
		return err
	}
	return wire.WriteU64(w, s.HistoricManagers)
}

// socketAddrToString renders a wire.SocketAddr as the host:port form
// internal/netmux and internal/controlplane use to key listeners.
func socketAddrToString(a wire.SocketAddr) (string, error) {
	switch a.Kind {
	case wire.AddrIPv4, wire.AddrIPv6:
		return net.JoinHostPort(a.IP.String(), fmt.Sprintf("%d", a.Port)), nil
	default:
		return "", fmt.Errorf("sandstorm: listener address must be IPv4 or IPv6, not a domain")
	}
}

// stringToSocketAddr is the inverse of socketAddrToString, used to render
// ListSockets' bound addresses back onto the wire.
func stringToSocketAddr(addr string) (wire.SocketAddr, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return wire.SocketAddr{}, err
	}
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return wire.SocketAddr{}, err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return wire.SocketAddr{}, fmt.Errorf("sandstorm: invalid bound address %q", addr)
	}
	return wire.NewIPSocketAddr(ip, port), nil
}
