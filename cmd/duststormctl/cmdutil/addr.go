package cmdutil

import (
	"fmt"
	"net"
	"strconv"

	"github.com/duststorm/duststorm/internal/wire"
)

// ParseListenerAddr parses "host:port" into a wire.SocketAddr suitable for
// AddSocket/RemoveSocket. Listener addresses are always IP-form (domain
// form only appears in SOCKS5 CONNECT requests), so host must parse as an
// IP literal.
func ParseListenerAddr(s string) (wire.SocketAddr, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return wire.SocketAddr{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return wire.SocketAddr{}, fmt.Errorf("invalid port in %q: %w", s, err)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return wire.SocketAddr{}, fmt.Errorf("invalid address %q: %q is not an IP literal", s, host)
	}
	return wire.NewIPSocketAddr(ip, uint16(port)), nil
}
