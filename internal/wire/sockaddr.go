package wire

import (
	"fmt"
	"io"
	"net"
)

// AddrKind is the wire tag identifying a SocketAddr's shape.
type AddrKind uint8

const (
	AddrIPv4   AddrKind = 4
	AddrIPv6   AddrKind = 6
	AddrDomain AddrKind = 200
)

// SocketAddr mirrors spec §4.1's SocketAddr: tag 4 is four IPv4 octets plus
// port, tag 6 is sixteen IPv6 octets plus port, tag 200 is a short-string
// domain plus port. The domain form appears only inside SOCKS5 request
// bodies (never as a listener bind address) per spec §4.1's note.
type SocketAddr struct {
	Kind   AddrKind
	IP     net.IP // valid for AddrIPv4 / AddrIPv6
	Domain string // valid for AddrDomain
	Port   uint16
}

// NewIPSocketAddr builds a SocketAddr from a net.IP, choosing the IPv4 or
// IPv6 tag based on the address's form.
func NewIPSocketAddr(ip net.IP, port uint16) SocketAddr {
	if v4 := ip.To4(); v4 != nil {
		return SocketAddr{Kind: AddrIPv4, IP: v4, Port: port}
	}
	return SocketAddr{Kind: AddrIPv6, IP: ip.To16(), Port: port}
}

// NewDomainSocketAddr builds a domain-form SocketAddr.
func NewDomainSocketAddr(domain string, port uint16) SocketAddr {
	return SocketAddr{Kind: AddrDomain, Domain: domain, Port: port}
}

// String renders the address the way net.JoinHostPort would.
func (a SocketAddr) String() string {
	switch a.Kind {
	case AddrIPv4, AddrIPv6:
		return net.JoinHostPort(a.IP.String(), fmt.Sprintf("%d", a.Port))
	case AddrDomain:
		return net.JoinHostPort(a.Domain, fmt.Sprintf("%d", a.Port))
	default:
		return "<invalid-addr>"
	}
}

// WriteSocketAddr writes the tag, address body, and port.
func WriteSocketAddr(w io.Writer, a SocketAddr) error {
	switch a.Kind {
	case AddrIPv4:
		if err := WriteU8(w, uint8(AddrIPv4)); err != nil {
			return err
		}
		v4 := a.IP.To4()
		if v4 == nil {
			return newErr(InvalidInput, "SocketAddr tagged IPv4 has no 4-byte form", nil)
		}
		if _, err := w.Write(v4); err != nil {
			return newErr(Other, "write ipv4 octets", err)
		}
	case AddrIPv6:
		if err := WriteU8(w, uint8(AddrIPv6)); err != nil {
			return err
		}
		v6 := a.IP.To16()
		if v6 == nil {
			return newErr(InvalidInput, "SocketAddr tagged IPv6 has no 16-byte form", nil)
		}
		if _, err := w.Write(v6); err != nil {
			return newErr(Other, "write ipv6 octets", err)
		}
	case AddrDomain:
		if err := WriteU8(w, uint8(AddrDomain)); err != nil {
			return err
		}
		if err := WriteShortString(w, a.Domain); err != nil {
			return err
		}
	default:
		return newErr(InvalidInput, "unknown SocketAddr kind", nil)
	}
	return WriteU16(w, a.Port)
}

// ReadSocketAddr reads a tagged SocketAddr.
func ReadSocketAddr(r io.Reader) (SocketAddr, error) {
	tag, err := ReadU8(r)
	if err != nil {
		return SocketAddr{}, err
	}
	switch AddrKind(tag) {
	case AddrIPv4:
		var octets [4]byte
		if _, err := io.ReadFull(r, octets[:]); err != nil {
			return SocketAddr{}, wrapRead("read ipv4 octets", err)
		}
		port, err := ReadU16(r)
		if err != nil {
			return SocketAddr{}, err
		}
		return SocketAddr{Kind: AddrIPv4, IP: net.IP(octets[:]), Port: port}, nil
	case AddrIPv6:
		var octets [16]byte
		if _, err := io.ReadFull(r, octets[:]); err != nil {
			return SocketAddr{}, wrapRead("read ipv6 octets", err)
		}
		port, err := ReadU16(r)
		if err != nil {
			return SocketAddr{}, err
		}
		return SocketAddr{Kind: AddrIPv6, IP: net.IP(octets[:]), Port: port}, nil
	case AddrDomain:
		domain, err := ReadShortString(r)
		if err != nil {
			return SocketAddr{}, err
		}
		port, err := ReadU16(r)
		if err != nil {
			return SocketAddr{}, err
		}
		return SocketAddr{Kind: AddrDomain, Domain: domain, Port: port}, nil
	default:
		return SocketAddr{}, newErr(InvalidData, "invalid SocketAddr tag", nil)
	}
}
