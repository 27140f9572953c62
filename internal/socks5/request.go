package socks5

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/duststorm/duststorm/internal/wire"
)

var errDomainCharset = errors.New("domain name contains a disallowed character")

// dnsLookupError marks a failure to resolve a domain name, as opposed to a
// malformed atyp/domain body. Spec §4.5 requires the two be reported with
// different reply codes: AddressTypeNotSupported for the latter,
// HostUnreachable for a genuine lookup failure (spec.md:201).
type dnsLookupError struct {
	domain string
	err    error
}

func (e *dnsLookupError) Error() string {
	return fmt.Sprintf("request: resolve %q: %v", e.domain, e.err)
}

func (e *dnsLookupError) Unwrap() error { return e.err }

func isDomainByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.' || b == '-':
		return true
	default:
		return false
	}
}

// handleRequest implements spec §4.5 steps 3-4. On success it returns the
// live connection to the destination; on failure it has already written
// the SOCKS5 reply and returns (nil, err).
func (s *session) handleRequest(ctx context.Context) (net.Conn, error) {
	header := make([]byte, 4)
	if _, err := readFull(s.r, header); err != nil {
		return nil, err
	}
	if header[0] != version5 {
		return nil, fmt.Errorf("request: unexpected version %d", header[0])
	}
	cmd := header[1]
	atyp := header[3]

	if cmd != cmdConnect {
		s.writeReply(replyCommandNotSupported, nil, 0)
		return nil, fmt.Errorf("request: unsupported command %d", cmd)
	}

	candidates, port, err := s.resolveTarget(ctx, atyp)
	if err != nil {
		var dnsErr *dnsLookupError
		if errors.As(err, &dnsErr) {
			s.writeReply(replyHostUnreachable, nil, 0)
		} else {
			s.writeReply(replyAddressTypeNotSupported, nil, 0)
		}
		return nil, err
	}
	if len(candidates) == 0 {
		s.writeReply(replyHostUnreachable, nil, 0)
		return nil, fmt.Errorf("request: no address resolved")
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, lastErr := dialFirst(dialCtx, candidates, port)
	if conn == nil {
		s.writeReply(mapConnectError(lastErr), nil, 0)
		return nil, lastErr
	}

	localAddr, _ := conn.LocalAddr().(*net.TCPAddr)
	var boundIP net.IP
	boundPort := 0
	if localAddr != nil {
		boundIP = localAddr.IP
		boundPort = localAddr.Port
	}
	s.writeReply(replySuccess, boundIP, uint16(boundPort))
	return conn, nil
}

// resolveTarget reads the address body for atyp and returns every
// candidate IP to try, in resolver order (spec: "family-preferring default
// order; try all resolved candidates").
func (s *session) resolveTarget(ctx context.Context, atyp byte) ([]net.IP, uint16, error) {
	switch atyp {
	case atypIPv4:
		octets := make([]byte, 4)
		if _, err := readFull(s.r, octets); err != nil {
			return nil, 0, err
		}
		port, err := wire.ReadU16(s.r)
		if err != nil {
			return nil, 0, err
		}
		return []net.IP{net.IP(octets)}, port, nil
	case atypIPv6:
		octets := make([]byte, 16)
		if _, err := readFull(s.r, octets); err != nil {
			return nil, 0, err
		}
		port, err := wire.ReadU16(s.r)
		if err != nil {
			return nil, 0, err
		}
		return []net.IP{net.IP(octets)}, port, nil
	case atypDomain:
		domain, err := wire.ReadShortString(s.r)
		if err != nil {
			return nil, 0, err
		}
		port, err := wire.ReadU16(s.r)
		if err != nil {
			return nil, 0, err
		}
		if len(domain) == 0 {
			return nil, 0, fmt.Errorf("request: empty domain")
		}
		for i := 0; i < len(domain); i++ {
			if !isDomainByte(domain[i]) {
				return nil, 0, errDomainCharset
			}
		}
		ips, err := s.server.resolve(ctx, domain)
		if err != nil {
			return nil, 0, &dnsLookupError{domain: domain, err: err}
		}
		return ips, port, nil
	default:
		return nil, 0, fmt.Errorf("request: unsupported address type %d", atyp)
	}
}

func dialFirst(ctx context.Context, candidates []net.IP, port uint16) (net.Conn, error) {
	var dialer net.Dialer
	var lastErr error
	for _, ip := range candidates {
		addr := net.JoinHostPort(ip.String(), fmt.Sprintf("%d", port))
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// mapConnectError translates a dial failure into a SOCKS5 reply status per
// spec §7's transport-error mapping.
func mapConnectError(err error) byte {
	if err == nil {
		return replyGeneralFailure
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return replyConnectionRefused
	case errors.Is(err, syscall.ENETUNREACH):
		return replyNetworkUnreachable
	case errors.Is(err, syscall.EHOSTUNREACH):
		return replyHostUnreachable
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return replyConnectionNotAllowed
	default:
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return replyHostUnreachable
		}
		return replyGeneralFailure
	}
}

// writeReply writes [5, status, 0, atyp, addr, port]. A nil/unspecified ip
// is encoded as the zero-filled IPv4 placeholder the spec requires on
// failure replies.
func (s *session) writeReply(status byte, ip net.IP, port uint16) {
	_ = writeRaw(s.w, version5, status, 0)
	if ip == nil {
		_ = writeRaw(s.w, atypIPv4, 0, 0, 0, 0)
	} else if v4 := ip.To4(); v4 != nil {
		_ = writeRaw(s.w, atypIPv4)
		_, _ = s.w.Write(v4)
	} else {
		_ = writeRaw(s.w, atypIPv6)
		_, _ = s.w.Write(ip.To16())
	}
	_ = wire.WriteU16(s.w, port)
	_ = s.w.Flush()
}

func readFull(r interface{ Read([]byte) (int, error) }, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
