package logger

import (
	"encoding/hex"
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently across
// log statements so aggregation/querying stays predictable.
const (
	KeyTraceID = "trace_id" // correlation ID for a single request/command round trip
	KeySpanID  = "span_id"

	KeyProcedure = "procedure" // LogContext.Procedure
	KeyShare     = "share"     // LogContext.Share
	KeyUID       = "uid"       // LogContext.UID
	KeyGID       = "gid"       // LogContext.GID
	KeyHandle    = "handle"    // opaque byte handle, hex-encoded

	KeyOperation = "operation"  // SOCKS5/Sandstorm operation name (CONNECT, AddUser, ...)
	KeyTag       = "tag"        // Sandstorm command tag byte
	KeyStatus    = "status"     // numeric status/reply code
	KeyStatusMsg = "status_msg" // human-readable status message

	KeyClientIP   = "client_ip"
	KeyClientPort = "client_port"
	KeyUsername   = "username"
	KeyRole       = "role"
	KeyAuth       = "auth" // auth method: none, user_pass

	KeySessionID    = "session_id"
	KeyConnectionID = "connection_id"
	KeyRequestID    = "request_id"

	KeyTargetAddr = "target_addr" // CONNECT destination, host:port
	KeyListenAddr = "listen_addr"
	KeySocketKind = "socket_kind" // socks5, sandstorm

	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"
	KeyBufferSize   = "buffer_size"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeySource     = "source"
)

// TraceID returns a slog.Attr for a request-correlation trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for a sub-operation span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Handle returns a slog.Attr for an opaque byte handle, rendered as hex.
func Handle(h []byte) slog.Attr {
	return slog.String(KeyHandle, hex.EncodeToString(h))
}

// Operation returns a slog.Attr naming the SOCKS5/Sandstorm operation in progress.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tag returns a slog.Attr for a Sandstorm command tag byte.
func Tag(tag byte) slog.Attr {
	return slog.Int(KeyTag, int(tag))
}

// Status returns a slog.Attr for a numeric status/reply code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// ClientIP returns a slog.Attr for a client IP address.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ClientPort returns a slog.Attr for a client source port.
func ClientPort(port int) slog.Attr {
	return slog.Int(KeyClientPort, port)
}

// Username returns a slog.Attr for a username.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Role returns a slog.Attr for a user's role (admin, regular).
func Role(role string) slog.Attr {
	return slog.String(KeyRole, role)
}

// AuthMethod returns a slog.Attr for the auth method negotiated on a connection.
func AuthMethod(method string) slog.Attr {
	return slog.String(KeyAuth, method)
}

// SessionID returns a slog.Attr for a session identifier.
func SessionID(id uint64) slog.Attr {
	return slog.Uint64(KeySessionID, id)
}

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id uint64) slog.Attr {
	return slog.Uint64(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for a Sandstorm request correlation ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// TargetAddr returns a slog.Attr for a CONNECT destination address.
func TargetAddr(addr string) slog.Attr {
	return slog.String(KeyTargetAddr, addr)
}

// ListenAddr returns a slog.Attr for a listener bind address.
func ListenAddr(addr string) slog.Attr {
	return slog.String(KeyListenAddr, addr)
}

// SocketKind returns a slog.Attr distinguishing socks5 from sandstorm sockets.
func SocketKind(kind string) slog.Attr {
	return slog.String(KeySocketKind, kind)
}

// BytesRead returns a slog.Attr for bytes read off a relayed connection.
func BytesRead(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for bytes written to a relayed connection.
func BytesWritten(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesWritten, n)
}

// BufferSize returns a slog.Attr for the configured relay buffer size.
func BufferSize(n uint32) slog.Attr {
	return slog.Uint64(KeyBufferSize, uint64(n))
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or a no-op attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Source returns a slog.Attr naming the component that produced a log entry.
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}
