// Package sandstorm implements the administrative/monitoring session
// described in spec §4.6: a plaintext handshake against the user store,
// followed by a tag-dispatched command loop that can also carry
// server-pushed event frames. Grounded on the teacher's
// pkg/adapter/nfs/nfs_connection_dispatch.go tag/program-number dispatch
// loop, reusing internal/wire for framing instead of XDR.
package sandstorm

// Command tags (spec §4.6's table; normative).
const (
	tagShutdown               = 0x00
	tagEventStreamConfig      = 0x01
	tagEventStream            = 0x02
	tagListSocks5Sockets      = 0x03
	tagAddSocks5Socket        = 0x04
	tagRemoveSocks5Socket     = 0x05
	tagListSandstormSockets   = 0x06
	tagAddSandstormSocket     = 0x07
	tagRemoveSandstormSocket  = 0x08
	tagListUsers              = 0x09
	tagAddUser                = 0x0A
	tagUpdateUser             = 0x0B
	tagDeleteUser             = 0x0C
	tagListAuthMethods        = 0x0D
	tagToggleAuthMethod       = 0x0E
	tagRequestCurrentMetrics  = 0x0F
	tagGetBufferSize          = 0x10
	tagSetBufferSize          = 0x11
	tagMeow                   = 0xFF
)

// Handshake status bytes (spec §4.6 step 1).
const (
	handshakeOk                       = 0
	handshakeUnsupportedVersion       = 1
	handshakeInvalidUsernameOrPassword = 2
	handshakePermissionDenied         = 3
)

const handshakeVersion = 1

// EventStreamConfig response statuses.
const (
	eventStreamDisabledNow        = 0
	eventStreamEnabled            = 1
	eventStreamWasAlreadyEnabled  = 2
)

// RemoveSocket response codes.
const (
	removeSocketOk       = 0
	removeSocketNotFound = 1
)
