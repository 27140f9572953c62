package sandstormclient

// Command tags, mirrored from the server's normative table (spec §4.6).
const (
	tagShutdown              = 0x00
	tagEventStreamConfig     = 0x01
	tagEventStream           = 0x02
	tagListSocks5Sockets     = 0x03
	tagAddSocks5Socket       = 0x04
	tagRemoveSocks5Socket    = 0x05
	tagListSandstormSockets  = 0x06
	tagAddSandstormSocket    = 0x07
	tagRemoveSandstormSocket = 0x08
	tagListUsers             = 0x09
	tagAddUser               = 0x0A
	tagUpdateUser            = 0x0B
	tagDeleteUser            = 0x0C
	tagListAuthMethods       = 0x0D
	tagToggleAuthMethod      = 0x0E
	tagRequestCurrentMetrics = 0x0F
	tagGetBufferSize         = 0x10
	tagSetBufferSize         = 0x11
	tagMeow                  = 0xFF
)

const handshakeVersion = 1

// Handshake status bytes.
const (
	handshakeOk                        = 0
	handshakeUnsupportedVersion        = 1
	handshakeInvalidUsernameOrPassword = 2
	handshakePermissionDenied          = 3
)
