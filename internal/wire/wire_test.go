package wire

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShortString(&buf, "admin"))
	assert.Equal(t, []byte{5, 'a', 'd', 'm', 'i', 'n'}, buf.Bytes())

	got, err := ReadShortString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}

func TestShortStringRejectsOver255Bytes(t *testing.T) {
	var buf bytes.Buffer
	err := WriteShortString(&buf, string(make([]byte, 256)))
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, InvalidInput, werr.Kind)
}

func TestShortStringRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteU8(&buf, 1))
	buf.WriteByte(0xff)

	_, err := ReadShortString(&buf)
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, InvalidData, werr.Kind)
}

func TestLongStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLongString(&buf, "connection refused"))
	got, err := ReadLongString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "connection refused", got)
}

func TestOptionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOption(&buf, Some[uint32](42), WriteU32))
	opt, err := ReadOption(&buf, ReadU32)
	require.NoError(t, err)
	val, ok := opt.Get()
	assert.True(t, ok)
	assert.Equal(t, uint32(42), val)

	buf.Reset()
	require.NoError(t, WriteOption(&buf, None[uint32](), WriteU32))
	opt, err = ReadOption(&buf, ReadU32)
	require.NoError(t, err)
	_, ok = opt.Get()
	assert.False(t, ok)
}

func TestResultRoundTripOk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, Ok[uint32](7), WriteU32))
	r, err := ReadResult(&buf, ReadU32)
	require.NoError(t, err)
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}

func TestResultRoundTripErr(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, Err[uint32](Other, "no route"), WriteU32))
	r, err := ReadResult(&buf, ReadU32)
	require.NoError(t, err)
	_, err = r.Unwrap()
	require.Error(t, err)
	var ioErr IoError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "no route", ioErr.Message)
}

func TestResultErrKindRoundTripsThroughPublishedSet(t *testing.T) {
	for _, k := range []Kind{Eof, InvalidData, InvalidInput, Other} {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, Err[uint32](k, "x"), WriteU32))
		r, err := ReadResult(&buf, ReadU32)
		require.NoError(t, err)
		_, err = r.Unwrap()
		var ioErr IoError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, k, ioErr.Kind)
	}
}

func TestSocketAddrIPv4RoundTrip(t *testing.T) {
	addr := NewIPSocketAddr(net.ParseIP("127.0.0.1"), 80)
	var buf bytes.Buffer
	require.NoError(t, WriteSocketAddr(&buf, addr))
	assert.Equal(t, []byte{4, 127, 0, 0, 1, 0, 80}, buf.Bytes())

	got, err := ReadSocketAddr(&buf)
	require.NoError(t, err)
	assert.Equal(t, AddrIPv4, got.Kind)
	assert.True(t, got.IP.Equal(net.ParseIP("127.0.0.1")))
	assert.Equal(t, uint16(80), got.Port)
}

func TestSocketAddrIPv6RoundTrip(t *testing.T) {
	addr := NewIPSocketAddr(net.ParseIP("::1"), 443)
	var buf bytes.Buffer
	require.NoError(t, WriteSocketAddr(&buf, addr))
	got, err := ReadSocketAddr(&buf)
	require.NoError(t, err)
	assert.Equal(t, AddrIPv6, got.Kind)
	assert.True(t, got.IP.Equal(net.ParseIP("::1")))
	assert.Equal(t, uint16(443), got.Port)
}

func TestSocketAddrDomainRoundTrip(t *testing.T) {
	addr := NewDomainSocketAddr("example.com", 443)
	var buf bytes.Buffer
	require.NoError(t, WriteSocketAddr(&buf, addr))
	got, err := ReadSocketAddr(&buf)
	require.NoError(t, err)
	assert.Equal(t, AddrDomain, got.Kind)
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, uint16(443), got.Port)
}

func TestSocketAddrInvalidTag(t *testing.T) {
	buf := bytes.NewBuffer([]byte{9, 0, 0})
	_, err := ReadSocketAddr(buf)
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, InvalidData, werr.Kind)
}

func TestShortListRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	items := []uint32{1, 2, 3}
	require.NoError(t, WriteShortList(&buf, items, WriteU32))
	got, err := ReadShortList(&buf, ReadU32)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestShortListRejectsOver255Elements(t *testing.T) {
	items := make([]uint8, 256)
	var buf bytes.Buffer
	err := WriteShortList(&buf, items, WriteU8)
	require.Error(t, err)
}

func TestEofOnShortRead(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x05})
	_, err := ReadU32(buf)
	require.Error(t, err)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, Eof, werr.Kind)
}
