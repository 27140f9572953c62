package wire

import (
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// WriteU8 writes a single byte.
func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	if err != nil {
		return newErr(Other, "write u8", err)
	}
	return nil
}

// ReadU8 reads a single byte.
func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapRead("read u8", err)
	}
	return buf[0], nil
}

// WriteU16 writes a big-endian 16-bit unsigned integer.
func WriteU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return newErr(Other, "write u16", err)
	}
	return nil
}

// ReadU16 reads a big-endian 16-bit unsigned integer.
func ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapRead("read u16", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteU32 writes a big-endian 32-bit unsigned integer.
func WriteU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return newErr(Other, "write u32", err)
	}
	return nil
}

// ReadU32 reads a big-endian 32-bit unsigned integer.
func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapRead("read u32", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WriteU64 writes a big-endian 64-bit unsigned integer.
func WriteU64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return newErr(Other, "write u64", err)
	}
	return nil
}

// ReadU64 reads a big-endian 64-bit unsigned integer.
func ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapRead("read u64", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteI64 writes a big-endian 64-bit signed integer, used for Event
// timestamps (spec §3's "i64 unix-seconds").
func WriteI64(w io.Writer, v int64) error {
	return WriteU64(w, uint64(v))
}

// ReadI64 reads a big-endian 64-bit signed integer.
func ReadI64(r io.Reader) (int64, error) {
	v, err := ReadU64(r)
	return int64(v), err
}

// WriteBool writes a one-byte boolean (0 or 1).
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteU8(w, 1)
	}
	return WriteU8(w, 0)
}

// ReadBool reads a one-byte boolean. Any nonzero byte decodes as true.
func ReadBool(r io.Reader) (bool, error) {
	v, err := ReadU8(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

const maxShortStringLen = 255

// WriteShortString writes a u8-length-prefixed string. Per spec §4.1 the
// short form is used for usernames, passwords, domain names and the like;
// strings longer than 255 bytes are a caller error, not an encodable value.
func WriteShortString(w io.Writer, s string) error {
	if len(s) > maxShortStringLen {
		return newErr(InvalidInput, "short string exceeds 255 bytes", nil)
	}
	if err := WriteU8(w, uint8(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return newErr(Other, "write short string body", err)
	}
	return nil
}

// ReadShortString reads a u8-length-prefixed string and rejects invalid
// UTF-8 with InvalidData.
func ReadShortString(r io.Reader) (string, error) {
	n, err := ReadU8(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrapRead("read short string body", err)
	}
	if !utf8.Valid(buf) {
		return "", newErr(InvalidData, "short string is not valid UTF-8", nil)
	}
	return string(buf), nil
}

const maxLongStringLen = 65535

// WriteLongString writes a u16-length-prefixed (big-endian) string, used
// for the Sandstorm IoError message field and other long free-text values.
func WriteLongString(w io.Writer, s string) error {
	if len(s) > maxLongStringLen {
		return newErr(InvalidInput, "long string exceeds 65535 bytes", nil)
	}
	if err := WriteU16(w, uint16(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return newErr(Other, "write long string body", err)
	}
	return nil
}

// ReadLongString reads a u16-length-prefixed string and rejects invalid
// UTF-8 with InvalidData.
func ReadLongString(r io.Reader) (string, error) {
	n, err := ReadU16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", wrapRead("read long string body", err)
	}
	if !utf8.Valid(buf) {
		return "", newErr(InvalidData, "long string is not valid UTF-8", nil)
	}
	return string(buf), nil
}
