package wire

import "io"

const maxShortListLen = 255

// WriteShortList writes a u8-length-prefixed sequence of elements. Per
// spec §4.1 the short form rejects more than 255 elements on write.
func WriteShortList[T any](w io.Writer, items []T, encode func(io.Writer, T) error) error {
	if len(items) > maxShortListLen {
		return newErr(InvalidInput, "short list exceeds 255 elements", nil)
	}
	if err := WriteU8(w, uint8(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := encode(w, item); err != nil {
			return err
		}
	}
	return nil
}

// ReadShortList reads a u8-length-prefixed sequence of elements.
func ReadShortList[T any](r io.Reader, decode func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadU8(r)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < int(n); i++ {
		v, err := decode(r)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// WriteLongList writes a u16-length-prefixed (big-endian) sequence of
// elements, for lists that may legitimately exceed 255 entries.
func WriteLongList[T any](w io.Writer, items []T, encode func(io.Writer, T) error) error {
	if len(items) > maxLongStringLen {
		return newErr(InvalidInput, "long list exceeds 65535 elements", nil)
	}
	if err := WriteU16(w, uint16(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := encode(w, item); err != nil {
			return err
		}
	}
	return nil
}

// ReadLongList reads a u16-length-prefixed sequence of elements.
func ReadLongList[T any](r io.Reader, decode func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < int(n); i++ {
		v, err := decode(r)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
