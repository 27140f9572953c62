package wire

import "io"

// IoError is the Err payload of a wire Result: a kind that MUST round-trip
// through the published Kind set (spec §4.1), plus a free-text message.
type IoError struct {
	Kind    Kind
	Message string
}

func (e IoError) Error() string { return e.Kind.String() + ": " + e.Message }

// Result mirrors spec §4.1's Result<T, IoError>: tag 0 = Ok followed by T,
// tag 1 = Err followed by a short-string kind and a long-string message.
type Result[T any] struct {
	ok  bool
	val T
	err IoError
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{ok: true, val: v} }

// Err wraps a failure.
func Err[T any](kind Kind, message string) Result[T] {
	return Result[T]{err: IoError{Kind: kind, Message: message}}
}

// Unwrap returns the success value, the error (nil on success), matching
// the standard (value, error) calling convention once decoded off the wire.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.val, nil
	}
	return r.val, r.err
}

// WriteResult writes the Result's tag and body.
func WriteResult[T any](w io.Writer, r Result[T], encode func(io.Writer, T) error) error {
	if r.ok {
		if err := WriteU8(w, 0); err != nil {
			return err
		}
		return encode(w, r.val)
	}
	if err := WriteU8(w, 1); err != nil {
		return err
	}
	if err := WriteShortString(w, r.err.Kind.String()); err != nil {
		return err
	}
	return WriteLongString(w, r.err.Message)
}

// ReadResult reads the Result's tag and body.
func ReadResult[T any](r io.Reader, decode func(io.Reader) (T, error)) (Result[T], error) {
	tag, err := ReadU8(r)
	if err != nil {
		return Result[T]{}, err
	}
	switch tag {
	case 0:
		v, err := decode(r)
		if err != nil {
			return Result[T]{}, err
		}
		return Ok(v), nil
	case 1:
		kindStr, err := ReadShortString(r)
		if err != nil {
			return Result[T]{}, err
		}
		msg, err := ReadLongString(r)
		if err != nil {
			return Result[T]{}, err
		}
		return Err[T](ParseKind(kindStr), msg), nil
	default:
		return Result[T]{}, newErr(InvalidData, "invalid Result tag", nil)
	}
}
