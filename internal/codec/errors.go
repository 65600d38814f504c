package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package matches one of these
// with errors.Is.
var (
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
	ErrInvalidUTF8        = errors.New("invalid UTF-8")
	ErrMagicMismatch      = errors.New("history magic mismatch")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrDecompress         = errors.New("decompression failed")
	ErrDeserialize        = errors.New("deserialize error")
	ErrSerialize          = errors.New("serialize error")
)

// EOFError is returned when the input ends in the middle of a read.
type EOFError struct {
	Offset int
	Need   int
	Have   int
}

func (e *EOFError) Error() string {
	return fmt.Sprintf("codec: unexpected end of input at offset %d: expected %d more bytes, %d left",
		e.Offset, e.Need, e.Have)
}

func (e *EOFError) Is(target error) bool { return target == ErrUnexpectedEOF }

// UTF8Error is returned when a string is not valid UTF-8. Offset is the
// position of the first bad byte. Line is set by the text decoder only.
type UTF8Error struct {
	Offset int
	Line   int
}

func (e *UTF8Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("codec: invalid UTF-8 on line %d (byte offset %d)", e.Line, e.Offset)
	}
	return fmt.Sprintf("codec: invalid UTF-8 in string at offset %d", e.Offset)
}

func (e *UTF8Error) Is(target error) bool { return target == ErrInvalidUTF8 }

// MagicError reports a header whose magic is not the libime constant.
type MagicError struct {
	Expected uint32
	Found    uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("codec: invalid history magic (expected 0x%08x, found 0x%08x)", e.Expected, e.Found)
}

func (e *MagicError) Is(target error) bool { return target == ErrMagicMismatch }

// VersionError reports a format version outside the accepted set.
type VersionError struct {
	Accepted []uint32
	Found    uint32
}

func (e *VersionError) Error() string {
	accepted := make([]string, len(e.Accepted))
	for i, v := range e.Accepted {
		accepted[i] = fmt.Sprintf("0x%08x", v)
	}
	return fmt.Sprintf("codec: unsupported format version (expected one of %s, found 0x%08x)",
		strings.Join(accepted, ", "), e.Found)
}

func (e *VersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// DecompressError wraps a failure of the compressed body.
type DecompressError struct {
	Err error
}

func (e *DecompressError) Error() string {
	return fmt.Sprintf("codec: decompress history body: %v", e.Err)
}

func (e *DecompressError) Unwrap() error { return e.Err }

func (e *DecompressError) Is(target error) bool { return target == ErrDecompress }

// DecodeError is the catch-all for structurally malformed input.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: %s at offset %d", e.Reason, e.Offset)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDeserialize }

// EncodeError is returned when a value cannot be represented on the wire.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string {
	return "codec: " + e.Reason
}

func (e *EncodeError) Is(target error) bool { return target == ErrSerialize }
