// Package codec reads and writes libime user history blobs and their
// plain-text rendering.
//
// The binary grammar is small and fixed. All integers are unsigned 32-bit
// big-endian:
//
//	string    = u32 byte length, then that many UTF-8 bytes
//	sequence  = u32 element count, then the elements back to back
//	Word      = string
//	Sentence  = sequence of Word
//	Pool      = sequence of Sentence, oldest sentence first
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// Decoder is a single-pass cursor over an encoded buffer.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder positioned at the start of b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) rest() []byte { return d.buf[d.off:] }

func (d *Decoder) next(n int) ([]byte, error) {
	if n > d.Remaining() {
		return nil, &EOFError{Offset: d.off, Need: n, Have: d.Remaining()}
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// ReadU32 consumes 4 bytes as a big-endian integer.
func (d *Decoder) ReadU32() (uint32, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadString consumes a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadU32()
	if err != nil {
		return "", err
	}
	start := d.off
	b, err := d.next(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &UTF8Error{Offset: start + invalidUTF8Offset(b)}
	}
	return string(b), nil
}

// readCount consumes a sequence count. Every element takes at least four
// bytes, so a count the remaining input cannot hold fails here instead of
// driving a huge allocation.
func (d *Decoder) readCount() (int, error) {
	n, err := d.ReadU32()
	if err != nil {
		return 0, err
	}
	if need := uint64(n) * 4; need > uint64(d.Remaining()) {
		return 0, &EOFError{Offset: d.off, Need: int(need), Have: d.Remaining()}
	}
	return int(n), nil
}

// DecodeWord reads one word.
func (d *Decoder) DecodeWord() (model.Word, error) {
	s, err := d.ReadString()
	if err != nil {
		return "", err
	}
	return model.Word(s), nil
}

// DecodeSentence reads one sentence.
func (d *Decoder) DecodeSentence() (model.Sentence, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	s := make(model.Sentence, n)
	for i := range s {
		if s[i], err = d.DecodeWord(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DecodePool reads one pool and flips it to newest-first order.
func (d *Decoder) DecodePool() (model.Pool, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	p := make(model.Pool, n)
	for i := n - 1; i >= 0; i-- {
		if p[i], err = d.DecodeSentence(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Encoder appends encoded values to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded output.
func (e *Encoder) Bytes() []byte { return e.buf }

// PutU32 appends v big-endian.
func (e *Encoder) PutU32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

// PutString appends a length-prefixed string.
func (e *Encoder) PutString(s string) error {
	if !utf8.ValidString(s) {
		return &EncodeError{Reason: fmt.Sprintf("word %q is not valid UTF-8", s)}
	}
	if err := e.putCount(len(s)); err != nil {
		return err
	}
	e.buf = append(e.buf, s...)
	return nil
}

func (e *Encoder) putCount(n int) error {
	if uint64(n) > math.MaxUint32 {
		return &EncodeError{Reason: fmt.Sprintf("length %d does not fit in u32", n)}
	}
	e.PutU32(uint32(n))
	return nil
}

// EncodeWord appends w.
func (e *Encoder) EncodeWord(w model.Word) error {
	return e.PutString(string(w))
}

// EncodeSentence appends s.
func (e *Encoder) EncodeSentence(s model.Sentence) error {
	if err := e.putCount(len(s)); err != nil {
		return err
	}
	for _, w := range s {
		if err := e.EncodeWord(w); err != nil {
			return err
		}
	}
	return nil
}

// EncodePool appends p oldest sentence first.
func (e *Encoder) EncodePool(p model.Pool) error {
	if err := e.putCount(len(p)); err != nil {
		return err
	}
	for i := len(p) - 1; i >= 0; i-- {
		if err := e.EncodeSentence(p[i]); err != nil {
			return err
		}
	}
	return nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
