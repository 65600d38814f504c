package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rcliao/libime-history-merge/internal/model"
)

func sentence(words ...string) model.Sentence {
	s := make(model.Sentence, len(words))
	for i, w := range words {
		s[i] = model.Word(w)
	}
	return s
}

func TestWordRoundTrip(t *testing.T) {
	for _, w := range []model.Word{"", "a", "音乐", "🎵", "with space"} {
		e := NewEncoder()
		if err := e.EncodeWord(w); err != nil {
			t.Fatalf("encode %q: %v", w, err)
		}
		d := NewDecoder(e.Bytes())
		got, err := d.DecodeWord()
		if err != nil {
			t.Fatalf("decode %q: %v", w, err)
		}
		if got != w {
			t.Errorf("got %q, want %q", got, w)
		}
		if d.Remaining() != 0 {
			t.Errorf("%d bytes left after %q", d.Remaining(), w)
		}
	}
}

func TestWordWireLayout(t *testing.T) {
	e := NewEncoder()
	if err := e.EncodeWord("音"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 3, 0xe9, 0x9f, 0xb3}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("got % x, want % x", e.Bytes(), want)
	}
}

func TestSentenceRoundTrip(t *testing.T) {
	s := sentence("音乐", "好听", "🎵")
	e := NewEncoder()
	if err := e.EncodeSentence(s); err != nil {
		t.Fatal(err)
	}
	got, err := NewDecoder(e.Bytes()).DecodeSentence()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(s) {
		t.Errorf("got %v, want %v", got, s)
	}
}

func TestPoolRoundTrip(t *testing.T) {
	p := model.Pool{sentence("音乐", "🎵"), sentence("好听"), sentence()}
	e := NewEncoder()
	if err := e.EncodePool(p); err != nil {
		t.Fatal(err)
	}
	got, err := NewDecoder(e.Bytes()).DecodePool()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(p) {
		t.Errorf("got %v, want %v", got, p)
	}
}

func TestPoolIsStoredOldestFirst(t *testing.T) {
	s1, s2, s3 := sentence("one"), sentence("two"), sentence("three")

	pool := NewEncoder()
	if err := pool.EncodePool(model.Pool{s1, s2, s3}); err != nil {
		t.Fatal(err)
	}

	// The same bytes through the plain sequence rule, reversed by hand.
	manual := NewEncoder()
	manual.PutU32(3)
	for _, s := range []model.Sentence{s3, s2, s1} {
		if err := manual.EncodeSentence(s); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(pool.Bytes(), manual.Bytes()) {
		t.Fatalf("pool bytes\n% x\nwant\n% x", pool.Bytes(), manual.Bytes())
	}

	got, err := NewDecoder(manual.Bytes()).DecodePool()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(model.Pool{s1, s2, s3}) {
		t.Errorf("decoded order %v, want [one two three]", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	e := NewEncoder()
	if err := e.EncodeSentence(sentence("hello", "world")); err != nil {
		t.Fatal(err)
	}
	full := e.Bytes()

	for cut := 0; cut < len(full); cut++ {
		_, err := NewDecoder(full[:cut]).DecodeSentence()
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("cut at %d: got %v, want unexpected end of input", cut, err)
		}
	}
}

func TestDecodeEOFReportsBytes(t *testing.T) {
	_, err := NewDecoder([]byte{0, 0, 0, 9, 'a', 'b'}).ReadString()
	var eof *EOFError
	if !errors.As(err, &eof) {
		t.Fatalf("got %v, want *EOFError", err)
	}
	if eof.Offset != 4 || eof.Need != 9 || eof.Have != 2 {
		t.Errorf("got %+v, want offset 4 need 9 have 2", *eof)
	}
}

func TestDecodeHugeCountFailsFast(t *testing.T) {
	_, err := NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0}).DecodePool()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("got %v, want unexpected end of input", err)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := NewDecoder([]byte{0, 0, 0, 3, 'a', 0xc3, 0x28}).DecodeWord()
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("got %v, want invalid UTF-8", err)
	}
	var u *UTF8Error
	if errors.As(err, &u) && u.Offset != 5 {
		t.Errorf("offset = %d, want 5", u.Offset)
	}
}

func TestEncodeInvalidUTF8(t *testing.T) {
	err := NewEncoder().EncodeWord(model.Word([]byte{0xff}))
	if !errors.Is(err, ErrSerialize) {
		t.Fatalf("got %v, want serialize error", err)
	}
}
