package codec

import (
	"bytes"
	"unicode/utf8"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// DecodeText parses newline-separated sentences of space-separated words.
// Sentences made only of empty words are dropped. Everything lands in the
// first pool, in line order, and the result is tagged model.WriteVersion.
func DecodeText(b []byte) (*model.History, error) {
	var pool model.Pool
	line := 1
	for off := 0; off <= len(b); line++ {
		end := bytes.IndexByte(b[off:], '\n')
		if end < 0 {
			end = len(b) - off
		}
		raw := b[off : off+end]
		if !utf8.Valid(raw) {
			return nil, &UTF8Error{Offset: off + invalidUTF8Offset(raw), Line: line}
		}
		if s := splitWords(raw); !s.IsEmpty() {
			pool = append(pool, s)
		}
		off += end + 1
	}
	return model.NewHistory([model.PoolCount]model.Pool{pool}), nil
}

func splitWords(line []byte) model.Sentence {
	fields := bytes.Split(line, []byte{' '})
	s := make(model.Sentence, len(fields))
	for i, f := range fields {
		s[i] = model.Word(f)
	}
	return s
}

// EncodeText renders the flattened history, one sentence per line.
func EncodeText(h *model.History) []byte {
	var buf bytes.Buffer
	for _, s := range h.Sentences() {
		for i, w := range s {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(string(w))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
