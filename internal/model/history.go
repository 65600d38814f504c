// Package model defines the typing history data types.
package model

import "strings"

const (
	// Magic identifies a libime user history blob.
	Magic uint32 = 0x000FC315

	// VersionLegacy stores the pools directly after the header.
	VersionLegacy uint32 = 0x02
	// VersionCompressed stores the pools in a zstd-compressed block.
	VersionCompressed uint32 = 0x03

	// WriteVersion is the format version given to newly built histories.
	WriteVersion = VersionLegacy

	// PoolCount is the number of retention tiers in a history.
	PoolCount = 3
)

// PoolCapacities are the tier sizes kept by libime, newest tier first.
var PoolCapacities = [PoolCount]int{128, 8192, 65536}

// TotalCapacity returns the number of sentences a full history holds.
func TotalCapacity() int {
	total := 0
	for _, c := range PoolCapacities {
		total += c
	}
	return total
}

// Word is a single UTF-8 token.
type Word string

// Sentence is an ordered list of words, in typing order.
type Sentence []Word

// IsEmpty reports whether every word of s is the empty string.
func (s Sentence) IsEmpty() bool {
	for _, w := range s {
		if w != "" {
			return false
		}
	}
	return true
}

// Equal reports whether s and o hold the same words in the same order.
func (s Sentence) Equal(o Sentence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Sentence) String() string {
	words := make([]string, len(s))
	for i, w := range s {
		words[i] = string(w)
	}
	return strings.Join(words, " ")
}

// Pool is one retention tier. In memory the most recently used sentence
// comes first.
type Pool []Sentence

// Equal reports whether p and o hold equal sentences in the same order.
func (p Pool) Equal(o Pool) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (p Pool) String() string {
	lines := make([]string, len(p))
	for i, s := range p {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// History is a full user history: header plus three pools.
type History struct {
	Magic   uint32
	Version uint32
	Pools   [PoolCount]Pool
}

// NewHistory returns a history tagged with WriteVersion.
func NewHistory(pools [PoolCount]Pool) *History {
	return &History{
		Magic:   Magic,
		Version: WriteVersion,
		Pools:   pools,
	}
}

// WithVersion returns a copy of h tagged with version. Pools are shared.
func (h *History) WithVersion(version uint32) *History {
	out := *h
	out.Version = version
	return &out
}

// Sentences flattens the pools in tier order, keeping each pool's order.
func (h *History) Sentences() []Sentence {
	out := make([]Sentence, 0, h.Len())
	for _, p := range h.Pools {
		out = append(out, p...)
	}
	return out
}

// Len returns the number of sentences across all pools.
func (h *History) Len() int {
	n := 0
	for _, p := range h.Pools {
		n += len(p)
	}
	return n
}

// Equal compares header and pools.
func (h *History) Equal(o *History) bool {
	if h.Magic != o.Magic || h.Version != o.Version {
		return false
	}
	for i := range h.Pools {
		if !h.Pools[i].Equal(o.Pools[i]) {
			return false
		}
	}
	return true
}

// String renders the flattened history, one sentence per line.
func (h *History) String() string {
	var sb strings.Builder
	for i, s := range h.Sentences() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}
