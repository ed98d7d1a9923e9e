// Package corpus loads the reference material the planner grounds its
// answers in: the prose facts document (split into overlapping chunks for
// embedding) and the structured facts JSON (flattened into prompt lines).
package corpus

import (
	"strings"
	"unicode/utf8"
)

// Default splitting parameters, in characters.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// defaultSeparators in priority order: paragraph break, line break,
// sentence end. The trailing empty string means "cut anywhere".
var defaultSeparators = []string{"\n\n", "\n", ". ", ""}

// Splitter cuts a document into overlapping chunks. It prefers to break
// at the highest-priority separator that keeps pieces under the target
// size, falling back to the next separator and finally to a hard
// character cut. Splitting is deterministic.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter with the given target chunk size and
// overlap, both in characters. Non-positive values fall back to defaults.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split cuts text into ordered chunks. Every chunk after the first starts
// with the tail of its predecessor so retrieval keeps cross-boundary
// context. A document shorter than the chunk size comes back as a single
// chunk. Concatenating the non-overlapping cores reproduces the input.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	pieces := s.split(text, 0)

	var chunks []string
	var b strings.Builder
	core := 0 // chars of new (non-overlap) content in the current chunk
	for _, p := range pieces {
		if core > 0 && b.Len()+len(p) > s.chunkSize {
			chunk := b.String()
			chunks = append(chunks, chunk)
			b.Reset()
			b.WriteString(runeSafeTail(chunk, s.overlap))
			core = 0
		}
		b.WriteString(p)
		core += len(p)
	}
	if core > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// split recursively reduces text to pieces no longer than chunkSize,
// trying separators in priority order. Separators stay attached to the
// preceding piece so no characters are lost.
func (s *Splitter) split(text string, sepIdx int) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(s.separators) || s.separators[sepIdx] == "" {
		return s.hardCut(text)
	}

	sep := s.separators[sepIdx]
	if !strings.Contains(text, sep) {
		return s.split(text, sepIdx+1)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) > s.chunkSize {
			out = append(out, s.split(part, sepIdx+1)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// hardCut slices text into chunkSize pieces at rune boundaries.
func (s *Splitter) hardCut(text string) []string {
	var out []string
	for len(text) > s.chunkSize {
		cut := s.chunkSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = s.chunkSize
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// runeSafeTail returns at most n trailing bytes of s without splitting a
// rune.
func runeSafeTail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		if n <= 0 {
			return ""
		}
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
