package chunker

import (
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// separator identifies a split point class. Lower values are coarser and
// tried first.
type separator int

const (
	sepParagraph separator = iota // blank line
	sepLine                       // newline
	sepSentence                   // '.', '!' or '?' followed by a space
	sepSpace                      // space
	numSeparators
)

// span is a half-open range of rune offsets into the text.
// Forced spans come from hard-splitting a token with no separator.
type span struct {
	start, end int
	forced     bool
}

func (s span) len() int { return s.end - s.start }

// frame is a pending work-list entry: a span still to be split, and the
// first separator it may be split on.
type frame struct {
	start, end int
	level      separator
}

// Splitter cuts text into bounded, overlapping chunks.
// It is safe for concurrent use.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter validates cfg and returns a splitter for it.
func NewSplitter(cfg domain.ChunkingSettings) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{size: cfg.ChunkSize, overlap: cfg.ChunkOverlap}, nil
}

// Split returns the chunk texts for text. Lengths are counted in runes.
//
// Empty text yields no chunks; text no longer than the chunk size yields
// exactly one chunk equal to the text. Longer text is cut on the coarsest
// separator available, pieces are merged back greedily up to the chunk
// size, and each chunk begins with the last overlap characters of the
// previous one. A run with no separator that exceeds the budget is cut
// into slices of exactly chunk size characters, each emitted on its own.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	spans := s.chunkSpans(runes)
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = string(runes[sp.start:sp.end])
	}
	return out
}

func (s *Splitter) chunkSpans(runes []rune) []span {
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= s.size {
		return []span{{start: 0, end: n}}
	}
	return s.merge(s.pieces(runes))
}

// pieces cuts runes into contiguous spans no longer than the stride, except
// forced slices which are up to the chunk size. Splitting walks an explicit
// stack so depth does not depend on document structure.
func (s *Splitter) pieces(runes []rune) []span {
	limit := s.size - s.overlap

	var out []span
	stack := []frame{{start: 0, end: len(runes), level: sepParagraph}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.end-f.start <= limit {
			out = append(out, span{start: f.start, end: f.end})
			continue
		}

		parts, next := splitOnce(runes, f.start, f.end, f.level)
		if parts == nil {
			out = append(out, hardSplit(f.start, f.end, s.size)...)
			continue
		}

		// Push in reverse so pieces pop in document order.
		for i := len(parts) - 1; i >= 0; i-- {
			stack = append(stack, frame{start: parts[i].start, end: parts[i].end, level: next})
		}
	}

	return out
}

// merge packs pieces into chunks of at most s.size runes.
func (s *Splitter) merge(pieces []span) []span {
	var chunks []span

	// The chunk being built is [start, end). fresh is false while it holds
	// nothing but the overlap carried from the previous chunk.
	start, end := 0, 0
	fresh := false

	for _, p := range pieces {
		if p.forced {
			if fresh {
				chunks = append(chunks, span{start: start, end: end})
			}
			chunks = append(chunks, p)
			carry := min(s.overlap, p.len())
			start, end, fresh = p.end-carry, p.end, false
			continue
		}

		if p.end-start > s.size {
			chunks = append(chunks, span{start: start, end: end})
			start = end - s.overlap
		}
		end = p.end
		fresh = true
	}

	if fresh {
		chunks = append(chunks, span{start: start, end: end})
	}
	return chunks
}

// splitOnce cuts [start, end) on the first separator at or after level that
// occurs inside it. It returns the parts and the level their own splitting
// should start from, or nil when no separator applies.
func splitOnce(runes []rune, start, end int, level separator) ([]span, separator) {
	for sep := level; sep < numSeparators; sep++ {
		cuts := cutPoints(runes, start, end, sep)
		if len(cuts) == 0 {
			continue
		}
		parts := make([]span, 0, len(cuts)+1)
		prev := start
		for _, c := range cuts {
			parts = append(parts, span{start: prev, end: c})
			prev = c
		}
		parts = append(parts, span{start: prev, end: end})
		return parts, sep + 1
	}
	return nil, numSeparators
}

// cutPoints returns the offsets strictly inside (start, end) where a piece
// ends. Separators stay attached to the piece they terminate.
func cutPoints(runes []rune, start, end int, sep separator) []int {
	var cuts []int
	for i := start; i < end; i++ {
		var next int
		switch sep {
		case sepParagraph:
			if runes[i] != '\n' || i+1 >= end || runes[i+1] != '\n' {
				continue
			}
			next = skipRun(runes, i, end, '\n')
		case sepLine:
			if runes[i] != '\n' {
				continue
			}
			next = i + 1
		case sepSentence:
			if !isSentenceEnd(runes[i]) || i+1 >= end || runes[i+1] != ' ' {
				continue
			}
			next = skipRun(runes, i+1, end, ' ')
		case sepSpace:
			if runes[i] != ' ' {
				continue
			}
			next = skipRun(runes, i, end, ' ')
		}
		if next < end {
			cuts = append(cuts, next)
		}
		i = next - 1
	}
	return cuts
}

// skipRun returns the first offset at or after i that is not r.
func skipRun(runes []rune, i, end int, r rune) int {
	for i < end && runes[i] == r {
		i++
	}
	return i
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// hardSplit cuts [start, end) into forced slices of width size.
func hardSplit(start, end, size int) []span {
	slices := make([]span, 0, (end-start+size-1)/size)
	for i := start; i < end; i += size {
		slices = append(slices, span{start: i, end: min(i+size, end), forced: true})
	}
	return slices
}
