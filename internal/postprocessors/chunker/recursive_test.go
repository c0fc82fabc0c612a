package chunker

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func mustSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(domain.ChunkingSettings{ChunkSize: size, ChunkOverlap: overlap})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func runeLens(chunks []string) []int {
	lens := make([]int, len(chunks))
	for i, c := range chunks {
		lens[i] = utf8.RuneCountInString(c)
	}
	return lens
}

func TestNewSplitter_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(domain.ChunkingSettings{ChunkSize: tt.size, ChunkOverlap: tt.overlap})
			if !errors.Is(err, domain.ErrChunking) {
				t.Errorf("expected ErrChunking, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s := mustSplitter(t, 800, 150)
	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	s := mustSplitter(t, 800, 150)

	inputs := []string{
		"x",
		"Hello world.",
		"para one\n\npara two\n",
		"  leading and trailing space  ",
		strings.Repeat("a", 800),
	}
	for _, in := range inputs {
		chunks := s.Split(in)
		if len(chunks) != 1 || chunks[0] != in {
			t.Errorf("expected single chunk equal to input for %q, got %q", in, chunks)
		}
	}
}

func TestSplit_SingleTokenIsHardSplit(t *testing.T) {
	s := mustSplitter(t, 800, 150)

	chunks := s.Split(strings.Repeat("x", 2000))

	got := runeLens(chunks)
	want := []int{800, 800, 400}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected length %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSplit_RepeatedSentences(t *testing.T) {
	s := mustSplitter(t, 800, 150)
	text := strings.Repeat("Hello world. ", 154)[:2000]

	first := s.Split(text)
	second := s.Split(text)

	got := runeLens(first)
	want := []int{793, 800, 707}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected length %d, got %d", i, want[i], got[i])
		}
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}

	// Chunk boundaries follow sentence ends.
	if !strings.HasSuffix(first[0], "Hello world. ") {
		t.Errorf("expected first chunk to end on a sentence, got %q", first[0][len(first[0])-20:])
	}
	for i := 0; i+1 < len(first); i++ {
		suffix := first[i][len(first[i])-150:]
		prefix := first[i+1][:150]
		if suffix != prefix {
			t.Errorf("chunks %d and %d do not overlap by 150 characters", i, i+1)
		}
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	s := mustSplitter(t, 800, 150)
	para := strings.Repeat("abcd ", 99) + "abcd."
	text := para + "\n\n" + para

	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != para+"\n\n" {
		t.Errorf("expected first chunk to be the first paragraph, got %q", chunks[0])
	}
	if chunks[1] != text[len(chunks[0])-150:] {
		t.Errorf("expected second chunk to start 150 characters before the paragraph break")
	}
}

func TestSplit_MergesSmallParagraphs(t *testing.T) {
	s := mustSplitter(t, 100, 10)
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("short para\n\n")
	}

	chunks := s.Split(b.String())

	// 30 paragraphs of 12 characters fit several per chunk.
	if len(chunks) >= 30 || len(chunks) < 4 {
		t.Errorf("expected paragraphs to be merged, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk %d exceeds chunk size: %d", i, n)
		}
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	s := mustSplitter(t, 10, 2)
	text := strings.Repeat("é", 25)

	got := runeLens(s.Split(text))
	want := []int{10, 10, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %d runes, got %d", i, want[i], got[i])
		}
	}
}

func TestSplit_OverlapAfterHardSplit(t *testing.T) {
	s := mustSplitter(t, 20, 5)
	token := strings.Repeat("x", 30)
	text := token + " tail words here"

	chunks := s.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != token[:20] {
		t.Errorf("unexpected first slice %q", chunks[0])
	}
	if chunks[1] != token[20:]+" " {
		t.Errorf("unexpected second slice %q", chunks[1])
	}
	if !strings.HasPrefix(chunks[2], chunks[1][len(chunks[1])-5:]) {
		t.Errorf("expected chunk after slice to start with the slice tail, got %q", chunks[2])
	}
}

// randomDocument builds text with words, sentences, lines, paragraphs and
// the occasional long unbroken token.
func randomDocument(rng *rand.Rand, words int) string {
	alphabet := []rune("abcdefghijklmnopqrstuvwxyzé日")
	var b strings.Builder
	for i := 0; i < words; i++ {
		n := 1 + rng.Intn(10)
		if rng.Intn(60) == 0 {
			n = 50 + rng.Intn(900)
		}
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		switch r := rng.Intn(40); {
		case r == 0:
			b.WriteString("\n\n")
		case r == 1:
			b.WriteString("\n")
		case r < 6:
			b.WriteString(". ")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestSplit_Properties(t *testing.T) {
	params := []struct{ size, overlap int }{
		{800, 150},
		{100, 20},
		{50, 0},
		{10, 9},
		{37, 36},
	}
	rng := rand.New(rand.NewSource(7))

	for _, p := range params {
		s := mustSplitter(t, p.size, p.overlap)
		for iter := 0; iter < 40; iter++ {
			text := randomDocument(rng, rng.Intn(800))
			runes := []rune(text)
			spans := s.chunkSpans(runes)

			if len(runes) == 0 {
				if len(spans) != 0 {
					t.Fatalf("expected no chunks for empty text")
				}
				continue
			}
			if spans[0].start != 0 || spans[len(spans)-1].end != len(runes) {
				t.Fatalf("size=%d overlap=%d: chunks do not cover the text", p.size, p.overlap)
			}

			for i, sp := range spans {
				if sp.len() <= 0 || sp.len() > p.size {
					t.Fatalf("size=%d overlap=%d: chunk %d has length %d", p.size, p.overlap, i, sp.len())
				}
				if i == 0 {
					continue
				}
				prev := spans[i-1]
				if sp.start > prev.end || sp.end <= prev.end {
					t.Fatalf("size=%d overlap=%d: chunk %d is not contiguous with %d", p.size, p.overlap, i, i-1)
				}
				if !sp.forced && !prev.forced && sp.start != prev.end-p.overlap {
					t.Fatalf("size=%d overlap=%d: chunks %d and %d overlap by %d",
						p.size, p.overlap, i-1, i, prev.end-sp.start)
				}
			}

			again := s.Split(text)
			for i, sp := range spans {
				if again[i] != string(runes[sp.start:sp.end]) {
					t.Fatalf("chunk %d is not reproducible", i)
				}
			}
		}
	}
}
