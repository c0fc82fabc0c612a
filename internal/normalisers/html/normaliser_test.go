package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatHTML}, New().Formats())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple page",
			in:   "<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>",
			want: "Hello World",
		},
		{
			name: "inline elements keep spacing",
			in:   "<p>Hello <b>bold</b> and <i>italic</i> text</p>",
			want: "Hello bold and italic text",
		},
		{
			name: "paragraphs separated by blank line",
			in:   "<p>First paragraph.</p><p>Second paragraph.</p>",
			want: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "script and style removed",
			in:   "<style>body{color:red}</style><p>Visible</p><script>alert('x')</script>",
			want: "Visible",
		},
		{
			name: "entities decoded",
			in:   "<p>Fish &amp; Chips &lt;3 &quot;yum&quot;</p>",
			want: "Fish & Chips <3 \"yum\"",
		},
		{
			name: "whitespace collapsed",
			in:   "<p>Hello\n     World\t\tagain</p>",
			want: "Hello World again",
		},
		{
			name: "br starts new line",
			in:   "line one<br>line two<br/>line three",
			want: "line one\nline two\nline three",
		},
		{
			name: "unclosed head does not hide body",
			in:   "<html><head><title>T</title><body><p>Body text</p></body></html>",
			want: "Body text",
		},
		{
			name: "comments removed",
			in:   "<p>Keep<!-- drop this --> me</p>",
			want: "Keep me",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, "<p>one</p><p>two</p>")
	assert.ErrorIs(t, err, context.Canceled)
}
