package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

type upperExtractor struct{}

func (upperExtractor) Formats() []domain.Format { return []domain.Format{domain.FormatPlainText} }

func (upperExtractor) Extract(_ context.Context, text string) (string, error) {
	return "X:" + text, nil
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []domain.Format{domain.FormatHTML, domain.FormatMarkdown, domain.FormatPlainText}, r.Formats())
	assert.True(t, r.Supports(domain.FormatMarkdown))
	assert.False(t, r.Supports(domain.Format("pdf")))
}

func TestRegistry_Extract(t *testing.T) {
	ctx := context.Background()
	r := NewDefaultRegistry()

	t.Run("markdown passes through", func(t *testing.T) {
		got, err := r.Extract(ctx, domain.FormatMarkdown, "# Title\n\nBody")
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nBody", got)
	})

	t.Run("html is stripped", func(t *testing.T) {
		got, err := r.Extract(ctx, domain.FormatHTML, "<p>Hello <b>World</b></p>")
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := r.Extract(ctx, domain.Format("pdf"), "x")
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(upperExtractor{})

	got, err := r.Extract(context.Background(), domain.FormatPlainText, "a")
	require.NoError(t, err)
	assert.Equal(t, "X:a", got)

	got, err = r.Extract(context.Background(), domain.FormatMarkdown, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}
