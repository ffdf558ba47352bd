package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory_InvalidConfig(t *testing.T) {
	_, err := NewFactory(Config{MaxChunkSize: 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFactory_GetChunker(t *testing.T) {
	f, err := NewFactory(Config{MaxChunkSize: 100, Overlap: 10})
	require.NoError(t, err)

	tests := []struct {
		path   string
		method string
		want   string
	}{
		{"notes.md", "", "markdown"},
		{"notes.MARKDOWN", "auto", "markdown"},
		{"notes.txt", "", "text"},
		{"book.pdf", "", "text"},
		{"notes.md", "text", "text"},
		{"book.pdf", "md", "markdown"},
	}

	for _, tt := range tests {
		c, err := f.GetChunker(tt.path, tt.method)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Name(), "%s / %q", tt.path, tt.method)
	}

	_, err = f.GetChunker("x.md", "semantic")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFactory_ChunkWithFallback(t *testing.T) {
	f, err := NewFactory(Config{MaxChunkSize: 100})
	require.NoError(t, err)

	chunks, err := f.ChunkWithFallback("no headings at all\n\njust text", "/data/notes.md", "")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "paragraphs", chunks[0].Metadata["method"])
	assert.Equal(t, "notes.md", chunks[0].Source)
}
