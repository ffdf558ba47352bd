package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BPE файлы tiktoken скачиваются при первом обращении
func newTestTiktoken(t *testing.T) *Tiktoken {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping tiktoken test in short mode")
	}
	tok, err := NewTiktoken(DefaultEncoding, 16)
	require.NoError(t, err)
	return tok
}

func TestNewTiktoken_UnknownEncoding(t *testing.T) {
	_, err := NewTiktoken("no_such_encoding", 0)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestTiktoken_RoundTrip(t *testing.T) {
	tok := newTestTiktoken(t)
	assert.Equal(t, DefaultEncoding, tok.Name())

	for _, text := range []string{
		"",
		"What is Tony's favorite color?",
		"Stalin's 'niet' ability\n\nSpace Race",
		"многобайтовый текст 世界 🌍",
		"<|endoftext|> is treated as text",
	} {
		tokens, err := tok.Encode(text)
		require.NoError(t, err)

		decoded, err := tok.Decode(tokens)
		require.NoError(t, err)
		assert.Equal(t, text, decoded)

		// Посимвольная склейка тоже должна давать исходный текст
		var buf strings.Builder
		for _, id := range tokens {
			piece, err := tok.Decode([]int{id})
			require.NoError(t, err)
			buf.WriteString(piece)
		}
		assert.Equal(t, text, buf.String())
	}
}

func TestTiktoken_CachesPieces(t *testing.T) {
	tok := newTestTiktoken(t)

	tokens, err := tok.Encode("hello hello hello")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	first, err := tok.Decode(tokens[:1])
	require.NoError(t, err)
	assert.True(t, tok.pieces.Contains(tokens[0]))

	second, err := tok.Decode(tokens[:1])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCount(t *testing.T) {
	tok := newTestTiktoken(t)

	n, err := Count(tok, "hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Count(tok, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
