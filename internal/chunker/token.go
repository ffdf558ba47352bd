package chunker

import (
	"errors"
	"fmt"
	"strings"

	"pdf_rag/internal/tokenizer"
)

// Span - чанк вместе с токенами, из которых он собран
type Span struct {
	Text   string
	Tokens []int
}

// TokenChunker режет текст на куски не длиннее бюджета в токенах.
// Границы чанков всегда совпадают с границами токенов.
type TokenChunker struct {
	tok tokenizer.Tokenizer
}

// NewTokenChunker создаёт chunker поверх заданного токенизатора
func NewTokenChunker(tok tokenizer.Tokenizer) *TokenChunker {
	return &TokenChunker{tok: tok}
}

// Chunk жадно набирает токены, пока их не станет maxTokens, и отдаёт чанк.
// Последний чанк может быть короче, пустой хвост не отдаётся.
func (c *TokenChunker) Chunk(text string, maxTokens int) ([]string, error) {
	spans, err := c.Spans(text, maxTokens)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, len(spans))
	for i, s := range spans {
		chunks[i] = s.Text
	}
	return chunks, nil
}

// Spans работает как Chunk, но сохраняет id токенов каждого чанка
func (c *TokenChunker) Spans(text string, maxTokens int) ([]Span, error) {
	if maxTokens < 1 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidArgument, maxTokens)
	}

	tokens, err := c.tok.Encode(text)
	if err != nil {
		return nil, wrapEncoding(err)
	}

	var spans []Span
	var current strings.Builder
	count := 0
	start := 0

	for i, id := range tokens {
		count++
		// Декодируем по одному токену: срез исходной строки по счётчику
		// не годится, токен может быть частью многобайтового символа
		piece, err := c.tok.Decode([]int{id})
		if err != nil {
			return nil, wrapEncoding(err)
		}
		current.WriteString(piece)

		// Граница включительная: чанк может содержать ровно maxTokens
		if count >= maxTokens {
			spans = append(spans, Span{Text: current.String(), Tokens: tokens[start : i+1]})
			current.Reset()
			count = 0
			start = i + 1
		}
	}

	if current.Len() > 0 {
		spans = append(spans, Span{Text: current.String(), Tokens: tokens[start:]})
	}

	return spans, nil
}

// Count возвращает количество токенов в тексте
func (c *TokenChunker) Count(text string) (int, error) {
	n, err := tokenizer.Count(c.tok, text)
	if err != nil {
		return 0, wrapEncoding(err)
	}
	return n, nil
}

func wrapEncoding(err error) error {
	if errors.Is(err, tokenizer.ErrEncoding) {
		return err
	}
	return fmt.Errorf("%w: %v", tokenizer.ErrEncoding, err)
}
