package tokenizer

import (
	"errors"
	"fmt"
)

// DefaultEncoding - кодировка, используемая для gpt-4o / text-embedding-3
const DefaultEncoding = "cl100k_base"

// ErrEncoding возвращается при любой ошибке токенизатора
var ErrEncoding = errors.New("encoding error")

// Tokenizer - граница с внешним токенизатором.
// Decode(Encode(s)) == s должно выполняться для любых s.
type Tokenizer interface {
	// Encode превращает текст в последовательность id токенов
	Encode(text string) ([]int, error)

	// Decode собирает текст обратно из id токенов
	Decode(tokens []int) (string, error)
}

// Count возвращает количество токенов в тексте
func Count(t Tokenizer, text string) (int, error) {
	tokens, err := t.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(tokens), nil
}

func encodingErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrEncoding, op, err)
}
