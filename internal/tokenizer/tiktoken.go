package tokenizer

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultCacheSize - сколько декодированных токенов держим в памяти
const DefaultCacheSize = 8192

// Tiktoken реализует Tokenizer поверх BPE кодировок OpenAI
type Tiktoken struct {
	name   string
	enc    *tiktoken.Tiktoken
	pieces *lru.Cache[int, string]
}

// NewTiktoken загружает кодировку по имени (например cl100k_base)
func NewTiktoken(encoding string, cacheSize int) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, encodingErr("load "+encoding, err)
	}

	pieces, err := lru.New[int, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}

	return &Tiktoken{name: encoding, enc: enc, pieces: pieces}, nil
}

// Name возвращает название кодировки
func (t *Tiktoken) Name() string {
	return t.name
}

// Encode кодирует текст; спецтокены считаются обычным текстом
func (t *Tiktoken) Encode(text string) (tokens []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			tokens, err = nil, encodingErr("encode", fmt.Errorf("%v", r))
		}
	}()
	return t.enc.Encode(text, nil, nil), nil
}

// Decode собирает текст; одиночные токены берутся из кэша
func (t *Tiktoken) Decode(tokens []int) (text string, err error) {
	if len(tokens) == 1 {
		if piece, ok := t.pieces.Get(tokens[0]); ok {
			return piece, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", encodingErr("decode", fmt.Errorf("%v", r))
		}
	}()

	text = t.enc.Decode(tokens)
	if len(tokens) == 1 {
		t.pieces.Add(tokens[0], text)
	}
	return text, nil
}
