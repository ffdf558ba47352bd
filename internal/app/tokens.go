package app

import (
	"fmt"

	"pdf_rag/internal/chunker"
	"pdf_rag/internal/extract"
)

// Tokens печатает количество токенов в тексте документа
func (a *App) Tokens(path string) (int, error) {
	tc, err := a.tokenChunker()
	if err != nil {
		return 0, err
	}

	text, err := extract.Text(path)
	if err != nil {
		return 0, fmt.Errorf("failed to extract text: %w", err)
	}

	n, err := tc.Count(text)
	if err != nil {
		return 0, err
	}

	a.printf("%d\n", n)
	return n, nil
}

// Context печатает numWords слов вокруг первого вхождения target
func (a *App) Context(path, target string, numWords int) (string, bool, error) {
	text, err := extract.Text(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to extract text: %w", err)
	}

	found, ok := chunker.SurroundingWords(text, target, numWords)
	if !ok {
		a.printf("%s\n", NotFound)
		return "", false, nil
	}

	a.printf("%s\n", found)
	return found, true, nil
}
