// Package extract достаёт текст из документов постранично.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat - расширение файла не поддерживается
var ErrUnsupportedFormat = errors.New("unsupported format")

// Page - текст одной страницы, Number начинается с 1
type Page struct {
	Number int
	Text   string
}

// SupportedFile проверяет, что файл это .pdf, .md или .txt
func SupportedFile(path string) bool {
	switch ext(path) {
	case ".pdf", ".md", ".markdown", ".txt", ".text":
		return true
	}
	return false
}

// Pages возвращает страницы документа. Markdown и plain text - одна страница.
func Pages(path string) ([]Page, error) {
	switch ext(path) {
	case ".pdf":
		return pdfPages(path)
	case ".md", ".markdown":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return []Page{{Number: 1, Text: MarkdownText(content)}}, nil
	case ".txt", ".text":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return []Page{{Number: 1, Text: string(content)}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Text склеивает все страницы документа в один текст
func Text(path string) (string, error) {
	pages, err := Pages(path)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for _, p := range pages {
		buf.WriteString(p.Text)
	}
	return buf.String(), nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
