package chunker

import (
	"crypto/sha256"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"
)

// CreateChunk создаёт чанк с автоматической генерацией ID
func CreateChunk(text, source, section string, metadata map[string]string) Chunk {
	text = strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(text + source))

	if metadata == nil {
		metadata = make(map[string]string)
	}

	return Chunk{
		ID:       fmt.Sprintf("%x", hash[:8]),
		Text:     text,
		Source:   source,
		Section:  section,
		Metadata: metadata,
	}
}

// GetLastNChars возвращает последние N символов строки для overlap
func GetLastNChars(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

// SplitByParagraphs разбивает текст на непустые параграфы
func SplitByParagraphs(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var result []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func partName(n int) string {
	return fmt.Sprintf("Part %d", n)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func logFallback(name, source string, err error) {
	log.Printf("⚠️  [%s] %s: %v, falling back to text chunker", name, source, err)
}
