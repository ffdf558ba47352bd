package chunker

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// SurroundingWords находит первое вхождение target (по словам) и возвращает
// до numWords слов с каждой стороны, соединённых пробелом
func SurroundingWords(text, target string, numWords int) (string, bool) {
	if numWords < 0 {
		numWords = 0
	}

	words := wordRe.FindAllString(text, -1)
	targetWords := wordRe.FindAllString(target, -1)
	if len(targetWords) == 0 {
		return "", false
	}

	for i := 0; i+len(targetWords) <= len(words); i++ {
		if !equalWords(words[i:i+len(targetWords)], targetWords) {
			continue
		}
		start := max(i-numWords, 0)
		end := min(i+len(targetWords)+numWords, len(words))
		return strings.Join(words[start:end], " "), true
	}

	return "", false
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
