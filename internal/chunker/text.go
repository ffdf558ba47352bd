package chunker

import (
	"log"
	"strconv"
	"strings"
)

// TextChunker разбивает plain text по размеру в символах с overlap
type TextChunker struct {
	config Config
}

// NewTextChunker создаёт новый text chunker
func NewTextChunker(config Config) *TextChunker {
	return &TextChunker{config: config}
}

func (s *TextChunker) Name() string {
	return "text"
}

func (s *TextChunker) Chunk(content, source string) ([]Chunk, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	// Пытаемся разбить по параграфам если они есть
	if strings.Contains(content, "\n\n") {
		chunks := s.chunkByParagraphs(content, source)
		log.Printf("✅ [%s] %s: %d chunks (by paragraphs)", s.Name(), source, len(chunks))
		return chunks, nil
	}

	chunks := s.chunkBySize(content, source, 1)
	log.Printf("✅ [%s] %s: %d chunks (by size)", s.Name(), source, len(chunks))
	return chunks, nil
}

// chunkByParagraphs упаковывает параграфы в чанки, хвост предыдущего
// чанка переносится в начало следующего
func (s *TextChunker) chunkByParagraphs(content, source string) []Chunk {
	var chunks []Chunk
	var current strings.Builder
	hasNew := false // в current есть что-то кроме overlap
	chunkNum := 1

	carry := func(text string) {
		current.Reset()
		hasNew = false
		if s.config.Overlap > 0 {
			current.WriteString(GetLastNChars(text, s.config.Overlap))
		}
	}

	flush := func() {
		text := current.String()
		chunks = append(chunks, CreateChunk(text, source, partName(chunkNum), map[string]string{
			"chunk_num": strconv.Itoa(chunkNum),
			"method":    "paragraphs",
		}))
		chunkNum++
		carry(text)
	}

	for _, para := range SplitByParagraphs(content) {
		// Параграф больше окна режем отдельно по размеру
		if runeLen(para) > s.config.MaxChunkSize {
			if hasNew {
				flush()
			}
			windows := s.chunkBySize(para, source, chunkNum)
			chunks = append(chunks, windows...)
			chunkNum += len(windows)
			carry(windows[len(windows)-1].Text)
			continue
		}

		if hasNew && runeLen(current.String())+runeLen(para)+2 > s.config.MaxChunkSize {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		hasNew = true
	}

	if hasNew {
		flush()
	}

	return chunks
}

// chunkBySize режет текст окнами MaxChunkSize рун с шагом MaxChunkSize-Overlap
func (s *TextChunker) chunkBySize(content, source string, firstNum int) []Chunk {
	var chunks []Chunk
	runes := []rune(content)
	chunkNum := firstNum
	step := s.config.MaxChunkSize - s.config.Overlap

	for i := 0; i < len(runes); i += step {
		end := i + s.config.MaxChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[i:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, CreateChunk(window, source, partName(chunkNum), map[string]string{
				"chunk_num": strconv.Itoa(chunkNum),
				"method":    "size",
			}))
			chunkNum++
		}

		if end >= len(runes) {
			break
		}
	}

	return chunks
}
