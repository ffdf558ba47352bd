package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf_rag/internal/extract"
	"pdf_rag/internal/llm"
)

// ChunkAnswer - ответ модели на один чанк документа
type ChunkAnswer struct {
	ChunkIndex int
	Tokens     int
	Answer     string
}

// DocumentAnswers - результат long-context прохода по документу
type DocumentAnswers struct {
	FileName    string
	Question    string
	MaxTokens   int
	Results     []ChunkAnswer
	ProcessedAt time.Time
}

// Ask режет документ на чанки по maxTokens и задаёт question по каждому.
// Чанки обрабатываются по очереди, любая ошибка прерывает документ.
func (a *App) Ask(ctx context.Context, path, question string, maxTokens int, format llm.Format) (*DocumentAnswers, error) {
	if question == "" {
		question = DefaultQuestion
	}
	if maxTokens == 0 {
		maxTokens = a.cfg.MaxTokens
	}

	tc, err := a.tokenChunker()
	if err != nil {
		return nil, err
	}
	c, err := a.completer()
	if err != nil {
		return nil, err
	}

	text, err := extract.Text(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	log.Printf("📄 File loaded: %s (%d bytes)", path, len(text))

	spans, err := tc.Spans(text, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk %s: %w", path, err)
	}
	log.Printf("📦 Split into %d chunks of at most %d tokens", len(spans), maxTokens)

	doc := &DocumentAnswers{
		FileName:    filepath.Base(path),
		Question:    question,
		MaxTokens:   maxTokens,
		ProcessedAt: time.Now(),
	}

	for i, span := range spans {
		answer, err := c.Complete(ctx, buildChunkPrompt(question, span.Text), format)
		if err != nil {
			return doc, fmt.Errorf("chunk %d/%d: %w", i+1, len(spans), err)
		}

		result := ChunkAnswer{ChunkIndex: i + 1, Tokens: len(span.Tokens), Answer: strings.TrimSpace(answer)}
		doc.Results = append(doc.Results, result)

		log.Printf("🤖 Chunk %d/%d (%d tokens) answered", result.ChunkIndex, len(spans), result.Tokens)
		a.printf("%s\n", result.Answer)
	}

	if a.outputPath != "" {
		if err := saveAnswers(doc, a.outputPath); err != nil {
			log.Printf("⚠️  Failed to save results: %v", err)
		} else {
			log.Printf("💾 Results saved to: %s", a.outputPath)
		}
	}

	return doc, nil
}

// saveAnswers сохраняет ответы по чанкам в markdown
func saveAnswers(doc *DocumentAnswers, outputPath string) error {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s\n\n", doc.FileName)
	fmt.Fprintf(&buf, "**Question:** %s\n\n", doc.Question)
	fmt.Fprintf(&buf, "**Processed at:** %s\n\n", doc.ProcessedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "**Chunks:** %d (max %d tokens)\n\n", len(doc.Results), doc.MaxTokens)

	found := 0
	for _, r := range doc.Results {
		if !strings.EqualFold(strings.Trim(r.Answer, ` ."`), NotFound) {
			found++
		}
	}
	fmt.Fprintf(&buf, "**Chunks with an answer:** %d\n\n", found)

	for _, r := range doc.Results {
		fmt.Fprintf(&buf, "## Chunk %d (%d tokens)\n\n", r.ChunkIndex, r.Tokens)
		buf.WriteString(r.Answer)
		buf.WriteString("\n\n---\n\n")
	}

	return os.WriteFile(outputPath, []byte(buf.String()), 0644)
}
