package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"pdf_rag/internal/llm"
	"pdf_rag/internal/store"
)

// Answer - ответ на вопрос вместе с источниками
type Answer struct {
	Prompt  string
	Text    string
	Sources []store.SearchResult
}

// Query отвечает на вопросы по индексу и печатает ответы с цитатами
func (a *App) Query(ctx context.Context, prompts []string) ([]Answer, error) {
	if len(prompts) == 0 {
		prompts = DefaultPrompts
	}

	answers := make([]Answer, 0, len(prompts))
	for _, prompt := range prompts {
		ans, err := a.answer(ctx, prompt)
		if err != nil {
			return answers, err
		}
		a.printAnswer(ans)
		answers = append(answers, ans)
	}
	return answers, nil
}

func (a *App) answer(ctx context.Context, prompt string) (Answer, error) {
	finder, err := a.retriever(ctx)
	if err != nil {
		return Answer{}, err
	}
	c, err := a.completer()
	if err != nil {
		return Answer{}, err
	}

	results, err := finder.Query(ctx, prompt, a.cfg.TopK)
	if err != nil {
		return Answer{}, fmt.Errorf("search failed: %w", err)
	}
	log.Printf("🔍 Found %d relevant sections for %q", len(results), prompt)

	text, err := c.Complete(ctx, buildQAPrompt(prompt, results, a.cfg.MaxPromptChars), llm.FormatText)
	if err != nil {
		return Answer{}, fmt.Errorf("LLM error: %w", err)
	}

	return Answer{Prompt: prompt, Text: strings.TrimSpace(text), Sources: results}, nil
}

func (a *App) printAnswer(ans Answer) {
	a.printf("\nPrompt: %s\n", ans.Prompt)
	a.printf("\nAnswer: %s\n\n", ans.Text)
	for _, src := range ans.Sources {
		a.printf("Citation: %s\n", src.Citation())
	}
}

// Run читает вопросы построчно до EOF или отмены контекста.
// Ошибка одного вопроса не останавливает цикл.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	log.Println("Enter questions (one per line). Ctrl+C to exit.")

	scanner := bufio.NewScanner(in)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				log.Println("stdin closed")
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			ans, err := a.answer(ctx, line)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				log.Printf("❌ %v", err)
				continue
			}
			a.printAnswer(ans)
		}
	}
}
