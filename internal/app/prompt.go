package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pdf_rag/internal/store"
)

// DefaultQuestion - вопрос long-context прохода по документу
const DefaultQuestion = "What is Tony's favorite color?"

// NotFound - ответ модели, если в чанке ничего нет
const NotFound = "not found"

// DefaultPrompts - вопросы по умолчанию для query
var DefaultPrompts = []string{
	"How does Stalin's 'niet' ability work?",
	"Teach me about the Space Race mechanic.",
	"Which civil war battles are covered in the game?",
	"How many conferences are played in the Training Scenario?",
	"What are the victory conditions for the 1862 scenario?",
}

// buildChunkPrompt оборачивает чанк документа в шаблон вопроса
func buildChunkPrompt(question, chunk string) string {
	return fmt.Sprintf(
		"Carefully read the included text in its entirety and answer the question %q "+
			"If you don't find the answer, simply respond with %q. Here's the text: %s",
		question, NotFound, chunk)
}

// buildQAPrompt формирует промпт с контекстом из индекса в пределах maxChars.
// Не влезающий чанк обрезается, остальные отбрасываются.
func buildQAPrompt(question string, results []store.SearchResult, maxChars int) string {
	var head, ctx, tail strings.Builder

	head.WriteString("Context information is below.\n")
	head.WriteString("---------------------\n")

	tail.WriteString("---------------------\n")
	tail.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	tail.WriteString("Query: ")
	tail.WriteString(question)
	tail.WriteString("\nAnswer: ")

	available := maxChars - head.Len() - tail.Len()
	for _, r := range results {
		entry := fmt.Sprintf("[%s]\n%s\n\n", r.Citation(), strings.TrimSpace(r.Content))
		if maxChars > 0 && ctx.Len()+len(entry) > available {
			room := available - ctx.Len()
			if room > 100 {
				ctx.WriteString(truncateRunes(entry, room-4))
				ctx.WriteString("...\n")
			}
			break
		}
		ctx.WriteString(entry)
	}

	return head.String() + ctx.String() + tail.String()
}

// truncateRunes обрезает строку не длиннее n байт, не разрывая руны
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
