package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf_rag/internal/chunker"
	"pdf_rag/internal/config"
	"pdf_rag/internal/llm"
	"pdf_rag/internal/store"
)

type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) ([]int, error) {
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens, nil
}

func (byteTokenizer) Decode(tokens []int) (string, error) {
	b := make([]byte, len(tokens))
	for i, id := range tokens {
		b[i] = byte(id)
	}
	return string(b), nil
}

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	formats []llm.Format
	reply   func(prompt string) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, format llm.Format) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.formats = append(f.formats, format)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(prompt)
	}
	return "not found", nil
}

type fakeRetriever struct {
	results []store.SearchResult
	err     error
}

func (f fakeRetriever) Query(_ context.Context, _ string, topK int) ([]store.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.results) {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func newTestApp(t *testing.T) (*App, *fakeCompleter, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	require.NoError(t, config.Init(cfg))

	a := New(cfg)
	out := &bytes.Buffer{}
	c := &fakeCompleter{}
	a.SetOutput(out)
	a.SetCompleter(c)
	a.SetTokenizer(byteTokenizer{})
	return a, c, out
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAsk_OneCallPerChunk(t *testing.T) {
	a, c, out := newTestApp(t)
	c.reply = func(prompt string) (string, error) {
		if strings.Contains(prompt, "green") {
			return "Tony's favorite color is green.", nil
		}
		return "not found", nil
	}
	path := writeDoc(t, "the-fellowship.txt", "aaaaaaaaaa Tony: green bbbbbbbbbb")

	doc, err := a.Ask(context.Background(), path, "", 12, llm.FormatText)
	require.NoError(t, err)

	require.Len(t, doc.Results, 3)
	require.Len(t, c.prompts, 3)
	assert.Equal(t, DefaultQuestion, doc.Question)
	assert.Equal(t, []int{12, 12, 9}, []int{doc.Results[0].Tokens, doc.Results[1].Tokens, doc.Results[2].Tokens})
	assert.Contains(t, c.prompts[0], `"What is Tony's favorite color?"`)
	assert.True(t, strings.HasSuffix(c.prompts[0], "aaaaaaaaaa T"), c.prompts[0])
	assert.Equal(t, "not found\nTony's favorite color is green.\nnot found\n", out.String())
	assert.Equal(t, []llm.Format{llm.FormatText, llm.FormatText, llm.FormatText}, c.formats)
}

func TestAsk_DefaultBudget(t *testing.T) {
	a, c, _ := newTestApp(t)
	path := writeDoc(t, "short.txt", "short document")

	doc, err := a.Ask(context.Background(), path, "Who?", 0, llm.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 100000, doc.MaxTokens)
	assert.Len(t, c.prompts, 1)
	assert.Equal(t, llm.FormatJSON, c.formats[0])
}

func TestAsk_InvalidBudget(t *testing.T) {
	a, c, _ := newTestApp(t)
	path := writeDoc(t, "doc.txt", "text")

	_, err := a.Ask(context.Background(), path, "", -1, llm.FormatText)
	assert.ErrorIs(t, err, chunker.ErrInvalidArgument)
	assert.Empty(t, c.prompts)
}

func TestAsk_CompletionErrorAborts(t *testing.T) {
	a, c, _ := newTestApp(t)
	c.reply = func(string) (string, error) { return "", errors.New("upstream down") }
	path := writeDoc(t, "doc.txt", strings.Repeat("x", 50))

	_, err := a.Ask(context.Background(), path, "", 10, llm.FormatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 1/5")
	assert.Len(t, c.prompts, 1)
}

func TestAsk_EmptyDocument(t *testing.T) {
	a, c, out := newTestApp(t)
	path := writeDoc(t, "empty.txt", "")

	doc, err := a.Ask(context.Background(), path, "", 10, llm.FormatText)
	require.NoError(t, err)
	assert.Empty(t, doc.Results)
	assert.Empty(t, c.prompts)
	assert.Empty(t, out.String())
}

func TestAsk_UnsupportedFile(t *testing.T) {
	a, _, _ := newTestApp(t)
	path := writeDoc(t, "scan.png", "png")

	_, err := a.Ask(context.Background(), path, "", 10, llm.FormatText)
	assert.Error(t, err)
}

func TestAsk_SavesReport(t *testing.T) {
	a, c, _ := newTestApp(t)
	c.reply = func(prompt string) (string, error) {
		if strings.Contains(prompt, "blue") {
			return "Blue.", nil
		}
		return "Not found.", nil
	}
	report := filepath.Join(t.TempDir(), "report.md")
	a.SetOutputPath(report)
	path := writeDoc(t, "people.txt", "Theo likes blue. Ruthie likes nothing")

	_, err := a.Ask(context.Background(), path, "What is Theo's favorite color?", 16, llm.FormatText)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# people.txt")
	assert.Contains(t, string(data), "**Question:** What is Theo's favorite color?")
	assert.Contains(t, string(data), "**Chunks with an answer:** 1")
	assert.Contains(t, string(data), "## Chunk 1 (16 tokens)")
}

var sources = []store.SearchResult{
	{Content: "Stalin may say niet once per conference.", Source: "rules.pdf", Page: "12", Similarity: 0.9},
	{Content: "The Soviet player holds the niet card.", Source: "rules.pdf", Page: "30", Similarity: 0.7},
	{Content: "Unrelated.", Source: "faq.pdf", Page: "1", Similarity: 0.1},
}

func TestQuery_PrintsCitations(t *testing.T) {
	a, c, out := newTestApp(t)
	a.SetRetriever(fakeRetriever{results: sources})
	c.reply = func(string) (string, error) { return "  He vetoes a proposal.  ", nil }

	answers, err := a.Query(context.Background(), []string{"How does Stalin's 'niet' ability work?"})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "He vetoes a proposal.", answers[0].Text)
	assert.Len(t, answers[0].Sources, 2)

	want := "\nPrompt: How does Stalin's 'niet' ability work?\n" +
		"\nAnswer: He vetoes a proposal.\n\n" +
		"Citation: rules.pdf - page 12\n" +
		"Citation: rules.pdf - page 30\n"
	assert.Equal(t, want, out.String())

	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "Stalin may say niet once per conference.")
	assert.Contains(t, c.prompts[0], "Query: How does Stalin's 'niet' ability work?")
	assert.NotContains(t, c.prompts[0], "Unrelated.")
}

func TestQuery_DefaultPrompts(t *testing.T) {
	a, c, _ := newTestApp(t)
	a.SetRetriever(fakeRetriever{results: sources})

	answers, err := a.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, answers, len(DefaultPrompts))
	assert.Len(t, c.prompts, len(DefaultPrompts))
}

func TestQuery_SearchError(t *testing.T) {
	a, c, _ := newTestApp(t)
	a.SetRetriever(fakeRetriever{err: store.ErrNoIndex})

	_, err := a.Query(context.Background(), []string{"q"})
	assert.ErrorIs(t, err, store.ErrNoIndex)
	assert.Empty(t, c.prompts)
}

func TestRun_ReadsQuestions(t *testing.T) {
	a, c, out := newTestApp(t)
	a.SetRetriever(fakeRetriever{results: sources[:1]})
	c.reply = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Query: broken") {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	in := strings.NewReader("first question\n\n   \nbroken\nsecond question\n")
	require.NoError(t, a.Run(context.Background(), in))

	assert.Len(t, c.prompts, 3)
	assert.Contains(t, out.String(), "Prompt: first question")
	assert.Contains(t, out.String(), "Prompt: second question")
	assert.NotContains(t, out.String(), "Prompt: broken")
}

func TestRun_Canceled(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.SetRetriever(fakeRetriever{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.NoError(t, a.Run(ctx, r))
}

func TestTokens(t *testing.T) {
	a, _, out := newTestApp(t)
	path := writeDoc(t, "doc.txt", "twelve bytes")

	n, err := a.Tokens(path)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "12\n", out.String())
}

func TestContext(t *testing.T) {
	a, _, out := newTestApp(t)
	path := writeDoc(t, "story.txt", "Bridgette paints. Tony wears green every day. Theo reads.")

	found, ok, err := a.Context(path, "Tony", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bridgette paints Tony wears green", found)

	_, ok, err = a.Context(path, "Ruthie", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Bridgette paints Tony wears green\nnot found\n", out.String())
}
