package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"pdf_rag/internal/chunker"
	"pdf_rag/internal/config"
	"pdf_rag/internal/llm"
	"pdf_rag/internal/store"
	"pdf_rag/internal/tokenizer"
)

// Completer - граница с completion API
type Completer interface {
	Complete(ctx context.Context, prompt string, format llm.Format) (string, error)
}

// Retriever ищет релевантные чанки в индексе
type Retriever interface {
	Query(ctx context.Context, queryText string, topK int) ([]store.SearchResult, error)
}

// App связывает команды с зависимостями. Зависимости создаются лениво,
// чтобы tokens не требовал API ключа, а ask - индекса.
type App struct {
	cfg        *config.Config
	out        io.Writer
	outputPath string

	llm    Completer
	tok    tokenizer.Tokenizer
	index  *store.Store
	finder Retriever
}

func New(cfg *config.Config) *App {
	return &App{cfg: cfg, out: os.Stdout}
}

// SetOutput задаёт, куда печатаются результаты команд
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// SetOutputPath включает сохранение отчёта ask в markdown файл
func (a *App) SetOutputPath(path string) {
	a.outputPath = path
}

// SetCompleter подменяет completion API
func (a *App) SetCompleter(c Completer) {
	a.llm = c
}

// SetTokenizer подменяет токенизатор
func (a *App) SetTokenizer(t tokenizer.Tokenizer) {
	a.tok = t
}

// SetRetriever подменяет векторный поиск
func (a *App) SetRetriever(r Retriever) {
	a.finder = r
}

func (a *App) completer() (Completer, error) {
	if a.llm != nil {
		return a.llm, nil
	}
	c, err := llm.NewClient(llm.Config{
		BaseURL: a.cfg.OpenAIBaseURL,
		APIKey:  a.cfg.OpenAIKey,
		Model:   a.cfg.LLMModel,
		Timeout: a.cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.llm = c
	return c, nil
}

func (a *App) tokenChunker() (*chunker.TokenChunker, error) {
	if a.tok == nil {
		t, err := tokenizer.NewTiktoken(a.cfg.TokenEncoding, tokenizer.DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		a.tok = t
	}
	return chunker.NewTokenChunker(a.tok), nil
}

// openStore открывает индекс, при первом вызове создаёт embedding func
func (a *App) openStore(ctx context.Context) (*store.Store, error) {
	if a.index != nil {
		return a.index, nil
	}

	if a.cfg.EmbedProvider == "ollama" {
		if err := store.EnsureOllamaModel(ctx, a.cfg.OllamaURL, a.cfg.EmbedModel); err != nil {
			return nil, fmt.Errorf("ollama model check failed: %w", err)
		}
	}

	embed, err := store.NewEmbeddingFunc(store.EmbeddingConfig{
		Provider:  a.cfg.EmbedProvider,
		Model:     a.cfg.EmbedModel,
		APIKey:    a.cfg.OpenAIKey,
		OllamaURL: a.cfg.OllamaURL,
	})
	if err != nil {
		return nil, err
	}

	factory, err := chunker.NewFactory(chunker.Config{
		MaxChunkSize: a.cfg.ChunkSize,
		Overlap:      a.cfg.ChunkOverlap,
	})
	if err != nil {
		return nil, err
	}

	s := store.New(store.Options{
		DataDir:       a.cfg.DataDir,
		MetadataFile:  a.cfg.MetadataFile,
		DBFile:        a.cfg.DBFile,
		ChunkMethod:   a.cfg.ChunkMethod,
		MinSimilarity: a.cfg.MinSimilarity,
		Concurrency:   a.cfg.IndexConcurrency,
	}, embed, factory)
	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	log.Printf("Data directory: %s", a.cfg.DataDir)
	a.index = s
	return s, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
