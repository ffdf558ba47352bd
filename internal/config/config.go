package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	StorageDir string `env:"STORAGE_DIR" envDefault:"./storage"`

	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string        `env:"LLM_MODEL" envDefault:"gpt-4o"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"5m"`

	EmbedProvider string `env:"EMBED_PROVIDER" envDefault:"openai"`
	EmbedModel    string `env:"EMBED_MODEL" envDefault:"text-embedding-3-small"`
	OllamaURL     string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`

	TokenEncoding string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`
	MaxTokens     int    `env:"MAX_TOKENS" envDefault:"100000"`

	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"200"`
	ChunkMethod  string `env:"CHUNK_METHOD" envDefault:"auto"`

	TopK             int     `env:"TOP_K" envDefault:"2"`
	MinSimilarity    float32 `env:"MIN_SIMILARITY" envDefault:"0"`
	MaxPromptChars   int     `env:"MAX_PROMPT_CHARS" envDefault:"24000"`
	IndexConcurrency int     `env:"INDEX_CONCURRENCY" envDefault:"4"`

	// Вычисляются из StorageDir
	MetadataFile string
	DBFile       string
}

func Init(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	cfg.MetadataFile = filepath.Join(cfg.StorageDir, "metadata.json")
	cfg.DBFile = filepath.Join(cfg.StorageDir, "docs.gob.gz")
	return cfg.Validate()
}

// Validate отсекает бюджеты, с которыми chunker'ы работать не смогут
func (c *Config) Validate() error {
	if c.MaxTokens < 1 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.IndexConcurrency < 1 {
		return fmt.Errorf("INDEX_CONCURRENCY must be positive, got %d", c.IndexConcurrency)
	}
	switch c.EmbedProvider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("EMBED_PROVIDER must be openai or ollama, got %q", c.EmbedProvider)
	}
	return nil
}
