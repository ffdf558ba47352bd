package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/philippgille/chromem-go"
)

// EmbeddingConfig выбирает провайдера эмбеддингов
type EmbeddingConfig struct {
	Provider  string // openai или ollama
	Model     string
	APIKey    string
	OllamaURL string
}

// NewEmbeddingFunc возвращает функцию эмбеддингов chromem для провайдера
func NewEmbeddingFunc(cfg EmbeddingConfig) (chromem.EmbeddingFunc, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for openai embeddings")
		}
		model := chromem.EmbeddingModelOpenAI(cfg.Model)
		if cfg.Model == "" {
			model = chromem.EmbeddingModelOpenAI3Small
		}
		return chromem.NewEmbeddingFuncOpenAI(cfg.APIKey, model), nil
	case "ollama":
		return chromem.NewEmbeddingFuncOllama(cfg.Model, strings.TrimRight(cfg.OllamaURL, "/")+"/api"), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// EnsureOllamaModel проверяет, что Ollama запущена, и при необходимости скачивает модель
func EnsureOllamaModel(ctx context.Context, baseURL, model string) error {
	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not running or not reachable at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama is not reachable at %s: status %d", baseURL, resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to decode ollama tags: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			log.Printf("Model %s is available", model)
			return nil
		}
	}

	log.Printf("Model %s not found, pulling...", model)
	body, _ := json.Marshal(map[string]any{"name": model, "stream": false})
	pullReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	pullReq.Header.Set("Content-Type", "application/json")

	pullResp, err := http.DefaultClient.Do(pullReq)
	if err != nil {
		return fmt.Errorf("failed to pull model %s: %w", model, err)
	}
	defer pullResp.Body.Close()
	if pullResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(pullResp.Body)
		return fmt.Errorf("failed to pull model %s: status %d: %s", model, pullResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	log.Printf("Model %s pulled successfully", model)
	return nil
}
