package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Format - формат ответа completion API
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json_object"
)

// jsonSuffix дописывается к промпту: json_object требует упоминания json в сообщении
const jsonSuffix = " Respond with json"

// ErrEmptyResponse - API вернул ответ без choices
var ErrEmptyResponse = errors.New("no response from LLM")

// Config - параметры OpenAI-compatible endpoint'а
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client отправляет промпты в /chat/completions
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient создаёт клиента; BaseURL и Model обязательны
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm base url is empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Model возвращает имя модели
func (c *Client) Model() string {
	return c.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type Format `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete отправляет один промпт и возвращает текст первого choice
func (c *Client) Complete(ctx context.Context, prompt string, format Format) (string, error) {
	reqBody := chatRequest{Model: c.cfg.Model}

	content := prompt
	switch format {
	case FormatJSON:
		content += jsonSuffix
	case FormatText, "":
		format = FormatText
	default:
		return "", fmt.Errorf("unknown response format %q", format)
	}
	reqBody.ResponseFormat.Type = format
	reqBody.Messages = []chatMessage{{Role: "user", Content: content}}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return response.Choices[0].Message.Content, nil
}
