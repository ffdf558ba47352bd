package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Factory создаёт chunker на основе метода и типа файла
type Factory struct {
	config Config
}

// NewFactory создаёт фабрику; конфиг проверяется сразу
func NewFactory(config Config) (*Factory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Factory{config: config}, nil
}

// Config возвращает параметры, с которыми создаются chunker'ы
func (f *Factory) Config() Config {
	return f.config
}

// GetChunker возвращает chunker по явно заданному методу, иначе по расширению файла
func (f *Factory) GetChunker(filePath, method string) (Chunker, error) {
	switch strings.ToLower(method) {
	case "", "auto":
	case "markdown", "md":
		return NewMarkdownChunker(f.config), nil
	case "simple", "text", "txt":
		return NewTextChunker(f.config), nil
	default:
		return nil, fmt.Errorf("%w: unknown chunking method %q", ErrInvalidArgument, method)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".md", ".markdown":
		return NewMarkdownChunker(f.config), nil
	default:
		return NewTextChunker(f.config), nil
	}
}

// ChunkWithFallback режет контент выбранным chunker'ом, при ошибке - text chunker'ом
func (f *Factory) ChunkWithFallback(content, filePath, method string) ([]Chunk, error) {
	c, err := f.GetChunker(filePath, method)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(filePath)
	chunks, err := c.Chunk(content, source)
	if err == nil {
		return chunks, nil
	}
	if _, isText := c.(*TextChunker); isText {
		return nil, err
	}

	logFallback(c.Name(), source, err)
	return NewTextChunker(f.config).Chunk(content, source)
}
