package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument - неверный бюджет или конфиг chunker'а
var ErrInvalidArgument = errors.New("invalid argument")

// Chunk представляет единицу текста для векторизации
type Chunk struct {
	ID       string            // Уникальный идентификатор (hash)
	Text     string            // Текст чанка
	Source   string            // Имя исходного файла
	Section  string            // Название секции (заголовок, глава и т.д.)
	Metadata map[string]string // Дополнительные метаданные
}

// Chunker - интерфейс для chunker'ов индексации
type Chunker interface {
	// Chunk разбивает контент на чанки
	Chunk(content, source string) ([]Chunk, error)

	// Name возвращает название chunker'а для логирования
	Name() string
}

// Config содержит общие параметры для chunker'ов
type Config struct {
	MaxChunkSize int // Максимальный размер чанка в символах
	Overlap      int // Размер overlap между чанками
}

// Validate проверяет что окно положительное и overlap меньше окна
func (c Config) Validate() error {
	if c.MaxChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidArgument, c.MaxChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidArgument, c.MaxChunkSize, c.Overlap)
	}
	return nil
}
