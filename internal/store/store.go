// Package store индексирует документы в chromem и ищет по ним с цитатами.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/philippgille/chromem-go"

	"pdf_rag/internal/chunker"
)

const collectionName = "docs"

var (
	// ErrNoIndex - коллекция не создана или пуста
	ErrNoIndex = errors.New("index is empty")
)

// Options - пути и параметры индекса
type Options struct {
	DataDir       string
	MetadataFile  string
	DBFile        string
	ChunkMethod   string
	MinSimilarity float32
	Concurrency   int
}

// Metadata хранит состояние проиндексированных файлов
type Metadata struct {
	Files    map[string]FileInfo `json:"files"`
	DataPath string              `json:"data_path"`
}

// FileInfo - размер и mtime файла на момент индексации
type FileInfo struct {
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
	Chunks       int       `json:"chunks"`
}

// Store - векторный индекс поверх chromem
type Store struct {
	opts     Options
	db       *chromem.DB
	embed    chromem.EmbeddingFunc
	factory  *chunker.Factory
	metadata *Metadata
}

// New создаёт store; вызовите Open перед использованием
func New(opts Options, embed chromem.EmbeddingFunc, factory *chunker.Factory) *Store {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Store{
		opts:     opts,
		db:       chromem.NewDB(),
		embed:    embed,
		factory:  factory,
		metadata: &Metadata{Files: make(map[string]FileInfo)},
	}
}

// Exists сообщает, есть ли сохранённый индекс на диске
func (s *Store) Exists() bool {
	_, err := os.Stat(s.opts.DBFile)
	return err == nil
}

// Open загружает метаданные и сохранённую БД либо создаёт пустую коллекцию
func (s *Store) Open() error {
	if err := s.loadMetadata(); err != nil {
		log.Printf("⚠️  Failed to read metadata, starting over: %v", err)
		s.metadata = &Metadata{Files: make(map[string]FileInfo)}
	}

	absDataDir, err := filepath.Abs(s.opts.DataDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute data dir: %w", err)
	}

	// Индекс другого каталога нам не подходит
	if s.metadata.DataPath != "" && s.metadata.DataPath != absDataDir {
		log.Printf("Data directory changed from %s to %s, invalidating index...", s.metadata.DataPath, absDataDir)
		if err := s.reset(); err != nil {
			return err
		}
	}
	s.metadata.DataPath = absDataDir

	if s.Exists() {
		log.Printf("Loading vector database from: %s", s.opts.DBFile)
		if err := s.db.ImportFromFile(s.opts.DBFile, "", collectionName); err != nil {
			return fmt.Errorf("failed to import DB: %w", err)
		}
	}

	if s.db.GetCollection(collectionName, s.embed) == nil {
		if _, err := s.db.CreateCollection(collectionName, map[string]string{}, s.embed); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	log.Printf("Collection %q: %d chunks from %d files", collectionName, s.Count(), len(s.metadata.Files))
	return nil
}

// Count возвращает число чанков в коллекции
func (s *Store) Count() int {
	coll := s.db.GetCollection(collectionName, s.embed)
	if coll == nil {
		return 0
	}
	return coll.Count()
}

// Files возвращает состояние проиндексированных файлов
func (s *Store) Files() map[string]FileInfo {
	return s.metadata.Files
}

func (s *Store) reset() error {
	s.metadata.Files = make(map[string]FileInfo)
	_ = os.Remove(s.opts.MetadataFile)
	_ = os.Remove(s.opts.DBFile)
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func (s *Store) loadMetadata() error {
	f, err := os.Open(s.opts.MetadataFile)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(s.metadata); err != nil {
		return err
	}
	if s.metadata.Files == nil {
		s.metadata.Files = make(map[string]FileInfo)
	}
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.opts.DBFile), 0755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}
	if err := s.db.ExportToFile(s.opts.DBFile, true, "", collectionName); err != nil {
		return fmt.Errorf("failed to export DB: %w", err)
	}

	f, err := os.Create(s.opts.MetadataFile)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s.metadata)
}
