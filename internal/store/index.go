package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"

	"pdf_rag/internal/extract"
)

// IndexStats - итог одного прохода индексации
type IndexStats struct {
	Indexed int
	Skipped int
	Removed int
	Chunks  int
}

type pendingFile struct {
	rel  string
	path string
	info fs.FileInfo
	docs []chromem.Document
}

// Index обходит DataDir и добавляет новые и изменённые файлы в коллекцию.
// С force индекс строится заново.
func (s *Store) Index(ctx context.Context, force bool) (IndexStats, error) {
	var stats IndexStats

	if force {
		log.Printf("Force reindexing enabled, clearing existing metadata and collection")
		if err := s.reset(); err != nil {
			return stats, err
		}
	}

	coll, err := s.db.GetOrCreateCollection(collectionName, map[string]string{}, s.embed)
	if err != nil {
		return stats, fmt.Errorf("failed to create collection: %w", err)
	}

	pending, seen, err := s.scan()
	if err != nil {
		return stats, err
	}
	stats.Skipped = len(seen) - len(pending)

	// Файлы, удалённые из каталога, убираем из индекса
	for rel := range s.metadata.Files {
		if seen[rel] {
			continue
		}
		if err := coll.Delete(ctx, map[string]string{"file_path": rel}, nil); err != nil {
			return stats, fmt.Errorf("failed to drop chunks of %s: %w", rel, err)
		}
		delete(s.metadata.Files, rel)
		stats.Removed++
		log.Printf("🗑️  Removed file from index: %s", rel)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, p := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := s.load(p.path, p.rel)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", p.rel, err)
			}
			p.docs = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for _, p := range pending {
		if _, known := s.metadata.Files[p.rel]; known {
			if err := coll.Delete(ctx, map[string]string{"file_path": p.rel}, nil); err != nil {
				return stats, fmt.Errorf("failed to drop old chunks of %s: %w", p.rel, err)
			}
		}

		if len(p.docs) > 0 {
			if err := coll.AddDocuments(ctx, p.docs, runtime.NumCPU()); err != nil {
				return stats, fmt.Errorf("failed to add %s: %w", p.rel, err)
			}
		}

		s.metadata.Files[p.rel] = FileInfo{
			Path:         p.rel,
			LastModified: p.info.ModTime(),
			Size:         p.info.Size(),
			Chunks:       len(p.docs),
		}
		stats.Indexed++
		stats.Chunks += len(p.docs)
		log.Printf("📦 Indexed file: %s (%d chunks)", p.rel, len(p.docs))
	}

	if err := s.save(); err != nil {
		return stats, fmt.Errorf("failed to save index: %w", err)
	}

	log.Printf("✅ Indexed %d files (%d chunks), skipped %d unchanged, removed %d",
		stats.Indexed, stats.Chunks, stats.Skipped, stats.Removed)
	return stats, nil
}

// scan ищет поддерживаемые файлы, которых нет в метаданных или которые изменились.
// Второе значение - все найденные файлы.
func (s *Store) scan() ([]*pendingFile, map[string]bool, error) {
	var pending []*pendingFile
	seen := make(map[string]bool)

	err := filepath.WalkDir(s.opts.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !extract.SupportedFile(path) {
			log.Printf("Skipping unsupported file: %s", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.opts.DataDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true

		known, exists := s.metadata.Files[rel]
		if exists && known.LastModified.Equal(info.ModTime()) && known.Size == info.Size() {
			return nil
		}

		pending = append(pending, &pendingFile{rel: rel, path: path, info: info})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk data directory: %w", err)
	}
	return pending, seen, nil
}

// load режет файл на чанки постранично и превращает их в документы chromem
func (s *Store) load(path, rel string) ([]chromem.Document, error) {
	pages, err := extract.Pages(path)
	if err != nil {
		return nil, err
	}

	var docs []chromem.Document
	for _, page := range pages {
		chunks, err := s.factory.ChunkWithFallback(page.Text, path, s.opts.ChunkMethod)
		if err != nil {
			return nil, err
		}

		label := strconv.Itoa(page.Number)
		for i, ch := range chunks {
			metadata := map[string]string{
				"file_name":  filepath.Base(path),
				"file_path":  rel,
				"page_label": label,
				"section":    ch.Section,
				"chunk_num":  strconv.Itoa(i + 1),
			}
			for k, v := range ch.Metadata {
				if _, taken := metadata[k]; !taken {
					metadata[k] = v
				}
			}

			docs = append(docs, chromem.Document{
				ID:       docID(rel, label, i, ch.ID),
				Metadata: metadata,
				Content:  ch.Text,
			})
		}
	}
	return docs, nil
}

func docID(rel, page string, n int, chunkID string) string {
	hash := sha256.Sum256([]byte(rel + "\x00" + page + "\x00" + strconv.Itoa(n) + "\x00" + chunkID))
	return fmt.Sprintf("%x", hash[:8])
}
