package app

import (
	"context"
	"log"

	"pdf_rag/internal/store"
)

// Index строит индекс, если его ещё нет; с force - перестраивает
func (a *App) Index(ctx context.Context, force bool) (store.IndexStats, error) {
	s, err := a.openStore(ctx)
	if err != nil {
		return store.IndexStats{}, err
	}

	stats, err := s.Index(ctx, force)
	if err != nil {
		return stats, err
	}

	a.printf("Indexed %d files (%d chunks), %d unchanged, %d removed\n",
		stats.Indexed, stats.Chunks, stats.Skipped, stats.Removed)
	return stats, nil
}

// retriever возвращает поиск; при отсутствии индекса на диске сначала индексирует
func (a *App) retriever(ctx context.Context) (Retriever, error) {
	if a.finder != nil {
		return a.finder, nil
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Exists() {
		log.Printf("No index found at %s, indexing %s first", a.cfg.DBFile, a.cfg.DataDir)
		if _, err := s.Index(ctx, false); err != nil {
			return nil, err
		}
	}

	a.finder = s
	return s, nil
}
