package store

import (
	"context"
	"fmt"
)

// SearchResult - результат векторного поиска
type SearchResult struct {
	Content    string
	Section    string
	Source     string
	Page       string
	Similarity float32
}

// Citation форматирует источник как "file - page N"
func (r SearchResult) Citation() string {
	return fmt.Sprintf("%s - page %s", r.Source, r.Page)
}

// Query возвращает topK ближайших чанков, отсекая слабее MinSimilarity
func (s *Store) Query(ctx context.Context, queryText string, topK int) ([]SearchResult, error) {
	coll := s.db.GetCollection(collectionName, s.embed)
	if coll == nil || coll.Count() == 0 {
		return nil, ErrNoIndex
	}

	// chromem не даёт запросить больше результатов, чем документов в коллекции
	n := min(topK, coll.Count())
	if n < 1 {
		n = 1
	}

	results, err := coll.Query(ctx, queryText, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var searchResults []SearchResult
	for _, r := range results {
		if r.Similarity < s.opts.MinSimilarity {
			continue
		}

		searchResults = append(searchResults, SearchResult{
			Content:    r.Content,
			Section:    r.Metadata["section"],
			Source:     r.Metadata["file_name"],
			Page:       r.Metadata["page_label"],
			Similarity: r.Similarity,
		})
	}

	return searchResults, nil
}
