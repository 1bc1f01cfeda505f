// Package historyindex provides fuzzy search over dishes the user has
// already looked up.
package historyindex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"calscope/internal/domain"
)

// Index is an in-memory Bleve index with one document per distinct
// lower-cased dish name.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

type dishDoc struct {
	Dish     string  `json:"dish"`
	Lookups  int     `json:"lookups"`
	Calories float64 `json:"calories"`
}

// Hit is one matching dish.
type Hit struct {
	Dish    string
	Lookups int
	Score   float64
}

func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	dishMapping := bleve.NewDocumentMapping()

	dishField := bleve.NewTextFieldMapping()
	dishMapping.AddFieldMappingsAt("dish", dishField)

	lookups := bleve.NewNumericFieldMapping()
	lookups.Index = false
	dishMapping.AddFieldMappingsAt("lookups", lookups)

	calories := bleve.NewNumericFieldMapping()
	calories.Index = false
	dishMapping.AddFieldMappingsAt("calories", calories)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("_default", dishMapping)
	return m
}

// Rebuild replaces the index contents with the dishes in history.
func (i *Index) Rebuild(history []domain.MealRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	docs := make(map[string]*dishDoc)
	for _, rec := range history {
		name := strings.ToLower(rec.DishName)
		if name == "" {
			continue
		}
		d, ok := docs[name]
		if !ok {
			// history is most recent first; keep the latest calorie figure.
			d = &dishDoc{Dish: name, Calories: rec.CaloriesPerServing}
			docs[name] = d
		}
		d.Lookups++
	}

	fresh, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	batch := fresh.NewBatch()
	for id, d := range docs {
		if err := batch.Index(id, d); err != nil {
			fresh.Close()
			return fmt.Errorf("failed to index dish %s: %w", id, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("failed to batch index dishes: %w", err)
	}

	old := i.index
	i.index = fresh
	return old.Close()
}

// Search returns dishes matching term by prefix or within one edit, best first.
func (i *Index) Search(term string, limit int) ([]Hit, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(term), limit, 0, false)
	req.Fields = []string{"lookups"}
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Dish: h.ID, Score: h.Score}
		if n, ok := h.Fields["lookups"].(float64); ok {
			hit.Lookups = int(n)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func buildQuery(term string) query.Query {
	match := bleve.NewMatchQuery(term)
	match.SetField("dish")
	match.SetFuzziness(1)

	queries := []query.Query{match}
	for _, word := range strings.Fields(term) {
		prefix := bleve.NewPrefixQuery(word)
		prefix.SetField("dish")
		queries = append(queries, prefix)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}
