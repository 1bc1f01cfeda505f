package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"calscope/internal/port"
)

// SuggestOptions bounds the suggestion fetch.
type SuggestOptions struct {
	MinQueryLen       int // Terms shorter than this never reach the network
	RawLimit          int // Results requested from the catalog
	MaxSuggestions    int
	MaxDescriptionLen int // Descriptions this long or longer are dropped
}

func DefaultSuggestOptions() SuggestOptions {
	return SuggestOptions{
		MinQueryLen:       2,
		RawLimit:          20,
		MaxSuggestions:    10,
		MaxDescriptionLen: 100,
	}
}

// SuggestionFetcher turns a settled query into lower-cased dish suggestions
// from the food catalog.
type SuggestionFetcher struct {
	searcher port.FoodSearcher
	opts     SuggestOptions
}

func NewSuggestionFetcher(searcher port.FoodSearcher, opts SuggestOptions) *SuggestionFetcher {
	return &SuggestionFetcher{searcher: searcher, opts: opts}
}

// Fetch never fails: catalog errors are logged and yield no suggestions.
func (f *SuggestionFetcher) Fetch(ctx context.Context, term string) []string {
	if utf8.RuneCountInString(term) < f.opts.MinQueryLen {
		return nil
	}

	foods, err := f.searcher.SearchFoods(ctx, term, f.opts.RawLimit)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Warning: food search for %q failed: %v", term, err)
		}
		return nil
	}

	needle := strings.ToLower(term)
	seen := make(map[string]bool, len(foods))
	out := make([]string, 0, f.opts.MaxSuggestions)
	for _, food := range foods {
		desc := strings.ToLower(food.Description)
		if utf8.RuneCountInString(desc) >= f.opts.MaxDescriptionLen {
			continue
		}
		if !strings.Contains(desc, needle) || seen[desc] {
			continue
		}
		seen[desc] = true
		out = append(out, desc)
		if len(out) == f.opts.MaxSuggestions {
			break
		}
	}
	return out
}
