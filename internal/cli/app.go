package cli

import (
	"fmt"
	"time"

	"calscope/config"
	"calscope/internal/adapter/cache"
	"calscope/internal/adapter/calorieapi"
	"calscope/internal/adapter/memstore"
	"calscope/internal/adapter/sqlstore"
	"calscope/internal/adapter/store"
	"calscope/internal/adapter/usda"
	"calscope/internal/port"
	"calscope/internal/state"
	"calscope/internal/usecase"
)

// app bundles the persistence backend and the stores hydrated from it.
type app struct {
	backend port.Persistence
	path    string
	auth    *state.AuthStore
	meals   *state.MealStore
	plans   *state.PlanStore
}

func openPersistence(cfg *config.Config, dir string) (port.Persistence, string, error) {
	driver := cfg.Storage.Driver
	if driver == "memory" {
		return memstore.NewMemoryStore(), "", nil
	}

	path := cfg.Storage.Path
	if path == "" {
		if err := config.EnsureStateDir(dir); err != nil {
			return nil, "", fmt.Errorf("failed to create .calscope directory: %w", err)
		}
		path = config.StateDBPath(dir, driver)
	}

	switch driver {
	case "sqlite":
		st, err := sqlstore.New(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open state store: %w", err)
		}
		return st, path, nil
	default:
		st, err := store.NewBoltStore(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open state store: %w", err)
		}
		return st, path, nil
	}
}

func openApp() (*app, error) {
	backend, path, err := openPersistence(GetConfig(), GetRootDir())
	if err != nil {
		return nil, err
	}

	a := &app{backend: backend, path: path}
	if a.auth, err = state.NewAuthStore(backend); err != nil {
		backend.Close()
		return nil, err
	}
	if a.meals, err = state.NewMealStore(backend); err != nil {
		backend.Close()
		return nil, err
	}
	if a.plans, err = state.NewPlanStore(backend); err != nil {
		backend.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

func (a *app) authUseCase() *usecase.AuthUseCase {
	cfg := GetConfig()
	return usecase.NewAuthUseCase(calorieapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout), a.auth)
}

// requireAuth clears an expired token and fails unless a usable one remains.
func (a *app) requireAuth() error {
	if !a.authUseCase().Guard(time.Now()) {
		return fmt.Errorf("not logged in or session expired; run 'calscope login'")
	}
	return nil
}

func newFoodSearcher(cfg *config.Config) port.FoodSearcher {
	var searcher port.FoodSearcher = usda.NewClient(cfg.USDA.APIKeyEnv, cfg.USDA.BaseURL, cfg.USDA.Timeout)
	if cfg.Autocomplete.CacheSize > 0 {
		searcher = cache.NewCachedSearcher(searcher, cache.NewSearchCache(cfg.Autocomplete.CacheSize, cfg.Autocomplete.CacheTTL))
	}
	return searcher
}

func newSuggestionFetcher(cfg *config.Config) *usecase.SuggestionFetcher {
	return usecase.NewSuggestionFetcher(newFoodSearcher(cfg), usecase.SuggestOptions{
		MinQueryLen:       cfg.Autocomplete.MinQueryLen,
		RawLimit:          cfg.Autocomplete.RawLimit,
		MaxSuggestions:    cfg.Autocomplete.MaxSuggestions,
		MaxDescriptionLen: cfg.Autocomplete.MaxDescriptionLen,
	})
}

func newCoordinator(cfg *config.Config, history usecase.HistorySource) *usecase.Coordinator {
	return usecase.NewCoordinator(newSuggestionFetcher(cfg), history, usecase.CoordinatorOptions{
		Delay:       cfg.Debounce(),
		MinQueryLen: cfg.Autocomplete.MinQueryLen,
	})
}
