package state

import (
	"strings"

	"calscope/internal/domain"
	"calscope/internal/port"
)

const MealKey = "meal-storage"

// MealState is the lookup view-model. NutritionalInfo is session-only;
// History is persisted, most recent first.
type MealState struct {
	NutritionalInfo *domain.MealRecord
	History         []domain.MealRecord
}

type mealPersisted struct {
	History []domain.MealRecord `json:"history"`
}

type MealStore struct {
	store[MealState]
}

func NewMealStore(backend port.Persistence) (*MealStore, error) {
	var p mealPersisted
	if err := hydrate(backend, MealKey, &p); err != nil {
		return nil, err
	}
	s := &MealStore{}
	s.key = MealKey
	s.backend = backend
	s.persist = func(st MealState) any {
		history := st.History
		if history == nil {
			history = []domain.MealRecord{}
		}
		return mealPersisted{History: history}
	}
	s.state.History = p.History
	return s, nil
}

func (s *MealStore) State() MealState {
	st := s.snapshot()
	st.History = append([]domain.MealRecord(nil), st.History...)
	return st
}

// NutritionalInfo returns the most recent lookup of this session.
func (s *MealStore) NutritionalInfo() (domain.MealRecord, bool) {
	st := s.snapshot()
	if st.NutritionalInfo == nil {
		return domain.MealRecord{}, false
	}
	return *st.NutritionalInfo, true
}

func (s *MealStore) History() []domain.MealRecord {
	return append([]domain.MealRecord(nil), s.snapshot().History...)
}

// HistoryDishes returns the distinct lower-cased dish names in History, in
// recency order.
func (s *MealStore) HistoryDishes() []string {
	history := s.snapshot().History
	seen := make(map[string]bool, len(history))
	dishes := make([]string, 0, len(history))
	for _, rec := range history {
		name := strings.ToLower(rec.DishName)
		if seen[name] {
			continue
		}
		seen[name] = true
		dishes = append(dishes, name)
	}
	return dishes
}

func (s *MealStore) SetNutritionalInfo(info domain.MealRecord) error {
	return s.apply(func(st MealState) (MealState, error) {
		st.NutritionalInfo = &info
		return st, nil
	})
}

// SetHistory replaces History wholesale. Callers prepend or clear beforehand.
func (s *MealStore) SetHistory(history []domain.MealRecord) error {
	history = append([]domain.MealRecord(nil), history...)
	return s.apply(func(st MealState) (MealState, error) {
		st.History = history
		return st, nil
	})
}
