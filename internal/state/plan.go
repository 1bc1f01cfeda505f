package state

import (
	"calscope/internal/domain"
	"calscope/internal/port"
)

const PlanKey = "meal-plans-storage"

type PlanState struct {
	Plans []domain.MealPlan `json:"plans"`
}

// PlanStore holds the weekly meal plans. The whole state is persisted.
type PlanStore struct {
	store[PlanState]
}

func NewPlanStore(backend port.Persistence) (*PlanStore, error) {
	var p PlanState
	if err := hydrate(backend, PlanKey, &p); err != nil {
		return nil, err
	}
	s := &PlanStore{}
	s.key = PlanKey
	s.backend = backend
	s.persist = func(st PlanState) any {
		if st.Plans == nil {
			return PlanState{Plans: []domain.MealPlan{}}
		}
		return st
	}
	s.state = p
	return s, nil
}

// Plans returns copies of every plan, oldest first.
func (s *PlanStore) Plans() []domain.MealPlan {
	plans := s.snapshot().Plans
	out := make([]domain.MealPlan, len(plans))
	for i, p := range plans {
		out[i] = p.Clone()
	}
	return out
}

func (s *PlanStore) Plan(id string) (domain.MealPlan, bool) {
	for _, p := range s.snapshot().Plans {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.MealPlan{}, false
}

func (s *PlanStore) AddPlan(plan domain.MealPlan) error {
	plan = plan.Clone()
	return s.apply(func(st PlanState) (PlanState, error) {
		plans, err := addPlan(st.Plans, plan)
		return PlanState{Plans: plans}, err
	})
}

// UpdatePlan merges patch into the plan with the given id. Unknown ids are
// a no-op.
func (s *PlanStore) UpdatePlan(id string, patch domain.PlanPatch) error {
	return s.apply(func(st PlanState) (PlanState, error) {
		plans, err := updatePlan(st.Plans, id, patch)
		return PlanState{Plans: plans}, err
	})
}

func (s *PlanStore) DeletePlan(id string) error {
	return s.apply(func(st PlanState) (PlanState, error) {
		return PlanState{Plans: deletePlan(st.Plans, id)}, nil
	})
}

// AddMealToPlan appends meal to one day of a plan. Unknown plan ids are a
// no-op.
func (s *PlanStore) AddMealToPlan(planID string, day domain.Weekday, meal domain.PlanMeal) error {
	return s.apply(func(st PlanState) (PlanState, error) {
		plans, err := addMeal(st.Plans, planID, day, meal)
		return PlanState{Plans: plans}, err
	})
}

func (s *PlanStore) RemoveMealFromPlan(planID string, day domain.Weekday, mealID string) error {
	return s.apply(func(st PlanState) (PlanState, error) {
		plans, err := removeMeal(st.Plans, planID, day, mealID)
		return PlanState{Plans: plans}, err
	})
}
