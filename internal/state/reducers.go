package state

import (
	"calscope/internal/domain"
)

// The plan reducers never mutate their input. A touched plan gets a fresh
// day map; untouched days keep sharing their slices with the previous state.

func checkDays(days map[domain.Weekday][]domain.PlanMeal) error {
	for day, meals := range days {
		if !day.Valid() {
			return domain.ErrInvalidDay
		}
		seen := make(map[string]bool, len(meals))
		for _, m := range meals {
			if seen[m.ID] {
				return domain.ErrDuplicateMeal
			}
			seen[m.ID] = true
		}
	}
	return nil
}

func addPlan(plans []domain.MealPlan, plan domain.MealPlan) ([]domain.MealPlan, error) {
	for _, p := range plans {
		if p.ID == plan.ID {
			return plans, domain.ErrDuplicatePlan
		}
	}
	if err := checkDays(plan.Days); err != nil {
		return plans, err
	}
	out := make([]domain.MealPlan, 0, len(plans)+1)
	out = append(out, plans...)
	return append(out, plan), nil
}

func indexOf(plans []domain.MealPlan, id string) int {
	for i, p := range plans {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// replaceAt returns a copy of plans with the i-th element swapped for p.
func replaceAt(plans []domain.MealPlan, i int, p domain.MealPlan) []domain.MealPlan {
	out := append([]domain.MealPlan(nil), plans...)
	out[i] = p
	return out
}

func copyDays(days map[domain.Weekday][]domain.PlanMeal) map[domain.Weekday][]domain.PlanMeal {
	out := make(map[domain.Weekday][]domain.PlanMeal, len(days))
	for d, meals := range days {
		out[d] = meals
	}
	return out
}

func updatePlan(plans []domain.MealPlan, id string, patch domain.PlanPatch) ([]domain.MealPlan, error) {
	i := indexOf(plans, id)
	if i < 0 {
		return plans, nil
	}
	if err := checkDays(patch.Days); err != nil {
		return plans, err
	}
	p := plans[i]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.DailyCalorieGoal != nil {
		p.DailyCalorieGoal = *patch.DailyCalorieGoal
	}
	if patch.Days != nil {
		p.Days = copyDays(p.Days)
		for d, meals := range patch.Days {
			p.Days[d] = append([]domain.PlanMeal(nil), meals...)
		}
	}
	return replaceAt(plans, i, p), nil
}

func deletePlan(plans []domain.MealPlan, id string) []domain.MealPlan {
	out := make([]domain.MealPlan, 0, len(plans))
	for _, p := range plans {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func addMeal(plans []domain.MealPlan, planID string, day domain.Weekday, meal domain.PlanMeal) ([]domain.MealPlan, error) {
	if !day.Valid() {
		return plans, domain.ErrInvalidDay
	}
	i := indexOf(plans, planID)
	if i < 0 {
		return plans, nil
	}
	p := plans[i]
	for _, m := range p.Days[day] {
		if m.ID == meal.ID {
			return plans, domain.ErrDuplicateMeal
		}
	}
	p.Days = copyDays(p.Days)
	meals := make([]domain.PlanMeal, 0, len(plans[i].Days[day])+1)
	meals = append(meals, plans[i].Days[day]...)
	p.Days[day] = append(meals, meal)
	return replaceAt(plans, i, p), nil
}

func removeMeal(plans []domain.MealPlan, planID string, day domain.Weekday, mealID string) ([]domain.MealPlan, error) {
	if !day.Valid() {
		return plans, domain.ErrInvalidDay
	}
	i := indexOf(plans, planID)
	if i < 0 {
		return plans, nil
	}
	p := plans[i]
	meals := make([]domain.PlanMeal, 0, len(p.Days[day]))
	for _, m := range p.Days[day] {
		if m.ID != mealID {
			meals = append(meals, m)
		}
	}
	p.Days = copyDays(p.Days)
	p.Days[day] = meals
	return replaceAt(plans, i, p), nil
}
