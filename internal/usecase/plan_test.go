package usecase

import (
	"errors"
	"testing"
	"time"

	"calscope/internal/domain"
)

func TestNewPlan(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	p, err := NewPlan("  Cut  ", "lean week", 1800, now)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if p.ID == "" || p.Name != "Cut" || p.CreatedAt != "2025-03-04T05:06:07Z" {
		t.Errorf("unexpected plan: %+v", p)
	}
	if len(p.Days) != 7 {
		t.Errorf("expected 7 days, got %d", len(p.Days))
	}
	for _, d := range domain.Weekdays {
		if meals, ok := p.Days[d]; !ok || meals == nil || len(meals) != 0 {
			t.Errorf("%s should be an empty list", d)
		}
	}

	q, _ := NewPlan("Other", "", 2000, now)
	if q.ID == p.ID {
		t.Error("ids should be unique")
	}

	if _, err := NewPlan(" ", "", 1800, now); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NewPlan("x", "", 0, now); !errors.Is(err, ErrInvalidGoal) {
		t.Errorf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestNewMeal(t *testing.T) {
	m, err := NewMeal("Oats", 350, domain.Breakfast)
	if err != nil {
		t.Fatalf("NewMeal failed: %v", err)
	}
	if m.ID == "" || m.Calories != 350 {
		t.Errorf("unexpected meal: %+v", m)
	}

	for _, tc := range []struct {
		name     string
		calories int
		at       domain.MealTime
		want     error
	}{
		{"", 100, domain.Lunch, ErrEmptyName},
		{"soup", 0, domain.Lunch, ErrInvalidCalories},
		{"soup", 100, "brunch", ErrInvalidMealTime},
	} {
		if _, err := NewMeal(tc.name, tc.calories, tc.at); !errors.Is(err, tc.want) {
			t.Errorf("NewMeal(%q, %d, %q): expected %v, got %v", tc.name, tc.calories, tc.at, tc.want, err)
		}
	}
}

func TestComputePlanStats(t *testing.T) {
	p := domain.MealPlan{
		DailyCalorieGoal: 2000,
		Days: map[domain.Weekday][]domain.PlanMeal{
			domain.Monday: {
				{ID: "1", Calories: 1500},
				{ID: "2", Calories: 1000},
			},
			domain.Wednesday: {{ID: "3", Calories: 500}},
		},
	}
	st := ComputePlanStats(p)
	if st.TotalMeals != 3 || st.TotalCalories != 3000 {
		t.Errorf("unexpected totals: %+v", st)
	}
	if st.AvgDaily != 429 {
		t.Errorf("expected avg 429, got %d", st.AvgDaily)
	}
	if len(st.Days) != 7 || st.Days[0].Day != domain.Monday {
		t.Fatalf("unexpected day order: %+v", st.Days)
	}
	mon := st.Days[0]
	if mon.Calories != 2500 || mon.Progress != 100 || !mon.OverGoal {
		t.Errorf("unexpected Monday stats: %+v", mon)
	}
	wed := st.Days[2]
	if wed.Progress != 25 || wed.OverGoal {
		t.Errorf("unexpected Wednesday stats: %+v", wed)
	}
}
