package usecase

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"calscope/internal/domain"
)

var (
	ErrEmptyName       = errors.New("name is required")
	ErrInvalidCalories = errors.New("calories must be greater than 0")
	ErrInvalidMealTime = errors.New("time must be breakfast, lunch, dinner or snack")
	ErrInvalidGoal     = errors.New("daily calorie goal must be greater than 0")
)

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// NewPlan builds an empty weekly plan. The id is time-ordered and createdAt
// is taken from now.
func NewPlan(name, description string, dailyGoal int, now time.Time) (domain.MealPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.MealPlan{}, ErrEmptyName
	}
	if dailyGoal <= 0 {
		return domain.MealPlan{}, ErrInvalidGoal
	}
	id, err := newID()
	if err != nil {
		return domain.MealPlan{}, err
	}
	days := make(map[domain.Weekday][]domain.PlanMeal, len(domain.Weekdays))
	for _, d := range domain.Weekdays {
		days[d] = []domain.PlanMeal{}
	}
	return domain.MealPlan{
		ID:               id,
		Name:             name,
		Description:      description,
		DailyCalorieGoal: dailyGoal,
		Days:             days,
		CreatedAt:        now.UTC().Format(time.RFC3339),
	}, nil
}

func NewMeal(name string, calories int, at domain.MealTime) (domain.PlanMeal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.PlanMeal{}, ErrEmptyName
	}
	if calories <= 0 {
		return domain.PlanMeal{}, ErrInvalidCalories
	}
	if !at.Valid() {
		return domain.PlanMeal{}, ErrInvalidMealTime
	}
	id, err := newID()
	if err != nil {
		return domain.PlanMeal{}, err
	}
	return domain.PlanMeal{ID: id, Name: name, Calories: calories, Time: at}, nil
}

// DayStats summarises one plan day against the daily goal.
type DayStats struct {
	Day      domain.Weekday
	Meals    int
	Calories int
	Progress int // Percent of goal, capped at 100
	OverGoal bool
}

type PlanStats struct {
	TotalMeals    int
	TotalCalories int
	AvgDaily      int
	Days          []DayStats // Monday first
}

func ComputePlanStats(p domain.MealPlan) PlanStats {
	var st PlanStats
	for _, day := range domain.Weekdays {
		ds := DayStats{Day: day}
		for _, m := range p.Days[day] {
			ds.Meals++
			ds.Calories += m.Calories
		}
		if p.DailyCalorieGoal > 0 {
			ds.Progress = min(ds.Calories*100/p.DailyCalorieGoal, 100)
			ds.OverGoal = ds.Calories > p.DailyCalorieGoal
		}
		st.TotalMeals += ds.Meals
		st.TotalCalories += ds.Calories
		st.Days = append(st.Days, ds)
	}
	st.AvgDaily = int(math.Round(float64(st.TotalCalories) / float64(len(domain.Weekdays))))
	return st
}
