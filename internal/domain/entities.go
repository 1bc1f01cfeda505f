package domain

import (
	"errors"
	"math"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidDay       = errors.New("invalid weekday")
	ErrDuplicatePlan    = errors.New("plan id already exists")
	ErrDuplicateMeal    = errors.New("meal id already exists in day")
	ErrPlanNotFound     = errors.New("plan not found")
)

// MealRecord is one completed calorie lookup. Values are taken verbatim
// from the calorie-lookup collaborator.
type MealRecord struct {
	DishName           string  `json:"dish_name"`
	Servings           int     `json:"servings"`
	CaloriesPerServing float64 `json:"calories_per_serving"`
	TotalCalories      float64 `json:"total_calories"`
	Source             string  `json:"source"`
}

// Consistent reports whether TotalCalories matches CaloriesPerServing x Servings.
// It is informational only; records are never recomputed.
func (m MealRecord) Consistent() bool {
	return math.Abs(m.CaloriesPerServing*float64(m.Servings)-m.TotalCalories) < 0.5
}

type FoodItem struct {
	FdcID       int    `json:"fdcId"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
	BrandOwner  string `json:"brandOwner,omitempty"`
}

type SuggestionSource string

const (
	SourceHistory SuggestionSource = "history"
	SourceRemote  SuggestionSource = "remote"
)

type Suggestion struct {
	Text   string           `json:"text"`
	Source SuggestionSource `json:"source"`
}

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the canonical plan days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Dinner    MealTime = "dinner"
	Snack     MealTime = "snack"
)

func (t MealTime) Valid() bool {
	switch t {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

type PlanMeal struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Calories int      `json:"calories"`
	Time     MealTime `json:"time"`
}

type MealPlan struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	DailyCalorieGoal int                    `json:"dailyCalorieGoal"`
	Days             map[Weekday][]PlanMeal `json:"days"`
	CreatedAt        string                 `json:"createdAt"`
}

// Clone returns a copy that shares no slices or maps with p.
func (p MealPlan) Clone() MealPlan {
	out := p
	out.Days = make(map[Weekday][]PlanMeal, len(p.Days))
	for day, meals := range p.Days {
		out.Days[day] = append([]PlanMeal(nil), meals...)
	}
	return out
}

// PlanPatch holds the fields of a partial plan update. Nil fields are left unchanged.
type PlanPatch struct {
	Name             *string
	Description      *string
	DailyCalorieGoal *int
	Days             map[Weekday][]PlanMeal
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=20"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"min=2"`
	LastName  string `json:"lastName" validate:"min=2"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"min=8,max=20"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type LookupRequest struct {
	DishName string `json:"dish_name" validate:"min=2"`
	Servings int    `json:"servings" validate:"min=1,max=20"`
}
