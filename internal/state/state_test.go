package state

import (
	"encoding/json"
	"errors"
	"testing"

	"calscope/internal/adapter/memstore"
	"calscope/internal/domain"
)

type failingBackend struct {
	*memstore.MemoryStore
}

func (failingBackend) Save(string, []byte) error { return errors.New("disk full") }

func TestAuthStoreRoundTrip(t *testing.T) {
	backend := memstore.NewMemoryStore()
	auth, err := NewAuthStore(backend)
	if err != nil {
		t.Fatalf("NewAuthStore failed: %v", err)
	}
	if _, ok := auth.Token(); ok {
		t.Fatal("new store should be unauthenticated")
	}
	if err := auth.SetAuth("tok-1"); err != nil {
		t.Fatalf("SetAuth failed: %v", err)
	}

	reloaded, err := NewAuthStore(backend)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if tok, ok := reloaded.Token(); !ok || tok != "tok-1" {
		t.Errorf("expected tok-1 after reload, got %q (%v)", tok, ok)
	}

	if err := reloaded.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	raw, _, _ := backend.Load(AuthKey)
	var env struct {
		State struct {
			Token *string `json:"token"`
		} `json:"state"`
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("persisted entry is not json: %v", err)
	}
	if env.State.Token != nil {
		t.Errorf("expected null token after logout, got %q", *env.State.Token)
	}
}

func TestMealStoreHistoryPersistsButResultDoesNot(t *testing.T) {
	backend := memstore.NewMemoryStore()
	meals, err := NewMealStore(backend)
	if err != nil {
		t.Fatalf("NewMealStore failed: %v", err)
	}
	rec := domain.MealRecord{DishName: "chicken biryani", Servings: 2, CaloriesPerServing: 280, TotalCalories: 560, Source: "USDA"}
	if err := meals.SetNutritionalInfo(rec); err != nil {
		t.Fatalf("SetNutritionalInfo failed: %v", err)
	}
	if err := meals.SetHistory([]domain.MealRecord{rec}); err != nil {
		t.Fatalf("SetHistory failed: %v", err)
	}

	reloaded, err := NewMealStore(backend)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	history := reloaded.History()
	if len(history) != 1 || history[0] != rec {
		t.Errorf("history not restored: %+v", history)
	}
	if _, ok := reloaded.NutritionalInfo(); ok {
		t.Error("nutritional info should not survive a reload")
	}
	if got := backend.Saves(MealKey); got != 2 {
		t.Errorf("expected 2 saves, got %d", got)
	}
}

func TestMealStoreHistoryDishes(t *testing.T) {
	meals, _ := NewMealStore(memstore.NewMemoryStore())
	meals.SetHistory([]domain.MealRecord{
		{DishName: "Chicken Biryani"},
		{DishName: "rice"},
		{DishName: "chicken biryani"},
	})
	got := meals.HistoryDishes()
	if len(got) != 2 || got[0] != "chicken biryani" || got[1] != "rice" {
		t.Errorf("unexpected dishes: %v", got)
	}
}

func TestCorruptEntryFallsBackToDefaults(t *testing.T) {
	backend := memstore.NewMemoryStore()
	backend.Save(PlanKey, []byte("{not json"))
	plans, err := NewPlanStore(backend)
	if err != nil {
		t.Fatalf("NewPlanStore failed: %v", err)
	}
	if len(plans.Plans()) != 0 {
		t.Error("expected no plans from corrupt entry")
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	meals, _ := NewMealStore(failingBackend{memstore.NewMemoryStore()})
	err := meals.SetHistory([]domain.MealRecord{{DishName: "rice"}})
	if err == nil {
		t.Fatal("expected save error")
	}
	if len(meals.History()) != 1 {
		t.Error("in-memory state should keep the mutation")
	}
}

func TestSubscribe(t *testing.T) {
	auth, _ := NewAuthStore(memstore.NewMemoryStore())
	var got []string
	unsubscribe := auth.Subscribe(func(s AuthState) { got = append(got, s.Token) })

	auth.SetAuth("a")
	unsubscribe()
	unsubscribe()
	auth.SetAuth("b")

	if len(got) != 1 || got[0] != "a" {
		t.Errorf("unexpected notifications: %v", got)
	}
}

func newPlan(id string) domain.MealPlan {
	return domain.MealPlan{
		ID:               id,
		Name:             "Week " + id,
		DailyCalorieGoal: 2000,
		Days: map[domain.Weekday][]domain.PlanMeal{
			domain.Monday:  {{ID: "m1", Name: "oats", Calories: 300, Time: domain.Breakfast}},
			domain.Tuesday: {},
		},
	}
}

func TestPlanStoreAddAndDuplicate(t *testing.T) {
	backend := memstore.NewMemoryStore()
	plans, _ := NewPlanStore(backend)
	if err := plans.AddPlan(newPlan("p1")); err != nil {
		t.Fatalf("AddPlan failed: %v", err)
	}
	if err := plans.AddPlan(newPlan("p1")); !errors.Is(err, domain.ErrDuplicatePlan) {
		t.Errorf("expected ErrDuplicatePlan, got %v", err)
	}

	bad := newPlan("p2")
	bad.Days["Funday"] = nil
	if err := plans.AddPlan(bad); !errors.Is(err, domain.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}

	reloaded, _ := NewPlanStore(backend)
	got := reloaded.Plans()
	if len(got) != 1 || got[0].ID != "p1" || len(got[0].Days[domain.Monday]) != 1 {
		t.Errorf("plans not restored: %+v", got)
	}
}

func TestPlanStoreAddRemoveMealRestoresDay(t *testing.T) {
	plans, _ := NewPlanStore(memstore.NewMemoryStore())
	plans.AddPlan(newPlan("p1"))
	before, _ := plans.Plan("p1")

	meal := domain.PlanMeal{ID: "m2", Name: "salad", Calories: 400, Time: domain.Lunch}
	if err := plans.AddMealToPlan("p1", domain.Monday, meal); err != nil {
		t.Fatalf("AddMealToPlan failed: %v", err)
	}
	if err := plans.AddMealToPlan("p1", domain.Monday, meal); !errors.Is(err, domain.ErrDuplicateMeal) {
		t.Errorf("expected ErrDuplicateMeal, got %v", err)
	}
	if err := plans.AddMealToPlan("p1", "Funday", meal); !errors.Is(err, domain.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
	mid, _ := plans.Plan("p1")
	if len(mid.Days[domain.Monday]) != 2 {
		t.Fatalf("expected 2 Monday meals, got %d", len(mid.Days[domain.Monday]))
	}
	if len(before.Days[domain.Monday]) != 1 {
		t.Error("earlier snapshot was mutated")
	}

	if err := plans.RemoveMealFromPlan("p1", domain.Monday, "m2"); err != nil {
		t.Fatalf("RemoveMealFromPlan failed: %v", err)
	}
	after, _ := plans.Plan("p1")
	if len(after.Days[domain.Monday]) != 1 || after.Days[domain.Monday][0].ID != "m1" {
		t.Errorf("Monday not restored: %+v", after.Days[domain.Monday])
	}
	if _, ok := after.Days[domain.Tuesday]; !ok {
		t.Error("sibling day was dropped")
	}
}

func TestPlanStoreUpdatePartial(t *testing.T) {
	plans, _ := NewPlanStore(memstore.NewMemoryStore())
	plans.AddPlan(newPlan("p1"))
	plans.AddPlan(newPlan("p2"))

	goal := 1800
	if err := plans.UpdatePlan("p1", domain.PlanPatch{DailyCalorieGoal: &goal}); err != nil {
		t.Fatalf("UpdatePlan failed: %v", err)
	}
	p1, _ := plans.Plan("p1")
	if p1.DailyCalorieGoal != 1800 || p1.Name != "Week p1" || len(p1.Days[domain.Monday]) != 1 {
		t.Errorf("partial update changed other fields: %+v", p1)
	}
	p2, _ := plans.Plan("p2")
	if p2.DailyCalorieGoal != 2000 {
		t.Error("update leaked into another plan")
	}

	name := "ignored"
	if err := plans.UpdatePlan("missing", domain.PlanPatch{Name: &name}); err != nil {
		t.Errorf("unknown id should be a no-op, got %v", err)
	}
	for _, p := range plans.Plans() {
		if p.Name == "ignored" {
			t.Error("unknown id modified a plan")
		}
	}
}

func TestPlanStoreDelete(t *testing.T) {
	plans, _ := NewPlanStore(memstore.NewMemoryStore())
	plans.AddPlan(newPlan("p1"))
	plans.AddPlan(newPlan("p2"))
	if err := plans.DeletePlan("p1"); err != nil {
		t.Fatalf("DeletePlan failed: %v", err)
	}
	if _, ok := plans.Plan("p1"); ok {
		t.Error("p1 should be gone")
	}
	if len(plans.Plans()) != 1 {
		t.Errorf("expected 1 plan, got %d", len(plans.Plans()))
	}
}
