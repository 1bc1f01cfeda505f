package cli

import (
	"errors"
	"testing"

	"calscope/config"
	"calscope/internal/adapter/memstore"
	"calscope/internal/adapter/sqlstore"
	"calscope/internal/adapter/store"
	"calscope/internal/domain"
	"calscope/internal/state"
)

func TestFilterHistory(t *testing.T) {
	history := []domain.MealRecord{
		{DishName: "Chicken Biryani"},
		{DishName: "fried rice"},
		{DishName: "beef biryani"},
	}

	got, err := filterHistory(history, "*BIRYANI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].DishName != "Chicken Biryani" || got[1].DishName != "beef biryani" {
		t.Errorf("unexpected matches: %+v", got)
	}

	all, _ := filterHistory(history, "")
	if len(all) != 3 {
		t.Errorf("empty pattern should match all, got %d", len(all))
	}

	if _, err := filterHistory(history, "[unclosed"); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("wednesday")
	if err != nil || d != domain.Wednesday {
		t.Errorf("expected Wednesday, got %q (%v)", d, err)
	}
	if _, err := parseDay("Funday"); !errors.Is(err, domain.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestResolvePlan(t *testing.T) {
	plans, err := state.NewPlanStore(memstore.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}
	plans.AddPlan(domain.MealPlan{ID: "0192a-one"})
	plans.AddPlan(domain.MealPlan{ID: "0192b-two"})

	p, err := resolvePlan(plans, "0192b")
	if err != nil || p.ID != "0192b-two" {
		t.Errorf("expected prefix match, got %q (%v)", p.ID, err)
	}
	if _, err := resolvePlan(plans, "0192"); err == nil {
		t.Error("expected ambiguous prefix error")
	}
	if _, err := resolvePlan(plans, "ffff"); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestOpenPersistence(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		driver string
		check  func(any) bool
	}{
		{"bolt", func(v any) bool { _, ok := v.(*store.BoltStore); return ok }},
		{"sqlite", func(v any) bool { _, ok := v.(*sqlstore.SQLStore); return ok }},
		{"memory", func(v any) bool { _, ok := v.(*memstore.MemoryStore); return ok }},
	} {
		t.Run(tc.driver, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage.Driver = tc.driver
			backend, _, err := openPersistence(cfg, dir)
			if err != nil {
				t.Fatalf("openPersistence failed: %v", err)
			}
			defer backend.Close()
			if !tc.check(backend) {
				t.Errorf("unexpected backend type %T", backend)
			}
		})
	}
}
