package historyindex

import (
	"testing"

	"calscope/internal/domain"
)

func TestIndexSearch(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	history := []domain.MealRecord{
		{DishName: "Chicken Biryani", Servings: 1, CaloriesPerServing: 280},
		{DishName: "chicken biryani", Servings: 2, CaloriesPerServing: 270},
		{DishName: "Greek Salad", Servings: 1, CaloriesPerServing: 150},
		{DishName: "Beef Stew", Servings: 1, CaloriesPerServing: 320},
	}
	if err := idx.Rebuild(history); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 distinct dishes, got %d", count)
	}

	hits, err := idx.Search("biry", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Dish != "chicken biryani" {
		t.Fatalf("expected prefix match on chicken biryani, got %+v", hits)
	}
	if hits[0].Lookups != 2 {
		t.Errorf("expected 2 lookups, got %d", hits[0].Lookups)
	}

	hits, err = idx.Search("salat", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Dish != "greek salad" {
		t.Errorf("expected fuzzy match on greek salad, got %+v", hits)
	}

	hits, err = idx.Search("   ", 10)
	if err != nil || len(hits) != 0 {
		t.Errorf("blank term should return nothing, got %+v %v", hits, err)
	}
}

func TestIndexRebuildReplaces(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	idx.Rebuild([]domain.MealRecord{{DishName: "pad thai"}})
	idx.Rebuild(nil)

	count, _ := idx.Count()
	if count != 0 {
		t.Errorf("expected empty index after rebuild with no history, got %d", count)
	}
}
