package domain

import (
	"errors"
	"testing"
)

func TestValidateLookupRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := Validate(LookupRequest{DishName: "chicken biryani", Servings: 2}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("short dish name", func(t *testing.T) {
		err := Validate(LookupRequest{DishName: "", Servings: 1})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Fields["dish_name"] != "Dish name must be at least 2 characters" {
			t.Errorf("unexpected dish_name message: %q", verr.Fields["dish_name"])
		}
	})

	t.Run("servings bounds", func(t *testing.T) {
		for _, tc := range []struct {
			servings int
			msg      string
		}{
			{0, "Must be at least 1 serving"},
			{21, "Maximum 20 servings"},
		} {
			err := Validate(LookupRequest{DishName: "rice", Servings: tc.servings})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("servings=%d: expected ValidationError, got %v", tc.servings, err)
			}
			if verr.Fields["servings"] != tc.msg {
				t.Errorf("servings=%d: expected %q, got %q", tc.servings, tc.msg, verr.Fields["servings"])
			}
		}
	})

	t.Run("boundary servings accepted", func(t *testing.T) {
		for _, n := range []int{1, 20} {
			if err := Validate(LookupRequest{DishName: "rice", Servings: n}); err != nil {
				t.Errorf("servings=%d: unexpected error %v", n, err)
			}
		}
	})
}

func TestValidateCredentials(t *testing.T) {
	err := Validate(LoginRequest{Email: "not-an-email", Password: "short"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["email"] != "Invalid email address" {
		t.Errorf("unexpected email message: %q", verr.Fields["email"])
	}
	if verr.Fields["password"] != "Password must be at least 8 characters" {
		t.Errorf("unexpected password message: %q", verr.Fields["password"])
	}

	err = Validate(RegisterRequest{FirstName: "A", LastName: "Smith", Email: "a@b.co", Password: "password123"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["firstName"]; !ok {
		t.Error("expected firstName error")
	}
	if _, ok := verr.Fields["lastName"]; ok {
		t.Error("did not expect lastName error")
	}
}

func TestSanitizeDishName(t *testing.T) {
	got := SanitizeDishName("Chicken <Biryani>! (spicy), mom's-style")
	want := "Chicken Biryani spicy, mom's-style"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMealRecordConsistent(t *testing.T) {
	rec := MealRecord{DishName: "chicken biryani", Servings: 2, CaloriesPerServing: 280, TotalCalories: 560}
	if !rec.Consistent() {
		t.Error("expected consistent record")
	}
	rec.TotalCalories = 500
	if rec.Consistent() {
		t.Error("expected inconsistent record")
	}
}

func TestWeekdayValid(t *testing.T) {
	if !Monday.Valid() || !Weekday("Sunday").Valid() {
		t.Error("canonical days should be valid")
	}
	if Weekday("monday").Valid() || Weekday("Funday").Valid() {
		t.Error("non-canonical days should be invalid")
	}
}

func TestMealPlanCloneIsolation(t *testing.T) {
	p := MealPlan{ID: "p1", Days: map[Weekday][]PlanMeal{Monday: {{ID: "m1"}}}}
	c := p.Clone()
	c.Days[Monday][0].Name = "changed"
	c.Days[Tuesday] = nil
	if p.Days[Monday][0].Name != "" {
		t.Error("clone shares meal slice with original")
	}
	if _, ok := p.Days[Tuesday]; ok {
		t.Error("clone shares day map with original")
	}
}
