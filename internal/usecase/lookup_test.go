package usecase

import (
	"context"
	"errors"
	"testing"

	"calscope/internal/adapter/memstore"
	"calscope/internal/domain"
	"calscope/internal/port"
	"calscope/internal/state"
)

type fakeLookup struct {
	rec   domain.MealRecord
	err   error
	calls int
	req   domain.LookupRequest
	token string
}

func (l *fakeLookup) GetCalories(ctx context.Context, req domain.LookupRequest, token string) (domain.MealRecord, error) {
	l.calls++
	l.req = req
	l.token = token
	return l.rec, l.err
}

type fakeTokens string

func (t fakeTokens) Token() (string, bool) { return string(t), t != "" }

type recordingQuery struct {
	queries  []string
	selected []string
}

func (q *recordingQuery) SetQuery(s string) { q.queries = append(q.queries, s) }
func (q *recordingQuery) Select(s string)   { q.selected = append(q.selected, s) }

var biryani = domain.MealRecord{
	DishName:           "chicken biryani",
	Servings:           2,
	CaloriesPerServing: 280,
	TotalCalories:      560,
	Source:             "USDA FoodData Central",
}

func newTestForm(t *testing.T, lookup *fakeLookup, token string) (*LookupForm, *state.MealStore, *recordingQuery) {
	t.Helper()
	meals, err := state.NewMealStore(memstore.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewMealStore failed: %v", err)
	}
	q := &recordingQuery{}
	return NewLookupForm(lookup, fakeTokens(token), meals, q), meals, q
}

func TestLookupEndToEnd(t *testing.T) {
	lookup := &fakeLookup{rec: biryani}
	form, meals, q := newTestForm(t, lookup, "tok")
	meals.SetHistory([]domain.MealRecord{{DishName: "rice", Servings: 1}})

	form.SetDishName("chicken biryani")
	form.SetServings(2)
	rec, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rec != biryani {
		t.Errorf("unexpected record: %+v", rec)
	}
	if lookup.token != "tok" || lookup.req.DishName != "chicken biryani" || lookup.req.Servings != 2 {
		t.Errorf("unexpected request: %+v token=%q", lookup.req, lookup.token)
	}

	info, ok := meals.NutritionalInfo()
	if !ok || info != biryani {
		t.Errorf("nutritional info not set: %+v", info)
	}
	history := meals.History()
	if len(history) != 2 || history[0] != biryani || history[1].DishName != "rice" {
		t.Errorf("record not prepended: %+v", history)
	}

	st := form.State()
	if st.Status != StatusSuccess || st.DishName != "" || st.Servings != 1 {
		t.Errorf("form not reset: %+v", st)
	}
	if len(q.queries) == 0 || q.queries[len(q.queries)-1] != "" {
		t.Errorf("search query not cleared: %v", q.queries)
	}
}

func TestLookupValidationBlocksNetwork(t *testing.T) {
	lookup := &fakeLookup{rec: biryani}
	form, _, _ := newTestForm(t, lookup, "tok")

	form.SetDishName("x")
	form.SetServings(21)
	_, err := form.Submit(context.Background())

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if lookup.calls != 0 {
		t.Errorf("validation failure reached the network")
	}
	st := form.State()
	if st.FieldErrors["dish_name"] == "" || st.FieldErrors["servings"] != "Maximum 20 servings" {
		t.Errorf("unexpected field errors: %v", st.FieldErrors)
	}
}

func TestLookupSanitizesDishName(t *testing.T) {
	lookup := &fakeLookup{rec: biryani}
	form, _, _ := newTestForm(t, lookup, "tok")

	form.SetDishName("chicken <biryani>!")
	if _, err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if lookup.req.DishName != "chicken biryani" {
		t.Errorf("expected sanitized name, got %q", lookup.req.DishName)
	}
}

func TestLookupRequiresToken(t *testing.T) {
	lookup := &fakeLookup{rec: biryani}
	form, _, _ := newTestForm(t, lookup, "")

	form.SetDishName("rice")
	if _, err := form.Submit(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if lookup.calls != 0 {
		t.Error("unauthenticated submit reached the network")
	}
}

func TestLookupErrorMessages(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{"remote message", &port.RemoteError{StatusCode: 404, Message: "Dish not found"}, "Dish not found"},
		{"remote without message", &port.RemoteError{StatusCode: 500}, LookupFailedMessage},
		{"transport", errors.New("connection refused"), LookupFailedMessage},
	} {
		t.Run(tc.name, func(t *testing.T) {
			lookup := &fakeLookup{err: tc.err}
			form, meals, _ := newTestForm(t, lookup, "tok")

			form.SetDishName("rice")
			if _, err := form.Submit(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			st := form.State()
			if st.Status != StatusError || st.Error != tc.want {
				t.Errorf("expected error %q, got %+v", tc.want, st)
			}
			if st.DishName != "rice" {
				t.Error("failed submit should keep the form input")
			}
			if len(meals.History()) != 0 {
				t.Error("failed lookup added history")
			}
		})
	}
}

func TestLookupSelectSuggestion(t *testing.T) {
	form, _, q := newTestForm(t, &fakeLookup{}, "tok")
	form.SelectSuggestion("fried rice")
	if form.State().DishName != "fried rice" {
		t.Error("dish name not set from suggestion")
	}
	if len(q.selected) != 1 || q.selected[0] != "fried rice" {
		t.Errorf("suggestion not forwarded: %v", q.selected)
	}
}
