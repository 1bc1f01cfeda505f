//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"syscall/js"
	"time"

	"calscope/config"
	"calscope/internal/adapter/cache"
	"calscope/internal/adapter/calorieapi"
	"calscope/internal/adapter/memstore"
	"calscope/internal/adapter/usda"
	"calscope/internal/domain"
	"calscope/internal/port"
	"calscope/internal/state"
	"calscope/internal/usecase"
)

var (
	auth   *state.AuthStore
	meals  *state.MealStore
	plans  *state.PlanStore
	authUC *usecase.AuthUseCase
	coord  *usecase.Coordinator
	form   *usecase.LookupForm
)

func setup() error {
	cfg := config.DefaultConfig()
	if v := js.Global().Get("CALSCOPE_API_URL"); v.Type() == js.TypeString {
		cfg.API.BaseURL = v.String()
	}
	usdaKey := usda.DemoKey
	if v := js.Global().Get("CALSCOPE_USDA_KEY"); v.Type() == js.TypeString {
		usdaKey = v.String()
	}

	var backend port.Persistence
	if ls, ok := newLocalStorage(); ok {
		backend = ls
	} else {
		log.Printf("Warning: localStorage unavailable, state will not persist")
		backend = memstore.NewMemoryStore()
	}

	var err error
	if auth, err = state.NewAuthStore(backend); err != nil {
		return err
	}
	if meals, err = state.NewMealStore(backend); err != nil {
		return err
	}
	if plans, err = state.NewPlanStore(backend); err != nil {
		return err
	}

	api := calorieapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	searcher := cache.NewCachedSearcher(
		usda.NewClientWithKey(usdaKey, cfg.USDA.BaseURL, cfg.USDA.Timeout),
		cache.NewSearchCache(cfg.Autocomplete.CacheSize, cfg.Autocomplete.CacheTTL),
	)
	fetcher := usecase.NewSuggestionFetcher(searcher, usecase.DefaultSuggestOptions())

	authUC = usecase.NewAuthUseCase(api, auth)
	coord = usecase.NewCoordinator(fetcher, meals, usecase.DefaultCoordinatorOptions())
	form = usecase.NewLookupForm(api, auth, meals, coord)
	return nil
}

func main() {
	if err := setup(); err != nil {
		log.Printf("calscope: setup failed: %v", err)
		return
	}
	c := make(chan struct{})

	exports := map[string]func(js.Value, []js.Value) any{
		"calscopeSetQuery":      setQuery,
		"calscopeSelect":        selectSuggestion,
		"calscopeSuggestions":   suggestions,
		"calscopeOnSuggestions": onSuggestions,
		"calscopeLogin":         login,
		"calscopeRegister":      register,
		"calscopeLogout":        logout,
		"calscopeAuthenticated": authenticated,
		"calscopeLookup":        lookup,
		"calscopeResult":        result,
		"calscopeHistory":       history,
		"calscopeClearHistory":  clearHistory,
		"calscopePlans":         listPlans,
		"calscopeCreatePlan":    createPlan,
		"calscopeUpdatePlan":    updatePlan,
		"calscopeDeletePlan":    deletePlan,
		"calscopeAddMeal":       addMeal,
		"calscopeRemoveMeal":    removeMeal,
		"calscopePlanStats":     planStats,
	}
	for name, fn := range exports {
		js.Global().Set(name, js.FuncOf(fn))
	}

	<-c
}

func setQuery(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("usage: calscopeSetQuery(query)")
	}
	form.SetDishName(args[0].String())
	return nil
}

func selectSuggestion(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("usage: calscopeSelect(suggestion)")
	}
	form.SelectSuggestion(args[0].String())
	return nil
}

type viewJSON struct {
	Query   string   `json:"query"`
	Loading bool     `json:"loading"`
	Open    bool     `json:"open"`
	History []string `json:"history"`
	Remote  []string `json:"remote"`
}

func encodeView(v usecase.View) string {
	out := viewJSON{Query: v.Query, Loading: v.Loading, Open: v.Open, History: []string{}, Remote: []string{}}
	for _, s := range v.Suggestions {
		if s.Source == domain.SourceHistory {
			out.History = append(out.History, s.Text)
		} else {
			out.Remote = append(out.Remote, s.Text)
		}
	}
	data, _ := json.Marshal(out)
	return string(data)
}

func suggestions(this js.Value, args []js.Value) any {
	return encodeView(coord.Snapshot())
}

// onSuggestions registers a callback receiving the view as JSON. It returns
// a function that unregisters it.
func onSuggestions(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return makeError("usage: calscopeOnSuggestions(callback)")
	}
	cb := args[0]
	unsubscribe := coord.Subscribe(func(v usecase.View) {
		cb.Invoke(encodeView(v))
	})
	var release js.Func
	release = js.FuncOf(func(js.Value, []js.Value) any {
		unsubscribe()
		release.Release()
		return nil
	})
	return release
}

// promise runs fn off the event loop; network calls block.
func promise(fn func(ctx context.Context) (any, error)) js.Value {
	var handler js.Func
	handler = js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			defer handler.Release()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			v, err := fn(ctx)
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

func validationJSON(err error) (string, bool) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return "", false
	}
	data, _ := json.Marshal(map[string]any{"fields": verr.Fields})
	return string(data), true
}

func login(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return makeError("usage: calscopeLogin(email, password)")
	}
	req := domain.LoginRequest{Email: args[0].String(), Password: args[1].String()}
	return promise(func(ctx context.Context) (any, error) {
		if err := authUC.Login(ctx, req); err != nil {
			if msg, ok := validationJSON(err); ok {
				return nil, errors.New(msg)
			}
			return nil, errors.New(usecase.AuthErrorMessage(err, usecase.LoginFailedMessage))
		}
		return true, nil
	})
}

func register(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return makeError("usage: calscopeRegister(firstName, lastName, email, password)")
	}
	req := domain.RegisterRequest{
		FirstName: args[0].String(),
		LastName:  args[1].String(),
		Email:     args[2].String(),
		Password:  args[3].String(),
	}
	return promise(func(ctx context.Context) (any, error) {
		if err := authUC.Register(ctx, req); err != nil {
			if msg, ok := validationJSON(err); ok {
				return nil, errors.New(msg)
			}
			return nil, errors.New(usecase.AuthErrorMessage(err, usecase.RegisterFailedMessage))
		}
		return true, nil
	})
}

func logout(this js.Value, args []js.Value) any {
	if err := authUC.Logout(); err != nil {
		return makeError(err.Error())
	}
	return nil
}

func authenticated(this js.Value, args []js.Value) any {
	return authUC.Guard(time.Now())
}

func lookup(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("usage: calscopeLookup(servings)")
	}
	form.SetServings(args[0].Int())
	return promise(func(ctx context.Context) (any, error) {
		rec, err := form.Submit(ctx)
		if err != nil {
			if msg, ok := validationJSON(err); ok {
				return nil, errors.New(msg)
			}
			if errors.Is(err, domain.ErrNotAuthenticated) {
				return nil, err
			}
			return nil, errors.New(form.State().Error)
		}
		data, _ := json.Marshal(rec)
		return string(data), nil
	})
}

func result(this js.Value, args []js.Value) any {
	rec, ok := meals.NutritionalInfo()
	if !ok {
		return js.Null()
	}
	data, _ := json.Marshal(rec)
	return string(data)
}

func history(this js.Value, args []js.Value) any {
	data, _ := json.Marshal(meals.History())
	return string(data)
}

func clearHistory(this js.Value, args []js.Value) any {
	if err := meals.SetHistory(nil); err != nil {
		return makeError(err.Error())
	}
	return nil
}

func listPlans(this js.Value, args []js.Value) any {
	data, _ := json.Marshal(plans.Plans())
	return string(data)
}

func createPlan(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeError("usage: calscopeCreatePlan(name, description, dailyCalorieGoal)")
	}
	plan, err := usecase.NewPlan(args[0].String(), args[1].String(), args[2].Int(), time.Now())
	if err != nil {
		return makeError(err.Error())
	}
	if err := plans.AddPlan(plan); err != nil {
		return makeError(err.Error())
	}
	data, _ := json.Marshal(plan)
	return string(data)
}

// updatePlan takes a JSON patch with any of name, description and
// dailyCalorieGoal.
func updatePlan(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return makeError("usage: calscopeUpdatePlan(id, patchJSON)")
	}
	var body struct {
		Name             *string `json:"name"`
		Description      *string `json:"description"`
		DailyCalorieGoal *int    `json:"dailyCalorieGoal"`
	}
	if err := json.Unmarshal([]byte(args[1].String()), &body); err != nil {
		return makeError("invalid patch: " + err.Error())
	}
	patch := domain.PlanPatch{Name: body.Name, Description: body.Description, DailyCalorieGoal: body.DailyCalorieGoal}
	if err := plans.UpdatePlan(args[0].String(), patch); err != nil {
		return makeError(err.Error())
	}
	return nil
}

func deletePlan(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("usage: calscopeDeletePlan(id)")
	}
	if err := plans.DeletePlan(args[0].String()); err != nil {
		return makeError(err.Error())
	}
	return nil
}

func addMeal(this js.Value, args []js.Value) any {
	if len(args) < 5 {
		return makeError("usage: calscopeAddMeal(planId, day, name, calories, time)")
	}
	meal, err := usecase.NewMeal(args[2].String(), args[3].Int(), domain.MealTime(args[4].String()))
	if err != nil {
		return makeError(err.Error())
	}
	if err := plans.AddMealToPlan(args[0].String(), domain.Weekday(args[1].String()), meal); err != nil {
		return makeError(err.Error())
	}
	data, _ := json.Marshal(meal)
	return string(data)
}

func removeMeal(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeError("usage: calscopeRemoveMeal(planId, day, mealId)")
	}
	if err := plans.RemoveMealFromPlan(args[0].String(), domain.Weekday(args[1].String()), args[2].String()); err != nil {
		return makeError(err.Error())
	}
	return nil
}

func planStats(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeError("usage: calscopePlanStats(id)")
	}
	plan, ok := plans.Plan(args[0].String())
	if !ok {
		return makeError(domain.ErrPlanNotFound.Error())
	}
	data, _ := json.Marshal(usecase.ComputePlanStats(plan))
	return string(data)
}

func makeError(msg string) any {
	result, _ := json.Marshal(map[string]any{
		"error": msg,
	})
	return string(result)
}
