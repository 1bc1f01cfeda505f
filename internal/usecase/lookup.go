package usecase

import (
	"context"
	"errors"
	"log"
	"sync"

	"calscope/internal/domain"
	"calscope/internal/port"
)

const LookupFailedMessage = "Failed to fetch calorie data. Please try again."

var ErrSubmitInProgress = errors.New("lookup already in progress")

type FormStatus string

const (
	StatusIdle       FormStatus = "idle"
	StatusSubmitting FormStatus = "submitting"
	StatusSuccess    FormStatus = "success"
	StatusError      FormStatus = "error"
)

// FormState is what the dish form renders.
type FormState struct {
	DishName    string
	Servings    int
	Status      FormStatus
	Error       string            // Banner message for StatusError
	FieldErrors map[string]string // Inline validation messages by field
}

// TokenSource yields the current bearer token.
type TokenSource interface {
	Token() (string, bool)
}

// MealHistory is the part of the meal store the form writes to.
type MealHistory interface {
	History() []domain.MealRecord
	SetNutritionalInfo(domain.MealRecord) error
	SetHistory([]domain.MealRecord) error
}

// QuerySink receives the form's search query. The autocomplete coordinator
// satisfies it.
type QuerySink interface {
	SetQuery(q string)
	Select(s string)
}

// LookupForm drives the dish-lookup workflow.
type LookupForm struct {
	mu     sync.Mutex
	lookup port.CalorieLookup
	tokens TokenSource
	meals  MealHistory
	query  QuerySink
	state  FormState
}

func NewLookupForm(lookup port.CalorieLookup, tokens TokenSource, meals MealHistory, query QuerySink) *LookupForm {
	return &LookupForm{
		lookup: lookup,
		tokens: tokens,
		meals:  meals,
		query:  query,
		state:  FormState{Servings: 1, Status: StatusIdle},
	}
}

func (f *LookupForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	if st.FieldErrors != nil {
		st.FieldErrors = make(map[string]string, len(f.state.FieldErrors))
		for k, v := range f.state.FieldErrors {
			st.FieldErrors[k] = v
		}
	}
	return st
}

func (f *LookupForm) SetDishName(name string) {
	f.mu.Lock()
	f.state.DishName = name
	f.mu.Unlock()
	if f.query != nil {
		f.query.SetQuery(name)
	}
}

func (f *LookupForm) SetServings(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Servings = n
}

// SelectSuggestion puts s into the dish field and closes the suggestion list.
func (f *LookupForm) SelectSuggestion(s string) {
	f.mu.Lock()
	f.state.DishName = s
	f.mu.Unlock()
	if f.query != nil {
		f.query.Select(s)
	}
}

// Submit validates the form, looks up the dish and records the result.
// Validation failures never reach the network.
func (f *LookupForm) Submit(ctx context.Context) (domain.MealRecord, error) {
	f.mu.Lock()
	if f.state.Status == StatusSubmitting {
		f.mu.Unlock()
		return domain.MealRecord{}, ErrSubmitInProgress
	}
	f.state.Error = ""
	f.state.FieldErrors = nil
	f.state.Status = StatusIdle

	req := domain.LookupRequest{DishName: f.state.DishName, Servings: f.state.Servings}
	if err := domain.Validate(req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			f.state.FieldErrors = verr.Fields
		}
		f.mu.Unlock()
		return domain.MealRecord{}, err
	}
	req.DishName = domain.SanitizeDishName(req.DishName)

	token, ok := f.tokens.Token()
	if !ok {
		f.mu.Unlock()
		return domain.MealRecord{}, domain.ErrNotAuthenticated
	}
	f.state.Status = StatusSubmitting
	f.mu.Unlock()

	rec, err := f.lookup.GetCalories(ctx, req, token)
	if err != nil {
		f.mu.Lock()
		f.state.Status = StatusError
		f.state.Error = LookupErrorMessage(err)
		f.mu.Unlock()
		return domain.MealRecord{}, err
	}

	if err := f.meals.SetNutritionalInfo(rec); err != nil {
		log.Printf("Warning: failed to store lookup result: %v", err)
	}
	history := append([]domain.MealRecord{rec}, f.meals.History()...)
	if err := f.meals.SetHistory(history); err != nil {
		log.Printf("Warning: failed to store history: %v", err)
	}

	f.mu.Lock()
	f.state = FormState{Servings: 1, Status: StatusSuccess}
	f.mu.Unlock()
	if f.query != nil {
		f.query.SetQuery("")
	}
	return rec, nil
}

// LookupErrorMessage is the banner text for a failed lookup: the
// collaborator's own message when it sent one, otherwise a generic one.
func LookupErrorMessage(err error) string {
	return remoteMessage(err, LookupFailedMessage)
}

func remoteMessage(err error, fallback string) string {
	var rerr *port.RemoteError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	return fallback
}
