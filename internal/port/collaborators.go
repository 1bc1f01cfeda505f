package port

import (
	"context"
	"fmt"

	"calscope/internal/domain"
)

// FoodSearcher queries a remote food catalog.
type FoodSearcher interface {
	// SearchFoods returns up to limit catalog entries matching query, in the
	// catalog's own relevance order.
	SearchFoods(ctx context.Context, query string, limit int) ([]domain.FoodItem, error)
}

// CalorieLookup resolves a dish and serving count to a MealRecord.
type CalorieLookup interface {
	GetCalories(ctx context.Context, req domain.LookupRequest, token string) (domain.MealRecord, error)
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
}

// RemoteError is a non-success response from a collaborator. Message holds the
// collaborator's own human-readable error, if it sent one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error %d", e.StatusCode)
}
