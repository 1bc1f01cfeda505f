// Package calorieapi talks to the calorie-lookup and authentication service.
package calorieapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calscope/internal/domain"
	"calscope/internal/port"
)

// ErrMalformedResponse is returned when a success response does not match
// the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// mealRecordPayload uses pointers so missing fields can be told apart from zeros.
type mealRecordPayload struct {
	DishName           *string  `json:"dish_name"`
	Servings           *int     `json:"servings"`
	CaloriesPerServing *float64 `json:"calories_per_serving"`
	TotalCalories      *float64 `json:"total_calories"`
	Source             *string  `json:"source"`
}

func (p mealRecordPayload) record() (domain.MealRecord, error) {
	if p.DishName == nil || p.Servings == nil || p.CaloriesPerServing == nil || p.TotalCalories == nil {
		return domain.MealRecord{}, fmt.Errorf("%w: missing nutrition fields", ErrMalformedResponse)
	}
	if *p.Servings < 1 || *p.CaloriesPerServing < 0 || *p.TotalCalories < 0 {
		return domain.MealRecord{}, fmt.Errorf("%w: out of range nutrition values", ErrMalformedResponse)
	}
	rec := domain.MealRecord{
		DishName:           *p.DishName,
		Servings:           *p.Servings,
		CaloriesPerServing: *p.CaloriesPerServing,
		TotalCalories:      *p.TotalCalories,
	}
	if p.Source != nil {
		rec.Source = *p.Source
	}
	return rec, nil
}

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (domain.AuthResponse, error) {
	body, err := c.post(ctx, path, payload, "")
	if err != nil {
		return domain.AuthResponse{}, err
	}
	var resp domain.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AuthResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Token == "" {
		return domain.AuthResponse{}, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}
	return resp, nil
}

func (c *Client) GetCalories(ctx context.Context, req domain.LookupRequest, token string) (domain.MealRecord, error) {
	body, err := c.post(ctx, "/get-calories", req, token)
	if err != nil {
		return domain.MealRecord{}, err
	}
	var payload mealRecordPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.MealRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return payload.record()
}

func (c *Client) post(ctx context.Context, path string, payload any, token string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &port.RemoteError{StatusCode: resp.StatusCode}
		var ep errorPayload
		if json.Unmarshal(body, &ep) == nil {
			remote.Message = ep.Error
			if remote.Message == "" {
				remote.Message = ep.Message
			}
		}
		return nil, remote
	}
	return body, nil
}
