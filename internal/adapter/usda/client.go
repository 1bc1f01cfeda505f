// Package usda searches the USDA FoodData Central catalog.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"calscope/internal/domain"
)

const (
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"
	DemoKey        = "DEMO_KEY"
)

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type searchResponse struct {
	TotalHits int               `json:"totalHits"`
	Foods     []domain.FoodItem `json:"foods"`
}

// NewClient reads the API key from apiKeyEnv, falling back to the shared demo key.
func NewClient(apiKeyEnv, baseURL string, timeout time.Duration) *Client {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		apiKey = DemoKey
	}
	return NewClientWithKey(apiKey, baseURL, timeout)
}

func NewClientWithKey(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]domain.FoodItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call food search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read food search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("food search API error %d: %s", resp.StatusCode, resp.Status)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse food search JSON: %w", err)
	}

	foods := make([]domain.FoodItem, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		if f.Description == "" {
			continue
		}
		foods = append(foods, f)
	}
	return foods, nil
}
