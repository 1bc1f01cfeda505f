package calorieapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calscope/internal/domain"
	"calscope/internal/port"
)

func TestGetCalories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/get-calories" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		var req domain.LookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.DishName != "chicken biryani" || req.Servings != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"dish_name":"chicken biryani","servings":2,"calories_per_serving":280,"total_calories":560,"source":"USDA FoodData Central"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	rec, err := c.GetCalories(context.Background(), domain.LookupRequest{DishName: "chicken biryani", Servings: 2}, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.MealRecord{DishName: "chicken biryani", Servings: 2, CaloriesPerServing: 280, TotalCalories: 560, Source: "USDA FoodData Central"}
	if rec != want {
		t.Errorf("expected %+v, got %+v", want, rec)
	}
}

func TestGetCaloriesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Dish not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetCalories(context.Background(), domain.LookupRequest{DishName: "zzz", Servings: 1}, "tok")
	var remote *port.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.StatusCode != http.StatusNotFound || remote.Message != "Dish not found" {
		t.Errorf("unexpected remote error %+v", remote)
	}
}

func TestGetCaloriesMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"missing fields": `{"dish_name":"rice"}`,
		"bad servings":   `{"dish_name":"rice","servings":0,"calories_per_serving":1,"total_calories":0}`,
		"not json":       `<html>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second)
			_, err := c.GetCalories(context.Background(), domain.LookupRequest{DishName: "rice", Servings: 1}, "tok")
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestLoginAndRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("auth calls must not send a bearer token")
		}
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"login-token"}`))
		case "/auth/register":
			var req domain.RegisterRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.FirstName != "Ada" {
				t.Errorf("unexpected register payload %+v", req)
			}
			w.Write([]byte(`{"token":"register-token"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	resp, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@b.co", Password: "password1"})
	if err != nil || resp.Token != "login-token" {
		t.Errorf("login: got %+v, %v", resp, err)
	}
	resp, err = c.Register(context.Background(), domain.RegisterRequest{FirstName: "Ada", LastName: "Lovelace", Email: "a@b.co", Password: "password1"})
	if err != nil || resp.Token != "register-token" {
		t.Errorf("register: got %+v, %v", resp, err)
	}
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Login(context.Background(), domain.LoginRequest{}); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}
