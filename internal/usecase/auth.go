package usecase

import (
	"context"
	"log"
	"time"

	"calscope/internal/adapter/token"
	"calscope/internal/domain"
	"calscope/internal/port"
)

const (
	LoginFailedMessage    = "Login failed. Please try again."
	RegisterFailedMessage = "Registration failed. Please try again."
)

// TokenStore is the auth store as seen by the auth workflow.
type TokenStore interface {
	Token() (string, bool)
	SetAuth(token string) error
	Logout() error
}

type AuthUseCase struct {
	auth  port.Authenticator
	store TokenStore
}

func NewAuthUseCase(auth port.Authenticator, store TokenStore) *AuthUseCase {
	return &AuthUseCase{auth: auth, store: store}
}

func (u *AuthUseCase) Login(ctx context.Context, req domain.LoginRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	resp, err := u.auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return u.store.SetAuth(resp.Token)
}

func (u *AuthUseCase) Register(ctx context.Context, req domain.RegisterRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}
	resp, err := u.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return u.store.SetAuth(resp.Token)
}

func (u *AuthUseCase) Logout() error {
	return u.store.Logout()
}

// Guard reports whether a usable token is held. An expired or unreadable
// token is cleared.
func (u *AuthUseCase) Guard(now time.Time) bool {
	raw, ok := u.store.Token()
	if !ok {
		return false
	}
	if !token.Expired(raw, now) {
		return true
	}
	if err := u.store.Logout(); err != nil {
		log.Printf("Warning: failed to clear expired token: %v", err)
	}
	return false
}

// AuthErrorMessage is the banner text for a failed login or registration.
func AuthErrorMessage(err error, fallback string) string {
	return remoteMessage(err, fallback)
}
