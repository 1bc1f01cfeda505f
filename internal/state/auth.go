package state

import (
	"calscope/internal/port"
)

const AuthKey = "auth-storage"

type AuthState struct {
	Token string
}

func (s AuthState) Authenticated() bool {
	return s.Token != ""
}

type authPersisted struct {
	Token *string `json:"token"`
}

// AuthStore holds the bearer token. The whole state is persisted.
type AuthStore struct {
	store[AuthState]
}

func NewAuthStore(backend port.Persistence) (*AuthStore, error) {
	var p authPersisted
	if err := hydrate(backend, AuthKey, &p); err != nil {
		return nil, err
	}
	s := &AuthStore{}
	s.key = AuthKey
	s.backend = backend
	s.persist = func(st AuthState) any {
		if st.Token == "" {
			return authPersisted{}
		}
		tok := st.Token
		return authPersisted{Token: &tok}
	}
	if p.Token != nil {
		s.state.Token = *p.Token
	}
	return s, nil
}

// Token returns the current token; ok is false when unauthenticated.
func (s *AuthStore) Token() (token string, ok bool) {
	st := s.snapshot()
	return st.Token, st.Authenticated()
}

func (s *AuthStore) State() AuthState {
	return s.snapshot()
}

// SetAuth replaces the token. An empty token clears it.
func (s *AuthStore) SetAuth(token string) error {
	return s.apply(func(AuthState) (AuthState, error) {
		return AuthState{Token: token}, nil
	})
}

func (s *AuthStore) Logout() error {
	return s.apply(func(AuthState) (AuthState, error) {
		return AuthState{}, nil
	})
}
