package service

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/domain"
	"taskboard/internal/store"
)

// AuthService checks credentials against the user collection. Passwords
// are compared as stored; hashing is a known gap inherited from the
// protocol, not something this layer hides.
type AuthService struct {
	store store.Store
}

func NewAuthService(st store.Store) *AuthService {
	return &AuthService{store: st}
}

// Authenticate returns nil when login/password match a stored user.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) error {
	u, err := s.store.FindUser(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrWrongCredentials
	}
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if u.Password != password {
		return domain.ErrWrongCredentials
	}
	return nil
}
