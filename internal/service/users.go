package service

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/domain"
	"taskboard/internal/store"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrEmptyCredentials  = errors.New("login and password required")
)

// UserService backs the HTTP registration endpoint.
type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) Register(ctx context.Context, login, password string) error {
	if login == "" || password == "" {
		return ErrEmptyCredentials
	}

	err := s.store.InsertUser(ctx, &domain.User{Login: login, Password: password})
	if errors.Is(err, store.ErrDuplicate) {
		return ErrAlreadyRegistered
	}
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}
