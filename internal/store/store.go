package store

import (
	"context"
	"errors"

	"taskboard/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

// Store is the persistence contract for the two collections the server
// owns: users and task lists. Every list read returns a fresh private
// copy; ReplaceList is a whole-document replace conditional on the
// version the copy was read at, so a concurrent writer loses cleanly
// with ErrVersionConflict instead of silently overwriting.
type Store interface {
	FindUser(ctx context.Context, login string) (*domain.User, error)
	InsertUser(ctx context.Context, u *domain.User) error

	FindList(ctx context.Context, name string) (*domain.TaskList, error)
	AllLists(ctx context.Context) ([]*domain.TaskList, error)
	InsertList(ctx context.Context, tl *domain.TaskList) error
	ReplaceList(ctx context.Context, tl *domain.TaskList) error
	// RemoveList deletes the list only when both name and owner match,
	// and reports how many rows went away. Existence and ownership are
	// checked by the predicate, not by a separate fetch.
	RemoveList(ctx context.Context, name, owner string) (int64, error)
}
