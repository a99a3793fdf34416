package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/store"
)

// writeRetries bounds the read-modify-write retry loop when the
// conditional replace loses to a concurrent writer from another process.
// Within this process the per-list lock already serializes writers.
const writeRetries = 3

// TaskListService runs every list mutation as fetch, validate, mutate the
// private copy, whole-document replace. The per-list lock is held across
// the whole cycle and the replace is conditional on the version read, so
// concurrent mutations of the same list never lose an update.
type TaskListService struct {
	store store.Store
	locks *keyedMutex
}

func NewTaskListService(st store.Store) *TaskListService {
	return &TaskListService{store: st, locks: newKeyedMutex()}
}

// Create inserts a fresh list owned by owner, allowed = {owner}.
func (s *TaskListService) Create(ctx context.Context, name, owner string) (*domain.TaskList, error) {
	tl := domain.NewTaskList(name, owner)
	err := s.store.InsertList(ctx, tl)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, domain.ErrDuplicateList
	}
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return tl, nil
}

// Delete removes the list only when caller owns it. Ownership and
// existence are decided by the delete predicate in one step.
func (s *TaskListService) Delete(ctx context.Context, name, caller string) error {
	n, err := s.store.RemoveList(ctx, name, caller)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if n != 1 {
		return domain.ErrNotFoundOrDenied
	}
	return nil
}

func (s *TaskListService) All(ctx context.Context) ([]*domain.TaskList, error) {
	lists, err := s.store.AllLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

func (s *TaskListService) Get(ctx context.Context, name string) (*domain.TaskList, error) {
	tl, err := s.store.FindList(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.NotFoundError{Kind: domain.KindTaskList, Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return tl, nil
}

// AddTask appends a task; caller must be in the allowed set.
func (s *TaskListService) AddTask(ctx context.Context, name, caller, description string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		if !tl.CanModify(caller) {
			return domain.ErrPermissionDenied
		}
		return tl.AddTask(description)
	})
}

// RemoveTask removes a task; caller must be in the allowed set.
func (s *TaskListService) RemoveTask(ctx context.Context, name, caller, description string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		if !tl.CanModify(caller) {
			return domain.ErrPermissionDenied
		}
		return tl.RemoveTask(description)
	})
}

// SetState drives the task state machine. The assigned target validates
// the named user and sets the assignee without touching the open/closed
// axis; everything else goes through the closed/reopened cycle.
func (s *TaskListService) SetState(ctx context.Context, name, caller, task, state, user string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		if !tl.CanModify(caller) {
			return domain.ErrPermissionDenied
		}
		if state == domain.StateAssigned {
			if err := s.userExists(ctx, user); err != nil {
				return err
			}
			return tl.AssignTask(task, user)
		}
		return tl.SetStatus(task, state)
	})
}

// Comment appends a comment as caller. Any authenticated user may
// comment, membership is not required.
func (s *TaskListService) Comment(ctx context.Context, name, caller, task, text string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		return tl.AddComment(task, caller, text, time.Now().UTC())
	})
}

// Grant adds user to the allowed set; caller must be the owner and the
// user must exist.
func (s *TaskListService) Grant(ctx context.Context, name, caller, user string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		if tl.Owner != caller {
			return domain.ErrOwnerOnly
		}
		if err := s.userExists(ctx, user); err != nil {
			return err
		}
		return tl.Grant(user)
	})
}

// Revoke removes user from the allowed set; caller must be the owner and
// the user must exist.
func (s *TaskListService) Revoke(ctx context.Context, name, caller, user string) (*domain.TaskList, error) {
	return s.update(ctx, name, func(tl *domain.TaskList) error {
		if tl.Owner != caller {
			return domain.ErrOwnerOnly
		}
		if err := s.userExists(ctx, user); err != nil {
			return err
		}
		return tl.Revoke(user)
	})
}

func (s *TaskListService) userExists(ctx context.Context, login string) error {
	_, err := s.store.FindUser(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.NotFoundError{Kind: domain.KindUser, Name: login}
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}

func (s *TaskListService) update(ctx context.Context, name string, mutate func(*domain.TaskList) error) (*domain.TaskList, error) {
	unlock := s.locks.Lock(name)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt <= writeRetries; attempt++ {
		tl, err := s.store.FindList(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: domain.KindTaskList, Name: name}
		}
		if err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}

		// validation happens on the private copy; a failure here means
		// nothing was written
		if err := mutate(tl); err != nil {
			return nil, err
		}

		err = s.store.ReplaceList(ctx, tl)
		if errors.Is(err, store.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: domain.KindTaskList, Name: name}
		}
		if err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}
		return tl, nil
	}
	return nil, fmt.Errorf("update list %s: %w", name, lastErr)
}
