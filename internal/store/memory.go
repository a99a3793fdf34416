package store

import (
	"context"
	"encoding/json"
	"sync"

	"taskboard/internal/domain"
)

// Memory is a map-backed Store with the same semantics as Postgres,
// including the version check on ReplaceList. Used by tests and by the
// tools when no database is around.
type Memory struct {
	mu    sync.RWMutex
	users map[string]domain.User
	lists map[string]*memList
}

type memList struct {
	doc     []byte
	owner   string
	version int64
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]domain.User),
		lists: make(map[string]*memList),
	}
}

func (s *Memory) FindUser(_ context.Context, login string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[login]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *Memory) InsertUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Login]; ok {
		return ErrDuplicate
	}
	s.users[u.Login] = *u
	return nil
}

func (s *Memory) FindList(_ context.Context, name string) (*domain.TaskList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[name]
	if !ok {
		return nil, ErrNotFound
	}
	return decodeList(l.doc, l.version)
}

func (s *Memory) AllLists(_ context.Context) ([]*domain.TaskList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []*domain.TaskList
	for _, l := range s.lists {
		tl, err := decodeList(l.doc, l.version)
		if err != nil {
			return nil, err
		}
		res = append(res, tl)
	}
	return res, nil
}

func (s *Memory) InsertList(_ context.Context, tl *domain.TaskList) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[tl.Name]; ok {
		return ErrDuplicate
	}
	s.lists[tl.Name] = &memList{doc: doc, owner: tl.Owner, version: 1}
	tl.Version = 1
	return nil
}

func (s *Memory) ReplaceList(_ context.Context, tl *domain.TaskList) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[tl.Name]
	if !ok {
		return ErrNotFound
	}
	if l.version != tl.Version {
		return ErrVersionConflict
	}
	l.doc = doc
	l.owner = tl.Owner
	l.version++
	tl.Version = l.version
	return nil
}

func (s *Memory) RemoveList(_ context.Context, name, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[name]
	if !ok || l.owner != owner {
		return 0, nil
	}
	delete(s.lists, name)
	return 1, nil
}
