package session

import (
	"sync"

	"taskboard/internal/domain"
)

// Conn is the write side of a live connection. Push must not block; it
// reports whether the message was accepted.
type Conn interface {
	Push(msg []byte) bool
}

// Registry maps an authenticated login to its single live connection.
// Register holds the lock across the existence check and the insert, so
// two connections logging in as the same identity at once yield exactly
// one success.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Register(login string, c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[login]; ok {
		return domain.ErrAlreadyLoggedIn
	}
	r.conns[login] = c
	activeSessions.Inc()
	return nil
}

// Unregister drops the binding, but only if it still points at c. A slow
// disconnect must not evict a session the identity re-established on a
// newer connection.
func (r *Registry) Unregister(login string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[login]; ok && cur == c {
		delete(r.conns, login)
		activeSessions.Dec()
	}
}

func (r *Registry) Lookup(login string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[login]
	return c, ok
}

func (r *Registry) IsRegistered(login string) bool {
	_, ok := r.Lookup(login)
	return ok
}

// Logins returns a snapshot of all registered identities.
func (r *Registry) Logins() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]string, 0, len(r.conns))
	for login := range r.conns {
		res = append(res, login)
	}
	return res
}
