package store

import (
	"context"
	"sync"
	"time"
)

type registryEntry struct {
	session   *Session
	expiresAt time.Time
}

// Registry tracks live sessions by id. Tokens carry the session id, so a
// session outlives individual requests until it logs out or its token expires.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]registryEntry
	onExpire func(*Session)
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]registryEntry),
		now:      time.Now,
	}
}

// OnExpire registers fn to run for every session dropped because its token
// expired. fn runs before the session is logged out, so CurrentUser still
// resolves.
func (r *Registry) OnExpire(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Add registers s until expiresAt. A zero expiresAt never expires.
func (r *Registry) Add(s *Session, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = registryEntry{session: s, expiresAt: expiresAt}
}

// Get returns a live session. An expired one is removed and logged out.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(r.now()) {
		r.expire(id)
		return nil, false
	}
	return e.session, true
}

// End logs the session out and forgets it.
func (r *Registry) End(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Logout()
	}
}

// Sweep drops every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.RLock()
	var expired []string
	for id, e := range r.sessions {
		if e.expired(now) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if r.expire(id) {
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) expire(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	fn := r.onExpire
	r.mu.Unlock()

	if !ok {
		return false
	}
	if fn != nil {
		fn(e.session)
	}
	e.session.Logout()
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (e registryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
