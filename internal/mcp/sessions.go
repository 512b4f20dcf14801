package mcp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionHeader = "Mcp-Session-Id"

// SessionRegistry tracks live streamable-HTTP sessions. The transport layer
// owns the sessions themselves; the registry shadows their lifecycle so the
// health endpoint can report a count and so entries left behind by abrupt
// disconnects are evicted after an idle period instead of leaking.
type SessionRegistry struct {
	mu       sync.Mutex
	idleTTL  time.Duration
	now      func() time.Time
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	createdAt time.Time
	lastSeen  time.Time
}

func NewSessionRegistry(idleTTL time.Duration) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &SessionRegistry{
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// NewSessionID returns a fresh crypto-random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Insert registers a session id. Inserting an existing id refreshes it.
func (r *SessionRegistry) Insert(id string) {
	if id == "" {
		return
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[id]; ok {
		entry.lastSeen = now
		return
	}
	r.sessions[id] = &sessionEntry{createdAt: now, lastSeen: now}
}

// Touch refreshes the idle clock for a known session id.
func (r *SessionRegistry) Touch(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[id]; ok {
		entry.lastSeen = r.now()
	}
}

// Remove drops one session entry.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Contains reports whether the id is currently tracked.
func (r *SessionRegistry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// PruneIdle removes sessions idle longer than the TTL and returns how many
// were dropped.
func (r *SessionRegistry) PruneIdle() int {
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Start runs the eviction sweep until ctx is done.
func (r *SessionRegistry) Start(ctx context.Context) {
	interval := r.idleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.PruneIdle()
		}
	}
}

// withSessionTracking mirrors the transport's session lifecycle into the
// registry: a session id appearing on a response (initialize) is inserted,
// ids on requests are touched, and DELETE tears the entry down.
func withSessionTracking(next http.Handler, registry *SessionRegistry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(sessionHeader)
		if requestID != "" {
			registry.Touch(requestID)
		}

		next.ServeHTTP(w, r)

		if responseID := w.Header().Get(sessionHeader); responseID != "" {
			registry.Insert(responseID)
		}
		if r.Method == http.MethodDelete && requestID != "" {
			registry.Remove(requestID)
		}
	})
}
