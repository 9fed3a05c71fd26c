package shell

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ahrav/shellguard/pkg/common/logger"
)

// SessionFactory spawns a new session with the given id. The registry stays
// agnostic of spawn mechanics (PTY setup, classifier wiring) so tests can
// register sessions built around scripted terminals.
type SessionFactory func(ctx context.Context, id string) (*Session, error)

// Registry multiplexes independent shell sessions by id. It always holds a
// main session, created at construction, that every lookup with an empty or
// unknown id resolves to. The fallback keeps a single-session mental model
// working: callers that never register extra sessions always land on main.
type Registry struct {
	factory SessionFactory
	logger  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry builds a registry and immediately spawns the main session
// through the factory. Failure to spawn main is fatal: a registry with no
// fallback target cannot honor Get.
func NewRegistry(ctx context.Context, factory SessionFactory, log *logger.Logger) (*Registry, error) {
	r := &Registry{
		factory:  factory,
		logger:   log.With("component", "shell_registry"),
		sessions: make(map[string]*Session),
	}

	main, err := factory(ctx, MainSessionID)
	if err != nil {
		return nil, fmt.Errorf("creating main session: %w", err)
	}
	r.sessions[MainSessionID] = main

	return r, nil
}

// Register spawns a fresh session under a new unique id and returns the id.
// Extra sessions exist so long-running processes (dev servers, watchers) can
// be parked without blocking the main session.
func (r *Registry) Register(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", fmt.Errorf("registry is closed")
	}

	id := uuid.New().String()
	for {
		if _, exists := r.sessions[id]; !exists {
			break
		}
		id = uuid.New().String()
	}

	session, err := r.factory(ctx, id)
	if err != nil {
		return "", fmt.Errorf("creating session %s: %w", id, err)
	}
	r.sessions[id] = session
	r.logger.Info(ctx, "registered shell session", "session_id", id)

	return id, nil
}

// Get resolves an id to its session. An empty or unknown id resolves to the
// main session rather than failing; a stale id after a registry reset then
// degrades to main instead of breaking the caller.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id != "" {
		if s, ok := r.sessions[id]; ok {
			return s
		}
	}
	return r.sessions[MainSessionID]
}

// Cleanup closes every session and empties the registry. It is idempotent;
// a second call is a no-op. The registry is unusable afterwards.
func (r *Registry) Cleanup(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for id, s := range r.sessions {
		if err := s.Close(); err != nil {
			r.logger.Warn(ctx, "closing shell session failed", "session_id", id, "error", err)
		}
	}
	r.sessions = make(map[string]*Session)
	r.logger.Info(ctx, "all shell sessions closed")
}
