// Package session keeps the per-visitor planner state. Each session owns its
// own plan store and chat history; nothing mutable is shared across sessions.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session IDs
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session survives
const DefaultTTL = 24 * time.Hour

// Session is one visitor's planner context. Its accessors must only be used
// inside Registry.Do, which holds the session lock.
type Session struct {
	mu sync.Mutex

	id        string
	userID    *uuid.UUID
	diet      food.DietType
	basis     plan.CalorieBasis
	plan      *plan.Store
	chat      *ai.Conversation
	createdAt time.Time
	// expiresAt is unix nanoseconds, read by Sweep without the session lock
	expiresAt atomic.Int64
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// UserID returns the logged-in user, or nil for a visitor
func (s *Session) UserID() *uuid.UUID { return s.userID }

// Diet returns the diet type that narrows the catalog
func (s *Session) Diet() food.DietType { return s.diet }

// Basis returns whether the target follows BMR or TDEE
func (s *Session) Basis() plan.CalorieBasis { return s.basis }

// Plan returns the session's plan store
func (s *Session) Plan() *plan.Store { return s.plan }

// Chat returns the conversation, or nil before the first chat call
func (s *Session) Chat() *ai.Conversation { return s.chat }

// CreatedAt returns when the session was opened
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// ExpiresAt returns the current idle deadline
func (s *Session) ExpiresAt() time.Time { return time.Unix(0, s.expiresAt.Load()) }

// SetDiet changes the diet type
func (s *Session) SetDiet(diet food.DietType) { s.diet = diet }

// SetBasis changes the calorie basis
func (s *Session) SetBasis(basis plan.CalorieBasis) { s.basis = basis }

// SetChat replaces the conversation
func (s *Session) SetChat(chat *ai.Conversation) { s.chat = chat }

// Registry holds live sessions in memory
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.Named("session-registry"),
		stop:     make(chan struct{}),
	}
}

// Create registers a new session around store
func (r *Registry) Create(userID *uuid.UUID, diet food.DietType, basis plan.CalorieBasis, store *plan.Store) *Session {
	now := r.now()
	s := &Session{
		id:        uuid.NewString(),
		userID:    userID,
		diet:      diet,
		basis:     basis,
		plan:      store,
		createdAt: now,
	}
	s.expiresAt.Store(now.Add(r.ttl).UnixNano())

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.logger.Debug("Session created",
		zap.String("session_id", s.id),
		zap.Bool("authenticated", userID != nil),
	)
	return s
}

// Do runs fn with exclusive access to the session and extends its expiry.
// Calls on different sessions run in parallel.
func (r *Registry) Do(id string, fn func(*Session) error) error {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := r.now()
	if now.After(s.ExpiresAt()) {
		r.Delete(id)
		return ErrSessionNotFound
	}
	s.expiresAt.Store(now.Add(r.ttl).UnixNano())

	return fn(s)
}

// Delete removes a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops expired sessions and returns how many were removed
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt()) {
			delete(r.sessions, id)
			removed++
			r.logger.Debug("Cleaned up expired session", zap.String("session_id", id))
		}
	}
	return removed
}

// StartCleanup sweeps expired sessions every interval until Stop is called
func (r *Registry) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.logger.Info("Expired sessions removed", zap.Int("count", n))
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends the cleanup loop
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
