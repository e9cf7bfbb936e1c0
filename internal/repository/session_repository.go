package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ctchen222/tictactoe-engine/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Save(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) (*session.Session, error)
	FindIdleSince(ctx context.Context, cutoff time.Time) ([]*session.Session, error)
	Count(ctx context.Context) (int, error)
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// Ensure memorySessionRepository implements the interface
var _ SessionRepository = (*memorySessionRepository)(nil)

// NewSessionRepository creates a new in-memory SessionRepository.
func NewSessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*session.Session),
	}
}

// Save stores s under its id, replacing any previous session with that id.
func (r *memorySessionRepository) Save(ctx context.Context, s *session.Session) error {
	_, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

// FindByID retrieves a session by id.
func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	_, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session and returns it so the caller can close it.
func (r *memorySessionRepository) Delete(ctx context.Context, id string) (*session.Session, error) {
	_, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(r.sessions, id)
	return s, nil
}

// FindIdleSince returns the sessions last active before cutoff, oldest first.
func (r *memorySessionRepository) FindIdleSince(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	_, span := tracer.Start(ctx, "SessionRepository.FindIdleSince")
	defer span.End()

	r.mu.RLock()
	idle := make([]*session.Session, 0)
	for _, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(idle, func(i, j int) bool {
		return idle[i].LastActive().Before(idle[j].LastActive())
	})
	span.SetAttributes(attribute.Int("session.idle", len(idle)))
	return idle, nil
}

// Count returns the number of stored sessions.
func (r *memorySessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
