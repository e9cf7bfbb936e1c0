package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ctchen222/tictactoe-engine/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, id string) *session.Session {
	t.Helper()
	s := session.New(
		session.WithID(id),
		session.WithThinkDelay(0),
		session.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)
	t.Cleanup(s.Close)
	return s
}

func TestSessionRepository_SaveFindDelete(t *testing.T) {
	// Given: an empty repository and a session
	ctx := context.Background()
	repo := NewSessionRepository()
	s := newTestSession(t, "session-1")

	// When: the session is saved
	require.NoError(t, repo.Save(ctx, s))

	// Then: it can be found and counted
	got, err := repo.FindByID(ctx, "session-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// When: it is deleted
	deleted, err := repo.Delete(ctx, "session-1")
	require.NoError(t, err)
	assert.Same(t, s, deleted)

	// Then: it is gone
	_, err = repo.FindByID(ctx, "session-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = repo.Delete(ctx, "session-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepository_FindIdleSince(t *testing.T) {
	// Given: two sessions, one touched after the cutoff
	ctx := context.Background()
	repo := NewSessionRepository()
	idle := newTestSession(t, "idle")
	require.NoError(t, repo.Save(ctx, idle))

	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)

	active := newTestSession(t, "active")
	require.NoError(t, repo.Save(ctx, active))

	// When: looking for idle sessions
	got, err := repo.FindIdleSince(ctx, cutoff)

	// Then: only the older one is returned
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "idle", got[0].ID)
}
