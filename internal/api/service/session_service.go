package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/dependencies/random"
	"ctchen222/tictactoe-engine/internal/repository"
	"ctchen222/tictactoe-engine/internal/session"
	"ctchen222/tictactoe-engine/pkg/proto"
)

// SessionService defines the interface for session-related business logic.
type SessionService interface {
	Create(ctx context.Context, mode session.Mode, difficulty bot.Difficulty) (proto.SessionState, error)
	Get(ctx context.Context, id string) (proto.SessionState, error)
	Move(ctx context.Context, id string, index int) (proto.SessionState, error)
	NewRound(ctx context.Context, id string) (proto.SessionState, error)
	SetMode(ctx context.Context, id string, mode session.Mode, difficulty bot.Difficulty) (proto.SessionState, error)
	Delete(ctx context.Context, id string) error
	Session(ctx context.Context, id string) (*session.Session, error)
	SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

// Options are the defaults applied to every new session.
type Options struct {
	ThinkDelay        time.Duration
	DefaultMode       session.Mode
	DefaultDifficulty bot.Difficulty
	Random            random.Random
	Logger            *slog.Logger
}

type sessionService struct {
	repo   repository.SessionRepository
	opts   Options
	logger *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo repository.SessionRepository, opts Options) SessionService {
	if opts.DefaultMode == "" {
		opts.DefaultMode = session.HumanVsHuman
	}
	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = bot.Easy
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &sessionService{
		repo:   repo,
		opts:   opts,
		logger: opts.Logger.With(slog.String("component", "session-service")),
	}
}

// Create starts a session. Empty mode or difficulty fall back to the configured defaults.
func (s *sessionService) Create(ctx context.Context, mode session.Mode, difficulty bot.Difficulty) (proto.SessionState, error) {
	if mode == "" {
		mode = s.opts.DefaultMode
	}
	if difficulty == "" {
		difficulty = s.opts.DefaultDifficulty
	}
	mode, err := session.ParseMode(string(mode))
	if err != nil {
		return proto.SessionState{}, err
	}
	difficulty, err = bot.ParseDifficulty(string(difficulty))
	if err != nil {
		return proto.SessionState{}, err
	}

	sess := session.New(
		session.WithMode(mode, difficulty),
		session.WithThinkDelay(s.opts.ThinkDelay),
		session.WithRandom(s.opts.Random),
		session.WithLogger(s.opts.Logger),
	)
	if err := s.repo.Save(ctx, sess); err != nil {
		sess.Close()
		return proto.SessionState{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.InfoContext(ctx, "session created", "session.id", sess.ID, "game.mode", mode, "game.difficulty", difficulty)
	return sess.View(), nil
}

// Get returns the current state of a session.
func (s *sessionService) Get(ctx context.Context, id string) (proto.SessionState, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return proto.SessionState{}, err
	}
	return sess.View(), nil
}

// Move plays a human move in a session.
func (s *sessionService) Move(ctx context.Context, id string, index int) (proto.SessionState, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return proto.SessionState{}, err
	}
	return sess.Move(ctx, index)
}

// NewRound resets the board of a session.
func (s *sessionService) NewRound(ctx context.Context, id string) (proto.SessionState, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return proto.SessionState{}, err
	}
	return sess.NewRound(ctx)
}

// SetMode changes the mode of a session. An empty difficulty keeps the current one.
func (s *sessionService) SetMode(ctx context.Context, id string, mode session.Mode, difficulty bot.Difficulty) (proto.SessionState, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return proto.SessionState{}, err
	}
	if difficulty == "" {
		_, difficulty = sess.Mode()
	}
	return sess.SetMode(ctx, mode, difficulty)
}

// Delete removes and closes a session.
func (s *sessionService) Delete(ctx context.Context, id string) error {
	sess, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	sess.Close()
	s.logger.InfoContext(ctx, "session deleted", "session.id", id)
	return nil
}

// Session returns the live session, for subscribers.
func (s *sessionService) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.repo.FindByID(ctx, id)
}

// SweepIdle deletes sessions with no activity for maxIdle and returns how many were removed.
func (s *sessionService) SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	idle, err := s.repo.FindIdleSince(ctx, time.Now().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("failed to list idle sessions: %w", err)
	}

	removed := 0
	for _, sess := range idle {
		if _, err := s.repo.Delete(ctx, sess.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete idle session", "session.id", sess.ID, "error", err)
			continue
		}
		sess.Close()
		removed++
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "idle sessions removed", "count", removed, "max.idle", maxIdle)
	}
	return removed, nil
}

// RunJanitor calls SweepIdle every interval until ctx is done.
func RunJanitor(ctx context.Context, svc SessionService, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Session janitor stopping.")
			return
		case <-ticker.C:
			if _, err := svc.SweepIdle(ctx, maxIdle); err != nil {
				slog.ErrorContext(ctx, "session sweep failed", "error", err)
			}
		}
	}
}
