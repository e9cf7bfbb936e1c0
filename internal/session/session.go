package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/dependencies/random"
	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultThinkDelay is the pause before the computer answers a move.
const DefaultThinkDelay = 500 * time.Millisecond

const subscriberBuffer = 16

var tracer = otel.Tracer("session")

var (
	ErrComputerTurn  = errors.New("waiting for the computer to move")
	ErrSessionClosed = errors.New("session closed")
)

// Session holds one player's game, mode and scores across rounds.
// All methods are safe for concurrent use.
type Session struct {
	ID string

	mu         sync.Mutex
	mode       Mode
	difficulty bot.Difficulty
	game       *game.Game
	scores     ScoreBoard
	round      int
	lastActive time.Time

	computer       *bot.Player
	random         random.Random
	thinkDelay     time.Duration
	cancelComputer context.CancelFunc

	subscribers map[int]chan events.Event
	nextSubID   int

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	logger  *slog.Logger
	metrics *metrics
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithMode sets the mode and difficulty of the first round.
func WithMode(mode Mode, difficulty bot.Difficulty) Option {
	return func(s *Session) {
		s.mode = mode
		s.difficulty = difficulty
	}
}

// WithRandom sets the random source used by the computer player.
func WithRandom(r random.Random) Option {
	return func(s *Session) { s.random = r }
}

// WithThinkDelay sets the pause before each computer move.
func WithThinkDelay(d time.Duration) Option {
	return func(s *Session) { s.thinkDelay = d }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session in human-vs-human mode with round 1 ready to play.
func New(opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:          uuid.New().String(),
		mode:        HumanVsHuman,
		difficulty:  bot.Easy,
		game:        game.NewGame(),
		round:       1,
		lastActive:  time.Now(),
		thinkDelay:  DefaultThinkDelay,
		subscribers: make(map[int]chan events.Event),
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default(),
		metrics:     newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = random.New()
	}
	s.computer = bot.NewBotPlayer(bot.NewMoveCalculator(s.random), s.thinkDelay)
	s.logger = s.logger.With(slog.String("component", "session"), slog.String("session.id", s.ID))
	return s
}

// Mode returns the current mode and difficulty.
func (s *Session) Mode() (Mode, bot.Difficulty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.difficulty
}

// Scores returns a copy of the score board.
func (s *Session) Scores() ScoreBoard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores
}

// LastActive is the time of the last move, round or mode change.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// View returns a snapshot of the session for rendering.
func (s *Session) View() proto.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Move plays index for the player whose turn it is. In human-vs-computer
// mode only X is played this way; the computer answers after the think delay.
func (s *Session) Move(ctx context.Context, index int) (proto.SessionState, error) {
	ctx, span := tracer.Start(ctx, "session.Move", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("move.index", index),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "Session closed")
		return s.viewLocked(), ErrSessionClosed
	}
	if s.awaitingComputerLocked() {
		span.SetStatus(codes.Error, "Computer to move")
		return s.viewLocked(), ErrComputerTurn
	}

	mark := s.game.CurrentTurn
	if err := s.game.Move(index); err != nil {
		s.logger.WarnContext(ctx, "rejected move", "move.index", index, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return s.viewLocked(), err
	}
	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("move.mark", string(mark)))

	s.afterMoveLocked(ctx, index, mark, false)
	if s.awaitingComputerLocked() {
		s.scheduleComputerLocked()
	}
	return s.viewLocked(), nil
}

// NewRound clears the board and gives the first move to X. Scores are kept
// and a pending computer move is dropped.
func (s *Session) NewRound(ctx context.Context) (proto.SessionState, error) {
	ctx, span := tracer.Start(ctx, "session.NewRound", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "Session closed")
		return s.viewLocked(), ErrSessionClosed
	}
	s.newRoundLocked(ctx)
	span.SetAttributes(attribute.Int("session.round", s.round))
	return s.viewLocked(), nil
}

// SetMode switches mode and difficulty and starts a new round. Scores are kept.
func (s *Session) SetMode(ctx context.Context, mode Mode, difficulty bot.Difficulty) (proto.SessionState, error) {
	ctx, span := tracer.Start(ctx, "session.SetMode", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("game.mode", string(mode)),
		attribute.String("game.difficulty", difficulty.String()),
	))
	defer span.End()

	mode, err := ParseMode(string(mode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid mode")
		return s.View(), err
	}
	difficulty, err = bot.ParseDifficulty(string(difficulty))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid difficulty")
		return s.View(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "Session closed")
		return s.viewLocked(), ErrSessionClosed
	}
	s.mode = mode
	s.difficulty = difficulty
	s.logger.InfoContext(ctx, "mode changed", "game.mode", mode, "game.difficulty", difficulty)
	s.publishLocked(events.TypeModeChanged, events.ModeChangedPayload{
		Mode:       string(mode),
		Difficulty: difficulty.String(),
	})
	s.newRoundLocked(ctx)
	return s.viewLocked(), nil
}

// Subscribe returns a channel of session events and a function that ends the
// subscription. Events are dropped for subscribers that fall behind.
func (s *Session) Subscribe() (<-chan events.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan events.Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels a pending computer move, ends all subscriptions and waits
// for background work to finish.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("session closed")
}

func (s *Session) awaitingComputerLocked() bool {
	return s.mode == HumanVsComputer && !s.game.IsOver() && s.game.CurrentTurn == s.computer.Mark()
}

func (s *Session) afterMoveLocked(ctx context.Context, index int, mark game.PlayerMark, computer bool) {
	s.lastActive = time.Now()
	s.metrics.recordMove(ctx, s.mode, computer)
	s.publishLocked(events.TypeMovePlayed, events.MovePlayedPayload{
		Index:    index,
		Mark:     mark,
		Computer: computer,
	})

	if !s.game.IsOver() {
		return
	}
	s.scores.Record(s.game.Status, s.game.Winner)
	s.metrics.recordRound(ctx, s.mode, s.game.Status, s.game.Winner)
	s.logger.InfoContext(ctx, "round over",
		"session.round", s.round,
		"round.status", s.game.Status,
		"round.winner", s.game.Winner,
		"score.x", s.scores.X,
		"score.o", s.scores.O,
	)
	s.publishLocked(events.TypeRoundOver, events.RoundOverPayload{
		Round:  s.round,
		Status: s.game.Status,
		Winner: s.game.Winner,
		ScoreX: s.scores.X,
		ScoreO: s.scores.O,
	})
}

func (s *Session) newRoundLocked(ctx context.Context) {
	if s.cancelComputer != nil {
		s.cancelComputer()
		s.cancelComputer = nil
	}
	s.round++
	s.game.StartNewRound()
	s.lastActive = time.Now()
	s.logger.InfoContext(ctx, "new round", "session.round", s.round)
	s.publishLocked(events.TypeRoundStarted, events.RoundStartedPayload{Round: s.round})
}

// scheduleComputerLocked starts the computer's reply for the current round.
// The reply is applied only if the round is unchanged when the delay ends.
func (s *Session) scheduleComputerLocked() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelComputer = cancel

	round := s.round
	board := s.game.Board
	difficulty := s.difficulty

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.playComputer(ctx, round, board, difficulty)
	}()
}

func (s *Session) playComputer(ctx context.Context, round int, board game.Board, difficulty bot.Difficulty) {
	ctx, span := tracer.Start(ctx, "session.playComputer", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int("session.round", round),
		attribute.String("game.difficulty", difficulty.String()),
	))
	defer span.End()

	start := time.Now()
	index, err := s.computer.Play(ctx, board, difficulty)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.DebugContext(ctx, "computer move cancelled", "session.round", round)
			return
		}
		s.logger.ErrorContext(ctx, "computer could not move", "session.round", round, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer could not move")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.round != round || !s.awaitingComputerLocked() {
		s.logger.DebugContext(ctx, "dropping stale computer move", "session.round", round, "move.index", index)
		return
	}
	index, err = s.applyComputerMoveLocked(ctx, index)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move rejected")
		return
	}
	s.cancelComputer = nil
	span.SetAttributes(attribute.Int("move.index", index))
	s.metrics.recordComputerMove(ctx, difficulty.String(), time.Since(start))
	s.afterMoveLocked(ctx, index, s.computer.Mark(), true)
}

// applyComputerMoveLocked plays index for the computer. A rejected index falls
// back to the first empty cell so the round never stays on the computer's turn.
func (s *Session) applyComputerMoveLocked(ctx context.Context, index int) (int, error) {
	err := s.game.Move(index)
	if err == nil {
		return index, nil
	}
	s.logger.ErrorContext(ctx, "computer move rejected", "move.index", index, "error", err)

	empty := s.game.Board.EmptyCells()
	if len(empty) == 0 {
		return bot.NoMove, fmt.Errorf("failed to apply computer move %d: %w", index, err)
	}
	fallback := empty[0]
	if err := s.game.Move(fallback); err != nil {
		return bot.NoMove, fmt.Errorf("failed to apply fallback computer move %d: %w", fallback, err)
	}
	s.logger.WarnContext(ctx, "computer played fallback cell", "move.index", fallback)
	return fallback, nil
}

func (s *Session) publishLocked(eventType string, payload any) {
	event, err := events.New(eventType, s.ID, payload)
	if err != nil {
		s.logger.Error("failed to build event", "event.type", eventType, "error", err)
		return
	}
	for id, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn("dropping event for slow subscriber", "event.type", eventType, "subscriber.id", id)
		}
	}
}

func (s *Session) viewLocked() proto.SessionState {
	g := s.game.Snapshot()
	return proto.SessionState{
		ID:         s.ID,
		Mode:       string(s.mode),
		Difficulty: s.difficulty.String(),
		Round:      s.round,
		Board:      g.Board,
		Next:       g.CurrentTurn,
		Status:     g.Status,
		Winner:     g.Winner,
		Message:    StatusText(g),
		Scores:     proto.Scores{X: s.scores.X, O: s.scores.O},
		Thinking:   s.awaitingComputerLocked(),
	}
}

// StatusText is the line shown above the board.
func StatusText(g game.Game) string {
	switch g.Status {
	case game.Won:
		return fmt.Sprintf("Player %s wins!", g.Winner)
	case game.Drawn:
		return "It's a draw!"
	default:
		return fmt.Sprintf("Player %s's turn", g.CurrentTurn)
	}
}
