package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ctchen222/tictactoe-engine/internal/game"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bot")

var ErrNoMove = errors.New("no empty cell left")

// Player is the computer opponent. It always plays O.
type Player struct {
	ID         string
	calculator *MoveCalculator
	thinkTime  time.Duration
}

// NewBotPlayer creates a computer player that waits thinkTime before every move.
func NewBotPlayer(calculator *MoveCalculator, thinkTime time.Duration) *Player {
	return &Player{
		ID:         "bot-" + uuid.New().String()[:8],
		calculator: calculator,
		thinkTime:  thinkTime,
	}
}

// Mark returns the mark the computer places.
func (p *Player) Mark() game.PlayerMark {
	return ComputerMark
}

// ThinkTime is the pause taken before each move.
func (p *Player) ThinkTime() time.Duration {
	return p.thinkTime
}

// Play waits for the think time to pass and then picks a move on board.
// It returns ctx.Err() if ctx ends first, and ErrNoMove if the board is full.
func (p *Player) Play(ctx context.Context, board game.Board, difficulty Difficulty) (int, error) {
	ctx, span := tracer.Start(ctx, "bot.Play", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("game.difficulty", difficulty.String()),
	))
	defer span.End()

	if p.thinkTime > 0 {
		slog.DebugContext(ctx, "Bot is thinking", "player.id", p.ID, "think.time", p.thinkTime)
		timer := time.NewTimer(p.thinkTime)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "Bot move cancelled")
			return NoMove, ctx.Err()
		case <-timer.C:
		}
	}

	index, ok := p.calculator.CalculateNextMove(board, difficulty)
	if !ok {
		span.RecordError(ErrNoMove)
		span.SetStatus(codes.Error, "No move available")
		return NoMove, ErrNoMove
	}

	span.SetAttributes(attribute.Int("move.index", index))
	return index, nil
}
