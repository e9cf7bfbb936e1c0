package session

import (
	"context"
	"time"

	"ctchen222/tictactoe-engine/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var meter = otel.Meter("session")

type metrics struct {
	moves        metric.Int64Counter
	rounds       metric.Int64Counter
	computerMove metric.Float64Histogram
}

func newMetrics() *metrics {
	fallback := noop.NewMeterProvider().Meter("session")
	m := &metrics{}

	var err error
	if m.moves, err = meter.Int64Counter("ttt.moves",
		metric.WithDescription("Moves applied to a board"),
	); err != nil {
		otel.Handle(err)
		m.moves, _ = fallback.Int64Counter("ttt.moves")
	}
	if m.rounds, err = meter.Int64Counter("ttt.rounds.completed",
		metric.WithDescription("Rounds that ended in a win or a draw"),
	); err != nil {
		otel.Handle(err)
		m.rounds, _ = fallback.Int64Counter("ttt.rounds.completed")
	}
	if m.computerMove, err = meter.Float64Histogram("ttt.computer.move.duration",
		metric.WithDescription("Time from scheduling a computer move to applying it"),
		metric.WithUnit("ms"),
	); err != nil {
		otel.Handle(err)
		m.computerMove, _ = fallback.Float64Histogram("ttt.computer.move.duration")
	}
	return m
}

func (m *metrics) recordMove(ctx context.Context, mode Mode, computer bool) {
	m.moves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.mode", string(mode)),
		attribute.Bool("move.computer", computer),
	))
}

func (m *metrics) recordRound(ctx context.Context, mode Mode, status game.Status, winner game.PlayerMark) {
	m.rounds.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.mode", string(mode)),
		attribute.String("round.status", string(status)),
		attribute.String("round.winner", string(winner)),
	))
}

func (m *metrics) recordComputerMove(ctx context.Context, difficulty string, elapsed time.Duration) {
	m.computerMove.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("game.difficulty", difficulty),
	))
}
