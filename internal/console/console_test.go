package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/dependencies/mocks"
	"ctchen222/tictactoe-engine/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{
		session.WithThinkDelay(0),
		session.WithRandom(mocks.NewMockRandom()),
		session.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	}, opts...)
	s := session.New(opts...)
	t.Cleanup(s.Close)
	return s
}

func run(t *testing.T, sess *session.Session, input string) string {
	t.Helper()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := New(sess, strings.NewReader(input), &out, false).Run(ctx)
	require.NoError(t, err)
	return out.String()
}

func TestConsole_HumanVsHuman(t *testing.T) {
	// Given: X takes the top row while O plays the middle row, with some bad input
	sess := newSession(t)
	input := "abc\n0\n1\n1\n4\n2\n5\n3\nn\n"

	// When: the game is played
	out := run(t, sess, input)

	// Then: the transcript matches the console program
	assert.True(t, strings.HasPrefix(out, "Welcome to Tic Tac Toe!\n  |   |  \n---------\n"), out)
	assert.Contains(t, out, "Player X, enter your move (1-9): ")
	assert.Contains(t, out, "Player O, enter your move (1-9): ")
	assert.Equal(t, 1, strings.Count(out, "Please enter a number between 1 and 9."))
	assert.Equal(t, 2, strings.Count(out, "Invalid move. Try again."))
	assert.Contains(t, out, "X | X | X\n---------\nO | O |  \n")
	assert.Contains(t, out, "Player X wins!\nScore: X 1 - O 0\n")
	assert.True(t, strings.HasSuffix(out, "Play again? (y/n): Thanks for playing!\n"), out)

	assert.Equal(t, session.ScoreBoard{X: 1, O: 0}, sess.Scores())
}

func TestConsole_Draw(t *testing.T) {
	sess := newSession(t)
	// X: 1 2 6 7 9, O: 3 4 5 8 (1-based) fills the board with no line.
	out := run(t, sess, "1\n3\n2\n4\n6\n5\n7\n8\n9\nn\n")

	assert.Contains(t, out, "It's a draw!\nScore: X 0 - O 0\n")
}

func TestConsole_HumanVsComputer(t *testing.T) {
	// Given: an easy computer whose random source always picks the first free cell
	sess := newSession(t, session.WithMode(session.HumanVsComputer, bot.Easy))

	// When: X plays 5, 3, 7 and then asks for a second round
	out := run(t, sess, "5\n3\n7\ny\n")

	// Then: the computer answers with cells 1 and 2 and X wins on the diagonal
	assert.Contains(t, out, "Computer plays 1.")
	assert.Contains(t, out, "Computer plays 2.")
	assert.NotContains(t, out, "Player O, enter your move")
	assert.Contains(t, out, "Player X wins!\nScore: X 1 - O 0\n")

	// And: the second round starts on an empty board before input runs out
	second := out[strings.Index(out, "Play again? (y/n): "):]
	assert.Contains(t, second, "  |   |  \n---------\n")
	assert.Equal(t, 2, sess.View().Round)
}

func TestConsole_PlayAgainRepromptsOnUnknownAnswer(t *testing.T) {
	sess := newSession(t)
	out := run(t, sess, "1\n4\n2\n5\n3\nmaybe\nno\n")

	assert.Equal(t, 2, strings.Count(out, "Play again? (y/n): "))
	assert.True(t, strings.HasSuffix(out, "Thanks for playing!\n"))
}

func TestConsole_StopsOnCancelledContext(t *testing.T) {
	sess := newSession(t,
		session.WithMode(session.HumanVsComputer, bot.Easy),
		session.WithThinkDelay(time.Hour),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(sess, strings.NewReader("5\n"), &out, false).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsole_HumanVsComputerOverManyRoundsLogsNoWarnings(t *testing.T) {
	// Given: a session logging warnings into a buffer
	var logs bytes.Buffer
	sess := newSession(t,
		session.WithMode(session.HumanVsComputer, bot.Easy),
		session.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))),
	)

	// When: the same won round is played four times
	input := strings.Repeat("5\n3\n7\ny\n", 3) + "5\n3\n7\nn\n"
	out := run(t, sess, input)

	// Then: every computer reply is seen and no event is dropped
	assert.Equal(t, 8, strings.Count(out, "Computer plays"))
	assert.Contains(t, out, "Score: X 4 - O 0")
	assert.Empty(t, logs.String())
}
