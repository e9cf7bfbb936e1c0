package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/tictactoe-engine/internal/events"
	"ctchen222/tictactoe-engine/internal/game"
	"ctchen222/tictactoe-engine/internal/session"

	"github.com/muesli/termenv"
)

const (
	welcomeText  = "Welcome to Tic Tac Toe!"
	invalidMove  = "Invalid move. Try again."
	notANumber   = "Please enter a number between 1 and 9."
	playAgainAsk = "Play again? (y/n): "
	goodbyeText  = "Thanks for playing!"
)

// Game plays a session on a terminal, one line of input per move.
type Game struct {
	sess    *session.Session
	in      *bufio.Scanner
	out     *termenv.Output
	updates <-chan events.Event
}

// New creates a console game. Marks are coloured only when color is set and out supports it.
func New(sess *session.Session, in io.Reader, out io.Writer, color bool) *Game {
	profile := termenv.Ascii
	if color {
		profile = termenv.NewOutput(out).EnvColorProfile()
	}
	return &Game{
		sess: sess,
		in:   bufio.NewScanner(in),
		out:  termenv.NewOutput(out, termenv.WithProfile(profile)),
	}
}

// Run plays rounds until the player declines another one or input ends.
func (g *Game) Run(ctx context.Context) error {
	// Only the computer's replies are read from the event stream.
	if mode, _ := g.sess.Mode(); mode == session.HumanVsComputer {
		updates, unsubscribe := g.sess.Subscribe()
		defer unsubscribe()
		g.updates = updates
	}

	g.println(welcomeText)
	for {
		if err := g.playRound(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				g.println("")
				return nil
			}
			return err
		}

		again, err := g.askPlayAgain()
		if err != nil || !again {
			g.println(goodbyeText)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if _, err := g.sess.NewRound(ctx); err != nil {
			return err
		}
	}
}

func (g *Game) playRound(ctx context.Context) error {
	state := g.sess.View()
	g.printBoard(state.Board)

	for state.Status == game.InProgress {
		if state.Thinking {
			index, err := g.waitForComputer(ctx)
			if err != nil {
				return err
			}
			g.println(fmt.Sprintf("Computer plays %d.", index+1))
		} else if err := g.humanMove(ctx, state.Next); err != nil {
			return err
		}

		state = g.sess.View()
		g.printBoard(state.Board)
	}

	g.println(state.Message)
	g.println(fmt.Sprintf("Score: %s %d - %s %d", g.mark(game.PlayerX), state.Scores.X, g.mark(game.PlayerO), state.Scores.O))
	return nil
}

// humanMove prompts until mark has made a legal move.
func (g *Game) humanMove(ctx context.Context, mark game.PlayerMark) error {
	g.drainUpdates()
	for {
		line, err := g.prompt(fmt.Sprintf("Player %s, enter your move (1-9): ", g.mark(mark)))
		if err != nil {
			return err
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			g.println(notANumber)
			continue
		}

		_, err = g.sess.Move(ctx, n-1)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, game.ErrInvalidMove), errors.Is(err, game.ErrCellOccupied):
			g.println(invalidMove)
		default:
			return err
		}
	}
}

func (g *Game) waitForComputer(ctx context.Context) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case event, ok := <-g.updates:
			if !ok {
				return 0, session.ErrSessionClosed
			}
			if event.Type != events.TypeMovePlayed {
				continue
			}
			var payload events.MovePlayedPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				return 0, fmt.Errorf("failed to decode move event: %w", err)
			}
			if payload.Computer {
				return payload.Index, nil
			}
		}
	}
}

// drainUpdates discards events left over from earlier moves and rounds.
func (g *Game) drainUpdates() {
	for {
		select {
		case _, ok := <-g.updates:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (g *Game) askPlayAgain() (bool, error) {
	for {
		line, err := g.prompt(playAgainAsk)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (g *Game) prompt(text string) (string, error) {
	fmt.Fprint(g.out, text)
	if !g.in.Scan() {
		if err := g.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(g.in.Text()), nil
}

func (g *Game) println(text string) {
	fmt.Fprintln(g.out, text)
}

func (g *Game) printBoard(b game.Board) {
	g.println(b.Render(g.mark))
}

// mark renders a cell, coloured by player.
func (g *Game) mark(m game.PlayerMark) string {
	switch m {
	case game.PlayerX:
		return g.out.String(string(m)).Foreground(g.out.Color("#E88388")).Bold().String()
	case game.PlayerO:
		return g.out.String(string(m)).Foreground(g.out.Color("#66C2CD")).Bold().String()
	default:
		return " "
	}
}

