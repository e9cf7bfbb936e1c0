package console

import (
	"time"

	"ctchen222/tictactoe-engine/internal/bot"
	"ctchen222/tictactoe-engine/internal/dependencies/random"
	"ctchen222/tictactoe-engine/internal/logger"
	"ctchen222/tictactoe-engine/internal/session"

	"github.com/spf13/cobra"
)

// Flags are the command line settings of the console game.
type Flags struct {
	Mode       string
	Difficulty string
	Seed       uint64
	ThinkDelay time.Duration
	NoColor    bool
	LogLevel   string
}

// NewRootCmd creates the tictactoe command.
func NewRootCmd() *cobra.Command {
	flags := Flags{
		Mode:       string(session.HumanVsHuman),
		Difficulty: string(bot.Easy),
		ThinkDelay: session.DefaultThinkDelay,
		LogLevel:   "warn",
	}

	cmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Play tic-tac-toe in the terminal",
		Long: `tictactoe plays tic-tac-toe on a 3x3 board in the terminal.

Two players can share the keyboard, or X can play against the computer
at easy, medium or hard difficulty. Cells are numbered 1-9 from the top left.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := session.ParseMode(flags.Mode)
			if err != nil {
				return err
			}
			difficulty, err := bot.ParseDifficulty(flags.Difficulty)
			if err != nil {
				return err
			}
			level, err := logger.ParseLevel(flags.LogLevel)
			if err != nil {
				return err
			}

			sess := session.New(
				session.WithMode(mode, difficulty),
				session.WithRandom(random.FromSeed(flags.Seed)),
				session.WithThinkDelay(flags.ThinkDelay),
				session.WithLogger(logger.New(cmd.ErrOrStderr(), level, "text")),
			)
			defer sess.Close()

			return New(sess, cmd.InOrStdin(), cmd.OutOrStdout(), !flags.NoColor).Run(cmd.Context())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&flags.Mode, "mode", flags.Mode, "Game mode: pvp (two players) or pvc (against the computer)")
	cmd.Flags().StringVar(&flags.Difficulty, "difficulty", flags.Difficulty, "Computer difficulty: easy, medium, hard")
	cmd.Flags().Uint64Var(&flags.Seed, "seed", 0, "Random seed for the computer (0: seed from the clock)")
	cmd.Flags().DurationVar(&flags.ThinkDelay, "think-delay", flags.ThinkDelay, "Pause before the computer moves")
	cmd.Flags().BoolVar(&flags.NoColor, "no-color", false, "Disable coloured marks")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level written to stderr")

	return cmd
}

