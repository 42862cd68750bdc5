package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/spf13/cobra"
)

// errQuit reports that the player asked to stop or input ran out.
var errQuit = errors.New("quit")

func newPlayCmd(svc Services) *cobra.Command {
	return &cobra.Command{
		Use:   "play <set>",
		Short: "Quiz yourself on a set",
		Long: `Play a set round by round. Each card shows its front; press Enter to see
the back, then say whether you knew it. After each round the cards you
missed more often than you knew come back, mixed with a few others for
review, until every answer in the session is correct.

Enter q at any prompt to stop. The session score is recorded as the set's
best score when it beats the previous one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			p := &player{
				games:    svc.Games,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
				errOut:   cmd.ErrOrStderr(),
				interval: svc.TickInterval,
			}
			return p.play(ctx, set.ID)
		},
	}
}

// player drives one game session from line-based input.
type player struct {
	games    service.GameService
	in       *bufio.Scanner
	out      io.Writer
	errOut   io.Writer
	interval time.Duration

	mu      sync.Mutex
	elapsed string
}

func (p *player) play(ctx context.Context, setID string) error {
	view, err := p.games.Start(ctx, setID)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	defer func() { _ = p.games.End(context.WithoutCancel(ctx), view.ID) }()

	p.setElapsed(view.Elapsed)

	done := make(chan struct{})
	defer close(done)
	go game.RunTimer(ctx, done, p.interval, func(time.Time) {
		if v, err := p.games.Get(ctx, view.ID); err == nil {
			p.setElapsed(v.Elapsed)
		}
	})

	fmt.Fprintf(p.out, "Playing %s: %s. Enter q at any prompt to stop.\n", view.SetName, plural(view.Total, "card"))

	for {
		var next *service.GameView

		switch view.State {
		case game.StateInRound:
			correct, err := p.askCard(view)
			switch {
			case errors.Is(err, errQuit):
				next, err = p.games.Stop(ctx, view.ID)
			case err != nil:
				return err
			default:
				next, err = p.games.Answer(ctx, view.ID, correct)
			}
			if next, err = p.keepFinished(next, err); err != nil {
				return err
			}

		case game.StateRoundComplete:
			p.printRoundSummary(view)
			choice, err := p.askNextRound()
			if err != nil && !errors.Is(err, errQuit) {
				return err
			}
			switch {
			case err != nil || choice == "n":
				next, err = p.games.Stop(ctx, view.ID)
			case choice == "r":
				next, err = p.games.Restart(ctx, view.ID)
			default:
				next, err = p.games.Continue(ctx, view.ID)
			}
			if next, err = p.keepFinished(next, err); err != nil {
				return err
			}

		case game.StateSessionComplete:
			p.printFinal(view)
			return nil
		}

		view = next
		p.setElapsed(view.Elapsed)
	}
}

// keepFinished tolerates a failed best-score save: the session still
// finished, so the result is shown with a warning.
func (p *player) keepFinished(view *service.GameView, err error) (*service.GameView, error) {
	if err == nil {
		return view, nil
	}
	if view != nil && view.State == game.StateSessionComplete {
		fmt.Fprintf(p.errOut, "warning: best score not saved: %v\n", err)
		return view, nil
	}
	return nil, err
}

func (p *player) askCard(view *service.GameView) (bool, error) {
	card := view.Current
	fmt.Fprintf(p.out, "\n[%s] Round %d, card %d of %d\n", p.getElapsed(), view.Round, view.Position, view.Total)
	fmt.Fprintf(p.out, "Q: %s\n", card.Front)

	line, err := p.prompt("Press Enter to show the answer: ")
	if err != nil {
		return false, err
	}
	if line == "q" {
		return false, errQuit
	}

	fmt.Fprintf(p.out, "A: %s\n", card.Back)
	for {
		line, err := p.prompt("Did you know it? [y/n]: ")
		if err != nil {
			return false, err
		}
		switch line {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q":
			return false, errQuit
		}
	}
}

func (p *player) askNextRound() (string, error) {
	for {
		line, err := p.prompt("Play the next round? [Y/n, r to restart]: ")
		if err != nil {
			return "", err
		}
		switch line {
		case "", "y", "yes":
			return "y", nil
		case "n", "no":
			return "n", nil
		case "r", "restart":
			return "r", nil
		case "q":
			return "", errQuit
		}
	}
}

// prompt writes question and reads one trimmed, lower-cased line.
// End of input is reported as errQuit.
func (p *player) prompt(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errQuit
	}
	return strings.ToLower(strings.TrimSpace(p.in.Text())), nil
}

func (p *player) printRoundSummary(view *service.GameView) {
	fmt.Fprintf(p.out, "\nRound %d complete: %d of %d correct (%d%%). Overall %.0f%% correct.\n",
		view.Round, view.RoundCorrect, view.Total, view.RoundScore, view.SuccessRate)

	if len(view.Struggling) > 0 {
		fmt.Fprintln(p.out, "Cards to practice:")
		for _, c := range view.Struggling {
			fmt.Fprintf(p.out, "  - %s: %s\n", c.Front, c.Back)
		}
	}
}

func (p *player) printFinal(view *service.GameView) {
	fmt.Fprintln(p.out)
	if view.Stopped {
		fmt.Fprintln(p.out, "Game stopped.")
	} else {
		fmt.Fprintf(p.out, "All cards mastered in %s.\n", plural(view.Round, "round"))
	}

	score := 0
	if view.FinalScore != nil {
		score = *view.FinalScore
	}
	fmt.Fprintf(p.out, "Final score: %d%% in %s\n", score, view.Elapsed)

	if view.NewBestScore {
		fmt.Fprintln(p.out, "New best score!")
	} else {
		fmt.Fprintf(p.out, "Best score: %d%%\n", view.BestScore)
	}
}

func (p *player) setElapsed(s string) {
	p.mu.Lock()
	p.elapsed = s
	p.mu.Unlock()
}

func (p *player) getElapsed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}
