// Package cli implements the memorygame command line: card set management,
// file import and export, and an interactive quiz over stdin/stdout.
//
// Commands run against the same services as the HTTP server, so a set
// created here is visible to the server when both share a storage backend.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/spf13/cobra"
)

// Services are the application services the commands operate on.
type Services struct {
	CardSets service.CardSetService
	Imports  service.ImportService
	Games    service.GameService

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
	// TickInterval is how often play refreshes the elapsed time; zero means once per second.
	TickInterval time.Duration
}

func (s Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NewRootCmd creates the memorygame root command with all subcommands attached.
func NewRootCmd(svc Services) *cobra.Command {
	root := &cobra.Command{
		Use:   "memorygame",
		Short: "Flashcard sets and adaptive quiz sessions",
		Long: `memorygame keeps named sets of flashcards, imports cards from text, JSON
and DOCX files, and quizzes you on a set round by round. Cards you miss
come back in the next round together with a few you already know, until
every answer in the session is correct.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSetsCmd(svc),
		newCardsCmd(svc),
		newImportCmd(svc),
		newExportCmd(svc),
		newRestoreCmd(svc),
		newPlayCmd(svc),
	)

	return root
}

// resolveSet finds a set by exact ID, then by case-insensitive name.
// A name shared by several sets is rejected so the wrong set is never changed.
func resolveSet(ctx context.Context, cardSets service.CardSetService, ref string) (*domain.CardSet, error) {
	ref = strings.TrimSpace(ref)
	if set, err := cardSets.Get(ctx, ref); err == nil {
		return set, nil
	}

	var matches []domain.CardSet
	for _, set := range cardSets.List(ctx) {
		if strings.EqualFold(set.Name, ref) {
			matches = append(matches, set)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", ref, service.ErrCardSetNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%d card sets are named %q, use the set ID instead", len(matches), ref)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
