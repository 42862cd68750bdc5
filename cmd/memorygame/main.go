// Package main implements the memorygame command line. It reads the same
// configuration as the server and works on the same stored card sets.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/memorygame/internal/cli"
	"github.com/phrazzld/memorygame/internal/config"
	"github.com/phrazzld/memorygame/internal/conversion"
	"github.com/phrazzld/memorygame/internal/domain/game"
	"github.com/phrazzld/memorygame/internal/platform/docconvert"
	"github.com/phrazzld/memorygame/internal/platform/logger"
	"github.com/phrazzld/memorygame/internal/platform/storage"
	"github.com/phrazzld/memorygame/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "memorygame: %v\n", err)
		os.Exit(1)
	}
}

// run wires the services and executes the command named by args.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l := logger.New(stderr, cfg.CLI.LogLevel)
	slog.SetDefault(l)

	svc, st, err := newServices(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error("error closing storage", slog.String("error", err.Error()))
		}
	}()

	root := cli.NewRootCmd(svc)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// newServices opens storage and creates the services the commands use.
// The caller closes the returned storage.
func newServices(ctx context.Context, cfg *config.Config, l *slog.Logger) (cli.Services, *storage.Storage, error) {
	repo, st, err := storage.OpenRepository(ctx, cfg.Storage, l)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	svc, err := buildServices(ctx, cfg, repo, l)
	if err != nil {
		_ = st.Close()
		return cli.Services{}, nil, err
	}
	return svc, st, nil
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	repo service.CardSetRepository,
	l *slog.Logger,
) (cli.Services, error) {
	cardSets, err := service.NewCardSetService(repo, cfg.Game.MaxCardTextLength, l)
	if err != nil {
		return cli.Services{}, fmt.Errorf("failed to create card set service: %w", err)
	}
	if err := cardSets.Load(ctx); err != nil {
		return cli.Services{}, fmt.Errorf("failed to load card sets: %w", err)
	}

	var converter conversion.Converter
	if cfg.Conversion.Endpoint != "" {
		client, err := docconvert.NewClient(docconvert.OptionsFromConfig(cfg.Conversion), l)
		if err != nil {
			return cli.Services{}, fmt.Errorf("failed to create document converter: %w", err)
		}
		converter = client
	}

	imports, err := service.NewImportService(cardSets, converter, l)
	if err != nil {
		return cli.Services{}, fmt.Errorf("failed to create import service: %w", err)
	}

	params := game.NewDefaultParams()
	params.MinReviewCards = cfg.Game.MinReviewCards

	games, err := service.NewGameService(cardSets, params, 0, l)
	if err != nil {
		return cli.Services{}, fmt.Errorf("failed to create game service: %w", err)
	}

	return cli.Services{CardSets: cardSets, Imports: imports, Games: games}, nil
}
