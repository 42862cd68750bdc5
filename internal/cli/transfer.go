package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/phrazzld/memorygame/internal/export"
	"github.com/phrazzld/memorygame/internal/parser"
	"github.com/phrazzld/memorygame/internal/service"
	"github.com/spf13/cobra"
)

// parserFlags are the pattern options shared by commands that parse text.
type parserFlags struct {
	frontRegex  string
	backRegex   string
	frontPrefix string
	frontSuffix string
	backPrefix  string
	backSuffix  string
}

func (f *parserFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.frontRegex, "front-regex", parser.DefaultFrontRegex, "Pattern whose first group captures the front")
	flags.StringVar(&f.backRegex, "back-regex", parser.DefaultBackRegex, "Pattern whose first group captures the back")
	flags.StringVar(&f.frontPrefix, "front-prefix", parser.DefaultFrontPrefix, "Literal text before each front (switches to marker mode)")
	flags.StringVar(&f.frontSuffix, "front-suffix", "", "Literal text after each front (switches to marker mode)")
	flags.StringVar(&f.backPrefix, "back-prefix", parser.DefaultBackPrefix, "Literal text before each back (switches to marker mode)")
	flags.StringVar(&f.backSuffix, "back-suffix", "", "Literal text after each back (switches to marker mode)")
	cmd.MarkFlagsMutuallyExclusive("front-regex", "front-prefix")
	cmd.MarkFlagsMutuallyExclusive("back-regex", "back-prefix")
}

// options builds parser options. Setting any marker flag selects marker
// mode; otherwise the regex patterns are used.
func (f *parserFlags) options(cmd *cobra.Command) parser.Options {
	flags := cmd.Flags()
	opts := parser.DefaultOptions()

	markers := flags.Changed("front-prefix") || flags.Changed("front-suffix") ||
		flags.Changed("back-prefix") || flags.Changed("back-suffix")
	if markers {
		opts.FrontPrefix = f.frontPrefix
		opts.FrontSuffix = f.frontSuffix
		opts.BackPrefix = f.backPrefix
		opts.BackSuffix = f.backSuffix
		opts.SetUseRegex(false)
		return opts
	}

	opts.SetFrontRegex(f.frontRegex)
	opts.SetBackRegex(f.backRegex)
	return opts
}

func readImportFile(path string) (service.ImportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.ImportFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return service.ImportFile{Name: filepath.Base(path), Data: data}, nil
}

func printDrafts(w io.Writer, drafts []domain.CardDraft) {
	for i, d := range drafts {
		fmt.Fprintf(w, "%d. Q: %s\n   A: %s\n", i+1, d.Front, d.Back)
	}
}

func newImportCmd(svc Services) *cobra.Command {
	var (
		dryRun bool
		pf     parserFlags
	)

	cmd := &cobra.Command{
		Use:   "import <set> <file>",
		Short: "Import cards from a text, JSON or DOCX file",
		Long: `Import cards from a file into an existing set.

Text is scanned for front/back pairs. By default "Question: ..." lines are
paired with the "Answer: ..." lines that follow them; use --front-regex and
--back-regex for other layouts, or the marker flags to match literal text
around each side. JSON files hold {"cards":[{"front":"...","back":"..."}]}.
DOCX files are converted to text first when a conversion service is configured.

Either every card is added or none is: one empty or over-long side rejects
the whole file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			file, err := readImportFile(args[1])
			if err != nil {
				return err
			}

			opts := pf.options(cmd)

			if dryRun {
				drafts, err := svc.Imports.Preview(ctx, file, opts)
				if err != nil {
					return fmt.Errorf("preview %s: %w", file.Name, err)
				}
				fmt.Fprintf(out, "Found %s in %s (nothing was imported):\n", plural(len(drafts), "card"), file.Name)
				printDrafts(out, drafts)
				return nil
			}

			cards, err := svc.Imports.Import(ctx, set.ID, file, opts)
			if err != nil {
				return fmt.Errorf("import %s: %w", file.Name, err)
			}

			fmt.Fprintf(out, "Imported %s into %s\n", plural(len(cards), "card"), set.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the cards found without adding them")
	pf.register(cmd)

	return cmd
}

func newExportCmd(svc Services) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <set>",
		Short: "Export a set to a text file",
		Long: `Write a set in the plain-text export format. Without --output the export
is printed. When --output names a directory, a file named after the set and
the current time is created inside it. Exported files can be read back
with "memorygame restore".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := resolveSet(cmd.Context(), svc.CardSets, args[0])
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), set, time.Local)
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, export.FileName(set.Name, svc.now()))
			}

			if err := writeExportFile(path, set); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", plural(len(set.Cards), "card"), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File or directory to write to (default stdout)")
	return cmd
}

func writeExportFile(path string, set *domain.CardSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return export.Write(f, set, time.Local)
}

func newRestoreCmd(svc Services) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Create a new set from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			set, err := svc.Imports.Restore(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("restore %s: %w", file.Name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Card set restored: %s (%s) with %s\n",
				set.Name, set.ID, plural(len(set.Cards), "card"))
			return nil
		},
	}
}
