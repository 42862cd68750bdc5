package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/phrazzld/memorygame/internal/export"
	"github.com/spf13/cobra"
)

func newSetsCmd(svc Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Manage card sets",
	}

	cmd.AddCommand(
		newSetsListCmd(svc),
		newSetsShowCmd(svc),
		newSetsCreateCmd(svc),
		newSetsRenameCmd(svc),
		newSetsDeleteCmd(svc),
	)

	return cmd
}

func newSetsListCmd(svc Services) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List card sets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sets := svc.CardSets.List(ctx)
			if asJSON {
				return writeJSON(out, sets)
			}

			if len(sets) == 0 {
				fmt.Fprintln(out, "No card sets yet. Create one with: memorygame sets create <name>")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCARDS\tBEST")
			for _, set := range sets {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d%%\n", set.ID, set.Name, len(set.Cards), set.BestScore)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the sets as JSON")
	return cmd
}

func newSetsShowCmd(svc Services) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <set>",
		Short: "Show a card set and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := resolveSet(cmd.Context(), svc.CardSets, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, set)
			}

			fmt.Fprintf(out, "%s (%s)\n", set.Name, set.ID)
			fmt.Fprintf(out, "Created:       %s\n", set.CreatedAt.Local().Format(export.TimestampLayout))
			fmt.Fprintf(out, "Last modified: %s\n", set.LastModified.Local().Format(export.TimestampLayout))
			fmt.Fprintf(out, "Best score:    %d%%\n", set.BestScore)

			if len(set.Cards) == 0 {
				fmt.Fprintln(out, "\nNo cards yet.")
				return nil
			}

			fmt.Fprintf(out, "\n%s:\n", plural(len(set.Cards), "card"))
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for i, c := range set.Cards {
				fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, c.ID, c.Front, c.Back)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the set as JSON")
	return cmd
}

func newSetsCreateCmd(svc Services) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty card set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := svc.CardSets.CreateCardSet(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("create card set: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Card set created: %s (%s)\n", set.Name, set.ID)
			return nil
		},
	}
}

func newSetsRenameCmd(svc Services) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <set> <new-name>",
		Short: "Rename a card set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			renamed, err := svc.CardSets.RenameCardSet(ctx, set.ID, strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("rename card set: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Card set renamed: %s -> %s\n", set.Name, renamed.Name)
			return nil
		},
	}
}

func newSetsDeleteCmd(svc Services) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <set>",
		Aliases: []string{"rm"},
		Short:   "Delete a card set and all of its cards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			if !force {
				fmt.Fprintf(out, "Delete %q and its %s? [y/N]: ", set.Name, plural(len(set.Cards), "card"))
				// End of input counts as no.
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if !isYes(answer) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if err := svc.CardSets.RemoveCardSet(ctx, set.ID); err != nil {
				return fmt.Errorf("delete card set: %w", err)
			}

			fmt.Fprintf(out, "Card set deleted: %s\n", set.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation")
	return cmd
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
