package cli

import (
	"fmt"

	"github.com/phrazzld/memorygame/internal/domain"
	"github.com/spf13/cobra"
)

func newCardsCmd(svc Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Add and remove cards",
	}

	cmd.AddCommand(
		newCardsAddCmd(svc),
		newCardsRemoveCmd(svc),
	)

	return cmd
}

func newCardsAddCmd(svc Services) *cobra.Command {
	var front, back string

	cmd := &cobra.Command{
		Use:   "add <set>",
		Short: "Add a card to a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			card, err := svc.CardSets.AddCard(ctx, set.ID, domain.CardDraft{Front: front, Back: back})
			if err != nil {
				return fmt.Errorf("add card: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Card added to %s: %s\n", set.Name, card.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&front, "front", "", "Front side (question)")
	cmd.Flags().StringVar(&back, "back", "", "Back side (answer)")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")

	return cmd
}

func newCardsRemoveCmd(svc Services) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <set> <card-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a card from a set",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			set, err := resolveSet(ctx, svc.CardSets, args[0])
			if err != nil {
				return err
			}

			if err := svc.CardSets.RemoveCard(ctx, set.ID, args[1]); err != nil {
				return fmt.Errorf("remove card: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Card removed from %s: %s\n", set.Name, args[1])
			return nil
		},
	}
}
