package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cartsync"
	"cartsync/adjudicate"
	"cartsync/hyvee"
	"cartsync/match"
	"cartsync/tools"
)

// SuggestOptions holds flags for the suggest command.
type SuggestOptions struct {
	*RootOptions
	Interactive bool
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuggestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suggest <item>",
		Short: "Show the closest known products for an item",
		Long: `Rank known products by token overlap with an item description. With
--interactive, pick one of the candidates to record the item as a
variation of that product.

Example:
  cartsync suggest "rainbow carrots"
  cartsync suggest "rainbow carrots" --interactive`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "pick a candidate and record the mapping")

	return cmd
}

func runSuggest(cmd *cobra.Command, opts *SuggestOptions, item string) error {
	ctx := cmd.Context()

	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	registry, err := tools.NewRegistry(stores.products, stores.unavailable)
	if err != nil {
		return err
	}

	candidates, err := suggestCandidates(ctx, registry, item)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No similar products known for %q.\n", item)
		fmt.Fprintf(cmd.OutOrStdout(), "Search the store and record what you find: %s\n", hyvee.BuildSearchURL(item))
		return nil
	}

	if !opts.Interactive {
		fmt.Fprintf(cmd.OutOrStdout(), "Closest known products for %q:\n", item)
		for _, c := range candidates {
			fmt.Fprintf(cmd.OutOrStdout(), "  %3.0f%%  %s (id %s)\n", c.Score*100, c.Product.Name, c.Product.ID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Record one with: cartsync record, or rerun with --interactive.")
		return nil
	}

	decision, err := adjudicate.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()).Adjudicate(ctx, item, candidates)
	if err != nil {
		return err
	}

	switch {
	case decision.Product != nil:
		return recordDecision(cmd, registry, item, *decision.Product)
	case decision.MarkedNew:
		fmt.Fprintf(cmd.OutOrStdout(), "Marked as new. Search the store and record it: %s\n", hyvee.BuildSearchURL(item))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Skipped; nothing recorded.")
	}
	return nil
}

func suggestCandidates(ctx context.Context, registry *tools.Registry, item string) ([]cartsync.ScoredProduct, error) {
	out, err := registry.Dispatch(ctx, tools.Call{
		Name:  "fuzzy_suggest",
		Input: map[string]any{"item": item},
	})
	if err != nil {
		return nil, err
	}

	raw, _ := out["candidates"].([]any)
	candidates := make([]cartsync.ScoredProduct, 0, match.MaxSuggestions)
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["product_id"].(string)
		name, _ := m["display_name"].(string)
		score, _ := m["score"].(float64)
		candidates = append(candidates, cartsync.ScoredProduct{
			Product: cartsync.ProductIdentity{ID: id, Name: name},
			Score:   score,
		})
	}
	return candidates, nil
}

func recordDecision(cmd *cobra.Command, registry *tools.Registry, item string, product cartsync.ProductIdentity) error {
	out, err := registry.Dispatch(cmd.Context(), tools.Call{
		Name: "library_record",
		Input: map[string]any{
			"item":         item,
			"product_id":   product.ID,
			"display_name": product.Name,
		},
	})
	if err != nil {
		return err
	}
	if conflict, _ := out["conflict"].(bool); conflict {
		msg, _ := out["error"].(string)
		fmt.Fprintf(cmd.ErrOrStderr(), "Refused: %s\n", msg)
		return NewExitError(cartsync.ExitUsage, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q -> %s (id %s).\n", item, product.Name, product.ID)
	return nil
}
