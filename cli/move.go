package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	FromList string
	ToList   string
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move <title>",
		Short: "Move a task between lists",
		Long: `Move a task title from one list to another, for example parking an item
the store does not carry on a someday list.

Example:
  cartsync move "ornaments" --from Groceries --to Someday`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newTasksClient()
			if err != nil {
				return err
			}
			title := args[0]
			if err := tasks.MoveItem(cmd.Context(), title, opts.FromList, opts.ToList); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %q from %q to %q.\n", title, opts.FromList, opts.ToList)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.FromList, "from", "", "source list name (required)")
	cmd.Flags().StringVar(&opts.ToList, "to", "", "destination list name (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
