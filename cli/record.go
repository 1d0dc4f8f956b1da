package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cartsync"
	"cartsync/library"
	"cartsync/tools"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Item            string
	ProductID       string
	DisplayName     string
	OriginalRequest string
	Replace         bool
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an item-to-product mapping in the library",
		Long: `Record a mapping from an item description to a store product, unblocking
future runs. Recording never overwrites: mapping an item that already
points at a different product is refused; overwriting takes an explicit
--replace.

Example:
  cartsync record --item "rainbow carrots" --product-id 46176 --name "Short Carrots"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Item, "item", "", "item description to map (required)")
	cmd.Flags().StringVar(&opts.ProductID, "product-id", "", "store product ID (required)")
	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "product display name (required)")
	cmd.Flags().StringVar(&opts.OriginalRequest, "original-request", "", "raw request text to keep as a variation")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "overwrite an existing mapping for this item")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("product-id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runRecord(cmd *cobra.Command, opts *RecordOptions) error {
	ctx := cmd.Context()

	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}
	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	if opts.Replace {
		lib, err := library.Load(ctx, stores.products)
		if err != nil {
			return err
		}
		product := cartsync.ProductIdentity{ID: opts.ProductID, Name: opts.DisplayName}
		if err := lib.Replace(ctx, opts.Item, product); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Replaced %q -> %s (id %s).\n", opts.Item, opts.DisplayName, opts.ProductID)
		return nil
	}

	registry, err := tools.NewRegistry(stores.products, stores.unavailable)
	if err != nil {
		return err
	}
	out, err := registry.Dispatch(ctx, tools.Call{
		Name: "library_record",
		Input: map[string]any{
			"item":             opts.Item,
			"product_id":       opts.ProductID,
			"display_name":     opts.DisplayName,
			"original_request": opts.OriginalRequest,
		},
	})
	if err != nil {
		return err
	}

	if conflict, _ := out["conflict"].(bool); conflict {
		msg, _ := out["error"].(string)
		fmt.Fprintf(cmd.ErrOrStderr(), "Refused: %s\n", msg)
		fmt.Fprintln(cmd.ErrOrStderr(), "Use a different item description, or fix the library by hand if the old mapping is wrong.")
		return NewExitError(cartsync.ExitUsage, "")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q -> %s (id %s).\n", opts.Item, opts.DisplayName, opts.ProductID)
	return nil
}
