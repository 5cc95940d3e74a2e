package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/ir"
)

// ReceiptsOptions holds flags for the receipts command.
type ReceiptsOptions struct {
	*RootOptions
	Verify bool
}

// NewReceiptsCommand creates the receipts command.
func NewReceiptsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReceiptsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List the transaction ledger",
		Long: `List every receipt in the store's append-only ledger. With --verify,
recompute the hash chain from the genesis hash and fail on the first
entry that breaks it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceipts(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute and check the hash chain")

	return cmd
}

func runReceipts(opts *ReceiptsOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	st, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := st.ListReceipts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}

	if opts.Verify {
		if err := ir.VerifyChain(entries); err != nil {
			_ = formatter.Error(ErrCodeChain, err.Error(), nil)
			return NewExitError(ExitFailure, "chain verification failed")
		}
		formatter.VerboseLog("chain verified: %d entrie(s)", len(entries))
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d receipt(s):\n", len(entries))
	for _, e := range entries {
		r := e.Receipt
		state := "committed"
		if !r.Committed {
			state = "rolled back"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %-11s delta=%-4d %s\n", r.TxID, state, r.DeltaSize, r.NewHash)
	}
	if opts.Verify {
		fmt.Fprintln(cmd.OutOrStdout(), "Chain OK.")
	}
	return nil
}
