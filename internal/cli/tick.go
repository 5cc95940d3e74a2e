package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/ir"
)

// TickResult summarizes a single tick for output.
type TickResult struct {
	Tick       int            `json:"tick"`
	Delta      int            `json:"delta"`
	Committed  bool           `json:"committed"`
	Converged  bool           `json:"converged"`
	TxID       string         `json:"tx_id"`
	NewHash    string         `json:"new_hash"`
	Violations []ir.Violation `json:"violations,omitempty"`
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Execute exactly one tick",
		Long: `Execute a single snapshot-infer-mutate-validate-commit cycle against
the configured store and report the outcome. A rolled-back tick exits
non-zero with the violations that caused it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingleTick(rootOpts, cmd)
		},
	}

	return cmd
}

func runSingleTick(opts *RootOptions, cmd *cobra.Command) error {
	rt, err := setupRuntime(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			rt.logger.Error("error closing store", "error", closeErr)
		}
	}()

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

	outcome, err := rt.orch.Tick(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "tick failed", err)
	}

	result := TickResult{
		Tick:       outcome.TickNumber,
		Delta:      outcome.Delta,
		Committed:  outcome.Committed,
		Converged:  outcome.Converged,
		TxID:       outcome.Receipt.TxID,
		NewHash:    outcome.Receipt.NewHash,
		Violations: outcome.Violations,
	}

	if !outcome.Committed {
		_ = formatter.Error(ErrCodeValidate, "tick rolled back", result)
		return NewExitError(ExitFailure, "tick rolled back")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tick %d committed: delta=%d converged=%v tx=%s\n",
		result.Tick, result.Delta, result.Converged, result.TxID)
	return nil
}
