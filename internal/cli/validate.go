package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the stored state against the closed-world constraints",
		Long: `Load the configured store and evaluate every structural constraint:
status exclusivity, legal status and behavior values, flow endpoints,
pattern resolvability, and threshold satisfiability. Exits non-zero
when any constraint is violated.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
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

	quads, err := rt.store.All(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read store", err)
	}
	formatter.VerboseLog("validating %d quad(s)", len(quads))

	result := engine.NewWorkflowValidator(rt.catalog).Validate(engine.NewView(quads))

	if !result.Conforms {
		_ = formatter.Error(ErrCodeValidate, "constraints violated", result.Violations)
		if opts.Format == "text" {
			for _, v := range result.Violations {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s: %s\n", v.Severity, v.ConstraintID, v.Message)
			}
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if opts.Format == "json" {
		return formatter.Success(ir.ValidationResult{Conforms: true})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %d quad(s), no violations.\n", len(quads))
	return nil
}
