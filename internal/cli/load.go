package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/ir"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <quads-file>",
		Short: "Load line-quads into the store",
		Long: `Read a line-quads file (one "subject predicate object graph" per
line, '#' comments) and add its quads to the configured store.
Idempotent: quads already present are left untouched.

Example:
  weft load --config weft.yaml case.quads`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open quads file", err)
	}
	defer f.Close()

	quads, err := ir.ParseLineQuads(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse quads", err)
	}

	st, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := st.Apply(ctx, ir.QuadDelta{Added: quads}); err != nil {
		return WrapExitError(ExitFailure, "failed to apply quads", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"loaded": len(quads)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d quad(s) from %s.\n", len(quads), path)
	return nil
}
