package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
)

// RunResult summarizes a convergence run for output.
type RunResult struct {
	Ticks         int  `json:"ticks"`
	MutatingTicks int  `json:"mutating_ticks"`
	FinalDelta    int  `json:"final_delta"`
	Converged     bool `json:"converged"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ticks until the case converges",
		Long: `Run the tick loop against the configured store until a committed tick
changes nothing, or until max_ticks is exhausted.

Example:
  weft run --config weft.yaml
  weft run --config weft.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToConvergence(rootOpts, cmd)
		},
	}

	return cmd
}

func runToConvergence(opts *RootOptions, cmd *cobra.Command) error {
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

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			rt.logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := engine.NewConvergenceRunner(rt.orch, rt.cfg.MaxTicks, rt.logger)
	history, runErr := runner.RunToCompletion(ctx)

	result := RunResult{
		Ticks:         len(history),
		MutatingTicks: countMutatingTicks(history),
		Converged:     runErr == nil,
	}
	if len(history) > 0 {
		result.FinalDelta = history[len(history)-1].Delta
	}

	if runErr != nil {
		var ce *engine.ConvergenceError
		if errors.As(runErr, &ce) {
			_ = formatter.Error(ErrCodeRun, runErr.Error(), result)
			return NewExitError(ExitFailure, "no convergence")
		}
		return WrapExitError(ExitFailure, "run failed", runErr)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converged after %d tick(s), %d mutating.\n",
		result.Ticks, result.MutatingTicks)
	return nil
}

func countMutatingTicks(history []ir.TickOutcome) int {
	n := 0
	for _, o := range history {
		if o.Committed && o.Delta > 0 {
			n++
		}
	}
	return n
}
