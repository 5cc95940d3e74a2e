package engine

import (
	"context"
	"log/slog"

	"github.com/weftlabs/weft/internal/ir"
)

// ConvergenceRunner ticks an orchestrator until a committed tick changes
// nothing, or the tick bound is exceeded.
type ConvergenceRunner struct {
	orch     *Orchestrator
	maxTicks int
	logger   *slog.Logger
}

func NewConvergenceRunner(orch *Orchestrator, maxTicks int, logger *slog.Logger) *ConvergenceRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvergenceRunner{orch: orch, maxTicks: maxTicks, logger: logger}
}

// RunToCompletion ticks until convergence. The fixed point is a
// COMMITTED zero-delta tick: a rolled-back tick also reports delta 0 but
// proves nothing about the persisted state, so it never terminates the
// run. Returns the full tick history either way; on bound exhaustion the
// error is a *ConvergenceError wrapping that history.
func (r *ConvergenceRunner) RunToCompletion(ctx context.Context) ([]ir.TickOutcome, error) {
	var history []ir.TickOutcome
	for i := 0; i < r.maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		outcome, err := r.orch.Tick(ctx)
		if err != nil {
			return history, err
		}
		history = append(history, outcome)
		if outcome.Committed && outcome.Converged {
			r.logger.Info("converged",
				"ticks", len(history),
				"mutating", countMutating(history))
			return history, nil
		}
	}

	final := 0
	if len(history) > 0 {
		final = history[len(history)-1].Delta
	}
	return history, &ConvergenceError{
		MaxTicks:   r.maxTicks,
		FinalDelta: final,
		History:    history,
	}
}

func countMutating(history []ir.TickOutcome) int {
	n := 0
	for _, o := range history {
		if o.Committed && o.Delta > 0 {
			n++
		}
	}
	return n
}
