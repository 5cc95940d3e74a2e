// Package harness executes declarative workflow scenarios end to end:
// an in-memory store seeded from scenario YAML, the builtin pattern
// catalog, the local reasoner, and the full tick pipeline, with golden
// trace snapshots for regression coverage.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/weftlabs/weft/internal/catalog"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
	"github.com/weftlabs/weft/internal/reasoner"
	"github.com/weftlabs/weft/internal/store"
	"github.com/weftlabs/weft/internal/testutil"
)

// Result captures a full scenario execution.
type Result struct {
	Scenario *Scenario

	// History holds every tick outcome the runner produced, including
	// the terminal converged tick when one occurred.
	History []ir.TickOutcome

	// Converged is true when the runner reached a committed zero-delta
	// tick within the scenario's bound.
	Converged bool

	// RunErr is the runner's terminal error: nil on convergence, a
	// *engine.ConvergenceError on bound exhaustion, or a pipeline error.
	RunErr error

	// Final is the store content when the runner stopped.
	Final []ir.Quad

	// Ledger is the receipt chain the run produced.
	Ledger []ir.LedgerEntry
}

// Run executes a scenario against a fresh in-memory store with the
// builtin catalog and the local reasoner. Transaction ids come from a
// fixed sequential generator so repeated runs are byte-identical.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	initial, err := s.InitialQuads()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.LoadBuiltin()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemoryWith(initial)
	txn := engine.NewTransactionManager(mem, mem, testutil.NewFixedGenerator("tx"), "harness")
	kernel := engine.NewKernel(cat)
	orch := engine.NewOrchestrator(
		txn,
		engine.NewWorkflowValidator(cat),
		reasoner.NewLocal(logger),
		engine.NewStateMutator(kernel, logger),
		cat,
		logger,
	)
	runner := engine.NewConvergenceRunner(orch, s.MaxTicks, logger)

	history, runErr := runner.RunToCompletion(ctx)

	final, err := mem.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read final state: %w", err)
	}
	ledger, err := mem.ListReceipts(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return &Result{
		Scenario:  s,
		History:   history,
		Converged: runErr == nil,
		RunErr:    runErr,
		Final:     final,
		Ledger:    ledger,
	}, nil
}

// Statuses extracts the final wf:status value per node in the scenario
// graph. Multiple statuses for one node report as "multiple".
func (r *Result) Statuses() map[string]string {
	out := map[string]string{}
	for _, q := range r.Final {
		if q.Predicate != ir.PredStatus || q.Graph != r.Scenario.Graph {
			continue
		}
		if _, dup := out[q.Subject]; dup {
			out[q.Subject] = "multiple"
			continue
		}
		out[q.Subject] = q.Object
	}
	return out
}

// MutatingTicks counts committed ticks that changed state.
func (r *Result) MutatingTicks() int {
	n := 0
	for _, o := range r.History {
		if o.Committed && o.Delta > 0 {
			n++
		}
	}
	return n
}

// Check evaluates the scenario's expectations and returns one message
// per failed expectation. An empty slice means the scenario passed.
func (r *Result) Check() []string {
	var failures []string
	s := r.Scenario

	if s.ExpectConverged && !r.Converged {
		failures = append(failures, fmt.Sprintf("expected convergence, got error: %v", r.RunErr))
	}
	if s.ExpectDiverged {
		var ce *engine.ConvergenceError
		if !errors.As(r.RunErr, &ce) {
			failures = append(failures, fmt.Sprintf("expected divergence, got error: %v", r.RunErr))
		}
	}
	if s.ExpectMutatingTicks > 0 {
		if got := r.MutatingTicks(); got != s.ExpectMutatingTicks {
			failures = append(failures, fmt.Sprintf("expected %d mutating ticks, got %d", s.ExpectMutatingTicks, got))
		}
	}

	statuses := r.Statuses()
	nodes := make([]string, 0, len(s.ExpectStatuses))
	for node := range s.ExpectStatuses {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		want := s.ExpectStatuses[node]
		got, ok := statuses[node]
		switch {
		case want == "" && ok:
			failures = append(failures, fmt.Sprintf("node %s: expected no status, got %s", node, got))
		case want != "" && !ok:
			failures = append(failures, fmt.Sprintf("node %s: expected status %s, got none", node, want))
		case want != "" && got != want:
			failures = append(failures, fmt.Sprintf("node %s: expected status %s, got %s", node, want, got))
		}
	}
	return failures
}
