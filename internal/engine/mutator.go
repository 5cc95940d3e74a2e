package engine

import (
	"log/slog"

	"github.com/weftlabs/weft/internal/ir"
)

// ChatmanConstant bounds the number of reasoner recommendations applied
// per tick. Recommendations beyond the bound are dropped, not queued:
// the reasoner re-derives anything still relevant on the next tick.
const ChatmanConstant = 64

// StateMutator turns reasoner recommendations into a single net delta by
// resolving and executing each recommended node through the kernel.
// Executions within a batch see each other's effects, so a recommendation
// made stale by an earlier rewrite degenerates to a no-op.
type StateMutator struct {
	kernel *Kernel
	logger *slog.Logger
}

func NewStateMutator(kernel *Kernel, logger *slog.Logger) *StateMutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateMutator{kernel: kernel, logger: logger}
}

// Mutate applies up to ChatmanConstant recommendations against a working
// copy of the view and returns the net delta. Quads that are not
// wf:shouldFire advisories are ignored. The batch order is canonical quad
// order, so two runs over the same view and recommendations produce the
// same delta.
func (m *StateMutator) Mutate(view *View, recommendations []ir.Quad) (ir.QuadDelta, error) {
	batch := make([]ir.Quad, 0, len(recommendations))
	for _, q := range recommendations {
		if q.Predicate == ir.PredShouldFire {
			batch = append(batch, q)
		}
	}
	batch = ir.DedupeQuads(batch)
	ir.SortQuads(batch)

	if len(batch) > ChatmanConstant {
		m.logger.Warn("recommendation batch truncated",
			"recommended", len(batch),
			"bound", ChatmanConstant)
		batch = batch[:ChatmanConstant]
	}

	working := view.Clone()
	for _, rec := range batch {
		spec, err := m.kernel.Resolve(working, rec.Subject, rec.Graph)
		if err != nil {
			return ir.QuadDelta{}, err
		}
		tpl := spec.Exec
		if rec.Object == ir.PhaseCancel {
			tpl = spec.Removal
		}
		delta, err := m.kernel.Execute(working, spec, tpl, rec.Subject, rec.Graph)
		if err != nil {
			return ir.QuadDelta{}, err
		}
		m.apply(working, delta)
	}
	return working.Diff(view), nil
}

// apply folds a per-node delta into the working view, enforcing the
// single-valued predicates. When two rewrites in one batch assert a
// status for the same node, the later one wins.
func (m *StateMutator) apply(working *View, delta ir.QuadDelta) {
	for _, q := range delta.Removed {
		working.Remove(q)
	}
	for _, q := range delta.Added {
		if singleValued[q.Predicate] {
			for _, prev := range working.Match(ir.Pattern{
				Subject:   q.Subject,
				Predicate: q.Predicate,
				Graph:     q.Graph,
			}) {
				working.Remove(prev)
			}
		}
		working.Add(q)
	}
}

// singleValued lists predicates that admit at most one object per
// subject per graph in any committed state.
var singleValued = map[string]bool{
	ir.PredStatus: true,
}
