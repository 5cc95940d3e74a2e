// Package reasoner provides the monotonic inference oracles the tick
// orchestrator consults: an in-process rule evaluator and an adapter for
// external reasoner subprocesses.
//
// Both produce only advisory wf:shouldFire quads. Neither is allowed to
// delete graph facts; the Local evaluator cannot by construction, and
// Exec output is filtered to advisories before it reaches the mutator.
package reasoner

import (
	"context"
	"log/slog"

	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
)

// Local evaluates the catalog's inference rules directly against the
// tick's view. Deterministic: rule declaration order times canonical
// binding order, deduplicated.
type Local struct {
	logger *slog.Logger
}

func NewLocal(logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{logger: logger}
}

func (l *Local) Infer(ctx context.Context, view *engine.View, rules ir.RuleSet) ([]ir.Quad, error) {
	var out []ir.Quad
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, &engine.ReasonerError{Op: "infer", Err: err}
		}
		produced, err := evalRule(view, rule)
		if err != nil {
			return nil, &engine.ReasonerError{Op: "infer", Err: err}
		}
		if len(produced) > 0 {
			l.logger.Debug("rule fired", "rule", rule.ID, "produced", len(produced))
		}
		out = append(out, produced...)
	}
	return ir.DedupeQuads(out), nil
}

func evalRule(view *engine.View, rule ir.InferenceRule) ([]ir.Quad, error) {
	var out []ir.Quad
	for _, b := range engine.MatchWhere(view, ir.Binding{}, rule.Where) {
		ok, err := engine.CheckGuards(view, b, rule.Guards, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, p := range rule.Produce {
			quad, err := b.Instantiate(p)
			if err != nil {
				return nil, err
			}
			out = append(out, quad)
		}
	}
	return out, nil
}
