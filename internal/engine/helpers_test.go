package engine

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/ir"
)

// testCatalog is a map-backed catalog for exercising the kernel without
// the CUE pipeline.
type testCatalog struct {
	specs map[ir.SpecKey]ir.VerbSpec
	rules ir.RuleSet
}

func newTestCatalog(specs ...ir.VerbSpec) *testCatalog {
	tc := &testCatalog{specs: map[ir.SpecKey]ir.VerbSpec{}}
	for _, s := range specs {
		tc.specs[s.Key()] = s
	}
	return tc
}

func (tc *testCatalog) Lookup(key ir.SpecKey) (ir.VerbSpec, error) {
	spec, ok := tc.specs[key]
	if !ok {
		return ir.VerbSpec{}, fmt.Errorf("no catalog entry for %s", key)
	}
	return spec, nil
}

func (tc *testCatalog) Rules() ir.RuleSet { return tc.rules }

func (tc *testCatalog) RuleSubset(patternIDs []string) ir.RuleSet {
	return tc.rules.ForPatterns(patternIDs)
}

// sequenceSpec is the plain task-to-task pattern: complete the node, then
// enable pending successors that need no synchronization.
func sequenceSpec() ir.VerbSpec {
	return ir.VerbSpec{
		PatternID: "wcp1-sequence",
		Name:      "Sequence",
		NodeType:  ir.NodeTask,
		SplitType: ir.BehaviorNone,
		JoinType:  ir.BehaviorNone,
		Verb:      ir.VerbTransmute,
		Exec: ir.Template{Steps: []ir.RewriteStep{
			{
				Comment: "complete",
				Where: []ir.PatternQuad{
					pq("?node", ir.PredStatus, ir.StatusEnabled, "?case"),
				},
				Remove: []ir.PatternQuad{
					pq("?node", ir.PredStatus, ir.StatusEnabled, "?case"),
				},
				Add: []ir.PatternQuad{
					pq("?node", ir.PredStatus, ir.StatusCompleted, "?case"),
					pq("?node", ir.PredEmitted, ir.ValueTrue, "?case"),
				},
			},
			{
				Comment: "propagate",
				Where: []ir.PatternQuad{
					pq("?node", ir.PredStatus, ir.StatusCompleted, "?case"),
					pq("?node", ir.PredFlowsTo, "?succ", "?case"),
					pq("?succ", ir.PredStatus, ir.StatusPending, "?case"),
					pq("?succ", ir.PredJoin, ir.BehaviorNone, "?case"),
				},
				Remove: []ir.PatternQuad{
					pq("?succ", ir.PredStatus, ir.StatusPending, "?case"),
				},
				Add: []ir.PatternQuad{
					pq("?succ", ir.PredStatus, ir.StatusEnabled, "?case"),
				},
				Candidate: "succ",
			},
		}},
		Removal: cancelTemplate(),
	}
}

// cancelTemplate moves any live status to Cancelled and clears the
// cancellation request marker.
func cancelTemplate() ir.Template {
	var steps []ir.RewriteStep
	for _, status := range []string{ir.StatusPending, ir.StatusEnabled, ir.StatusActive} {
		steps = append(steps, ir.RewriteStep{
			Where: []ir.PatternQuad{
				pq("?node", ir.PredStatus, status, "?case"),
			},
			Remove: []ir.PatternQuad{
				pq("?node", ir.PredStatus, status, "?case"),
			},
			Add: []ir.PatternQuad{
				pq("?node", ir.PredStatus, ir.StatusCancelled, "?case"),
			},
		})
	}
	steps = append(steps, ir.RewriteStep{
		Where: []ir.PatternQuad{
			pq("?node", ir.PredCancel, ir.ValueTrue, "?case"),
		},
		Remove: []ir.PatternQuad{
			pq("?node", ir.PredCancel, ir.ValueTrue, "?case"),
		},
	})
	return ir.Template{Steps: steps}
}

func pq(s, p, o, g string) ir.PatternQuad {
	return ir.PatternQuad{
		Subject:   ir.ParseTerm(s),
		Predicate: ir.ParseTerm(p),
		Object:    ir.ParseTerm(o),
		Graph:     ir.ParseTerm(g),
	}
}

func q(s, p, o, g string) ir.Quad {
	return ir.Quad{Subject: s, Predicate: p, Object: o, Graph: g}
}

// nodeQuads declares one task node's structural facts plus a status.
func nodeQuads(graph, node, split, join, pattern, status string) []ir.Quad {
	return []ir.Quad{
		q(node, ir.PredType, ir.NodeTask, graph),
		q(node, ir.PredSplit, split, graph),
		q(node, ir.PredJoin, join, graph),
		q(node, ir.PredPattern, pattern, graph),
		q(node, ir.PredStatus, status, graph),
	}
}

// chainQuads builds a linear case A -> B -> ... with the first node
// Enabled and the rest Pending, all on the sequence pattern.
func chainQuads(graph string, nodes ...string) []ir.Quad {
	var out []ir.Quad
	for i, n := range nodes {
		status := ir.StatusPending
		if i == 0 {
			status = ir.StatusEnabled
		}
		out = append(out, nodeQuads(graph, n, ir.BehaviorNone, ir.BehaviorNone, "wcp1-sequence", status)...)
		if i+1 < len(nodes) {
			out = append(out, q(n, ir.PredFlowsTo, nodes[i+1], graph))
		}
	}
	return out
}

// stubReasoner returns canned recommendations.
type stubReasoner struct {
	quads []ir.Quad
	err   error
}

func (s stubReasoner) Infer(ctx context.Context, view *View, rules ir.RuleSet) ([]ir.Quad, error) {
	return s.quads, s.err
}

// ruleReasoner evaluates the catalog rules in-process. The production
// equivalent lives in internal/reasoner; this keeps the engine package's
// tests self-contained.
type ruleReasoner struct{}

func (ruleReasoner) Infer(ctx context.Context, view *View, rules ir.RuleSet) ([]ir.Quad, error) {
	var out []ir.Quad
	for _, rule := range rules {
		for _, b := range MatchWhere(view, ir.Binding{}, rule.Where) {
			ok, err := CheckGuards(view, b, rule.Guards, nil)
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
	}
	return ir.DedupeQuads(out), nil
}

// stubMutator returns a canned delta.
type stubMutator struct {
	delta ir.QuadDelta
	err   error
}

func (s stubMutator) Mutate(view *View, recommendations []ir.Quad) (ir.QuadDelta, error) {
	return s.delta, s.err
}

// seqGen issues tx-0, tx-1, ... for deterministic receipts.
type seqGen struct{ n int }

func (g *seqGen) Generate() string {
	id := fmt.Sprintf("tx-%d", g.n)
	g.n++
	return id
}

// fireRules is the minimal advisory rule set: fire every Enabled node,
// cancel every node with a pending cancellation request.
func fireRules() ir.RuleSet {
	return ir.RuleSet{
		{
			ID:      "r-run",
			Where:   []ir.PatternQuad{pq("?n", ir.PredStatus, ir.StatusEnabled, "?g")},
			Produce: []ir.PatternQuad{pq("?n", ir.PredShouldFire, ir.PhaseRun, "?g")},
		},
		{
			ID:      "r-cancel",
			Where:   []ir.PatternQuad{pq("?n", ir.PredCancel, ir.ValueTrue, "?g")},
			Produce: []ir.PatternQuad{pq("?n", ir.PredShouldFire, ir.PhaseCancel, "?g")},
		},
	}
}
