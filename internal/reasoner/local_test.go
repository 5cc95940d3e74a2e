package reasoner

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/catalog"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/ir"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func q(s, p, o, g string) ir.Quad {
	return ir.Quad{Subject: s, Predicate: p, Object: o, Graph: g}
}

func TestLocalInferEnabledNodes(t *testing.T) {
	local := NewLocal(quietLogger())
	view := engine.NewView([]ir.Quad{
		q("a", ir.PredStatus, ir.StatusEnabled, "case-1"),
		q("b", ir.PredStatus, ir.StatusPending, "case-1"),
		q("c", ir.PredStatus, ir.StatusCompleted, "case-1"),
	})

	recs, err := local.Infer(context.Background(), view, catalog.MustBuiltin().Rules())
	require.NoError(t, err)

	assert.Equal(t, []ir.Quad{
		q("a", ir.PredShouldFire, ir.PhaseRun, "case-1"),
	}, recs)
}

func TestLocalInferOffersAndCancellations(t *testing.T) {
	local := NewLocal(quietLogger())
	view := engine.NewView([]ir.Quad{
		q("join", ir.PredStatus, ir.StatusPending, "case-1"),
		q("join", ir.PredOffer, "left", "case-1"),
		q("victim", ir.PredStatus, ir.StatusActive, "case-1"),
		q("victim", ir.PredCancel, ir.ValueTrue, "case-1"),
	})

	recs, err := local.Infer(context.Background(), view, catalog.MustBuiltin().Rules())
	require.NoError(t, err)

	assert.Contains(t, recs, q("join", ir.PredShouldFire, ir.PhaseOffer, "case-1"))
	assert.Contains(t, recs, q("victim", ir.PredShouldFire, ir.PhaseCancel, "case-1"))
	assert.Contains(t, recs, q("victim", ir.PredShouldFire, ir.PhaseRun, "case-1"))
}

func TestLocalInferMonotonic(t *testing.T) {
	// Advisories only: whatever the rules produce must target the
	// wf:shouldFire predicate, never graph facts.
	local := NewLocal(quietLogger())
	view := engine.NewView([]ir.Quad{
		q("a", ir.PredStatus, ir.StatusEnabled, "g"),
		q("a", ir.PredMilestone, ir.ValueTrue, "g"),
		q("a", ir.PredCancel, ir.ValueTrue, "g"),
	})

	recs, err := local.Infer(context.Background(), view, catalog.MustBuiltin().Rules())
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Equal(t, ir.PredShouldFire, rec.Predicate)
	}
}

func TestLocalInferDeduplicates(t *testing.T) {
	local := NewLocal(quietLogger())
	// Two rules produce the same advisory for a node that is both
	// Enabled-adjacent cases; craft rules directly to force the overlap.
	rules := ir.RuleSet{
		{
			ID: "one",
			Where: []ir.PatternQuad{{
				Subject:   ir.V("n"),
				Predicate: ir.C(ir.PredStatus),
				Object:    ir.C(ir.StatusEnabled),
				Graph:     ir.V("g"),
			}},
			Produce: []ir.PatternQuad{{
				Subject:   ir.V("n"),
				Predicate: ir.C(ir.PredShouldFire),
				Object:    ir.C(ir.PhaseRun),
				Graph:     ir.V("g"),
			}},
		},
		{
			ID: "two",
			Where: []ir.PatternQuad{{
				Subject:   ir.V("n"),
				Predicate: ir.C(ir.PredStatus),
				Object:    ir.C(ir.StatusEnabled),
				Graph:     ir.V("g"),
			}},
			Produce: []ir.PatternQuad{{
				Subject:   ir.V("n"),
				Predicate: ir.C(ir.PredShouldFire),
				Object:    ir.C(ir.PhaseRun),
				Graph:     ir.V("g"),
			}},
		},
	}
	view := engine.NewView([]ir.Quad{q("a", ir.PredStatus, ir.StatusEnabled, "g")})

	recs, err := local.Infer(context.Background(), view, rules)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestLocalInferCancelledContext(t *testing.T) {
	local := NewLocal(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := local.Infer(ctx, engine.NewView(nil), catalog.MustBuiltin().Rules())
	assert.True(t, engine.IsReasonerError(err))
}
