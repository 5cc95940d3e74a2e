package engine

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ir"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMutatorAppliesRecommendations(t *testing.T) {
	mutator := NewStateMutator(NewKernel(newTestCatalog(sequenceSpec())), discardLogger())
	v := NewView(chainQuads("case-1", "a", "b"))

	delta, err := mutator.Mutate(v, []ir.Quad{
		q("a", ir.PredShouldFire, ir.PhaseRun, "case-1"),
	})
	require.NoError(t, err)

	assert.Contains(t, delta.Added, q("a", ir.PredStatus, ir.StatusCompleted, "case-1"))
	assert.Contains(t, delta.Added, q("b", ir.PredStatus, ir.StatusEnabled, "case-1"))
}

func TestMutatorIgnoresNonAdvisoryQuads(t *testing.T) {
	mutator := NewStateMutator(NewKernel(newTestCatalog(sequenceSpec())), discardLogger())
	v := NewView(chainQuads("case-1", "a", "b"))

	delta, err := mutator.Mutate(v, []ir.Quad{
		q("a", ir.PredStatus, ir.StatusCompleted, "case-1"),
		q("a", ir.PredEmitted, ir.ValueTrue, "case-1"),
	})
	require.NoError(t, err)
	assert.True(t, delta.Empty())
}

func TestMutatorCancelSelectsRemovalTemplate(t *testing.T) {
	mutator := NewStateMutator(NewKernel(newTestCatalog(sequenceSpec())), discardLogger())
	quads := chainQuads("case-1", "a", "b")
	quads = append(quads, q("a", ir.PredCancel, ir.ValueTrue, "case-1"))
	v := NewView(quads)

	delta, err := mutator.Mutate(v, []ir.Quad{
		q("a", ir.PredShouldFire, ir.PhaseCancel, "case-1"),
	})
	require.NoError(t, err)
	assert.Contains(t, delta.Added, q("a", ir.PredStatus, ir.StatusCancelled, "case-1"))
	assert.NotContains(t, delta.Added, q("a", ir.PredStatus, ir.StatusCompleted, "case-1"))
}

func TestMutatorBatchBound(t *testing.T) {
	// 70 isolated Enabled nodes, all recommended. Only the first 64 in
	// canonical order may fire; the rest wait for the next tick.
	spec := sequenceSpec()
	mutator := NewStateMutator(NewKernel(newTestCatalog(spec)), discardLogger())

	var quads []ir.Quad
	var recs []ir.Quad
	for i := 0; i < 70; i++ {
		node := fmt.Sprintf("n%02d", i)
		quads = append(quads, nodeQuads("case-1", node, ir.BehaviorNone, ir.BehaviorNone, spec.PatternID, ir.StatusEnabled)...)
		recs = append(recs, q(node, ir.PredShouldFire, ir.PhaseRun, "case-1"))
	}
	v := NewView(quads)

	delta, err := mutator.Mutate(v, recs)
	require.NoError(t, err)

	completed := 0
	for _, added := range delta.Added {
		if added.Predicate == ir.PredStatus && added.Object == ir.StatusCompleted {
			completed++
		}
	}
	assert.Equal(t, ChatmanConstant, completed)

	// Canonical order means n00..n63 fire, n64..n69 do not.
	assert.Contains(t, delta.Added, q("n00", ir.PredStatus, ir.StatusCompleted, "case-1"))
	assert.NotContains(t, delta.Added, q("n64", ir.PredStatus, ir.StatusCompleted, "case-1"))
}

func TestMutatorLaterWinsOnStatus(t *testing.T) {
	// Two specs that each assert a status for the same shared node
	// without consuming the old one. The single-valued merge keeps only
	// the later rewrite's status (canonical order: a fires before b).
	mkSpec := func(pattern, status string) ir.VerbSpec {
		return ir.VerbSpec{
			PatternID: pattern, NodeType: ir.NodeTask,
			SplitType: ir.BehaviorNone, JoinType: ir.BehaviorNone,
			Verb: ir.VerbTransmute,
			Exec: ir.Template{Steps: []ir.RewriteStep{{
				Where: []ir.PatternQuad{pq("?node", ir.PredType, ir.NodeTask, "?case")},
				Add:   []ir.PatternQuad{pq("shared", ir.PredStatus, status, "?case")},
			}}},
		}
	}
	specA := mkSpec("p-active", ir.StatusActive)
	specB := mkSpec("p-enabled", ir.StatusEnabled)
	mutator := NewStateMutator(NewKernel(newTestCatalog(specA, specB)), discardLogger())

	v := NewView([]ir.Quad{
		q("a", ir.PredType, ir.NodeTask, "g"),
		q("a", ir.PredPattern, "p-active", "g"),
		q("b", ir.PredType, ir.NodeTask, "g"),
		q("b", ir.PredPattern, "p-enabled", "g"),
	})

	delta, err := mutator.Mutate(v, []ir.Quad{
		q("b", ir.PredShouldFire, ir.PhaseRun, "g"),
		q("a", ir.PredShouldFire, ir.PhaseRun, "g"),
	})
	require.NoError(t, err)

	var statuses []ir.Quad
	for _, added := range delta.Added {
		if added.Subject == "shared" && added.Predicate == ir.PredStatus {
			statuses = append(statuses, added)
		}
	}
	require.Len(t, statuses, 1, "single-valued predicate must merge to one quad")
	assert.Equal(t, ir.StatusEnabled, statuses[0].Object)
}

func TestMutatorResolveFailureAborts(t *testing.T) {
	mutator := NewStateMutator(NewKernel(newTestCatalog(sequenceSpec())), discardLogger())
	v := NewView([]ir.Quad{q("ghost", ir.PredStatus, ir.StatusEnabled, "g")})

	_, err := mutator.Mutate(v, []ir.Quad{
		q("ghost", ir.PredShouldFire, ir.PhaseRun, "g"),
	})
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "ghost", re.Node)
}
