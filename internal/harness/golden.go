package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/weftlabs/weft/internal/ir"
)

// TraceSnapshot renders a run as a canonical JSON document for golden
// comparison. Only deterministic fields appear: tick numbers, delta
// sizes, commit flags, and final statuses. Durations and receipt
// timestamps are excluded.
func TraceSnapshot(r *Result) ([]byte, error) {
	ticks := make(ir.IRArray, 0, len(r.History))
	for _, o := range r.History {
		ticks = append(ticks, ir.IRObject{
			"tick":      ir.IRInt(o.TickNumber),
			"delta":     ir.IRInt(o.Delta),
			"committed": ir.IRBool(o.Committed),
			"converged": ir.IRBool(o.Converged),
		})
	}

	statuses := ir.IRObject{}
	for node, status := range r.Statuses() {
		statuses[node] = ir.IRString(status)
	}

	doc := ir.IRObject{
		"scenario":  ir.IRString(r.Scenario.Name),
		"converged": ir.IRBool(r.Converged),
		"ticks":     ticks,
		"statuses":  statuses,
	}
	return ir.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/{name}.golden. Regenerate with -update.
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), s)
	if err != nil {
		t.Fatalf("run scenario %s: %v", s.Name, err)
	}

	trace, err := TraceSnapshot(result)
	if err != nil {
		t.Fatalf("snapshot scenario %s: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, trace)

	return result
}
