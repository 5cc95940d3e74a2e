package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ir"
)

func TestLoadBuiltin(t *testing.T) {
	c, err := LoadBuiltin()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c.Len(), 16)

	// Every builtin pattern must be reachable by its declared key.
	for _, id := range c.PatternIDs() {
		assert.NotEmpty(t, id)
	}
}

func TestBuiltinLookup(t *testing.T) {
	c := MustBuiltin()

	spec, err := c.Lookup(ir.SpecKey{
		NodeType:  ir.NodeTask,
		SplitType: ir.BehaviorNone,
		JoinType:  ir.BehaviorNone,
		PatternID: "wcp1-sequence",
	})
	require.NoError(t, err)
	assert.Equal(t, ir.VerbTransmute, spec.Verb)
	assert.NotEmpty(t, spec.Exec.Steps)
	assert.NotEmpty(t, spec.Removal.Steps)

	join, err := c.Lookup(ir.SpecKey{
		NodeType:  ir.NodeTask,
		SplitType: ir.BehaviorNone,
		JoinType:  ir.BehaviorAnd,
		PatternID: "wcp3-synchronization",
	})
	require.NoError(t, err)
	assert.Equal(t, ir.VerbAwait, join.Verb)
	assert.Equal(t, ir.ThresholdAll, join.Params.Threshold)
}

func TestBuiltinLookupMiss(t *testing.T) {
	c := MustBuiltin()
	_, err := c.Lookup(ir.SpecKey{
		NodeType:  ir.NodeTask,
		SplitType: ir.BehaviorAnd,
		JoinType:  ir.BehaviorAnd,
		PatternID: "wcp1-sequence",
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "wcp1-sequence", nf.Key.PatternID)
}

func TestBuiltinVerbsAndKeysDistinct(t *testing.T) {
	c := MustBuiltin()

	// Same structural shape, different pattern id: key includes the id,
	// so the discriminator and the synchronization join coexist.
	sync := ir.SpecKey{NodeType: ir.NodeTask, SplitType: ir.BehaviorNone, JoinType: ir.BehaviorAnd, PatternID: "wcp3-synchronization"}
	disc := ir.SpecKey{NodeType: ir.NodeTask, SplitType: ir.BehaviorNone, JoinType: ir.BehaviorAnd, PatternID: "wcp9-discriminator"}

	syncSpec, err := c.Lookup(sync)
	require.NoError(t, err)
	discSpec, err := c.Lookup(disc)
	require.NoError(t, err)

	assert.Equal(t, ir.ThresholdAll, syncSpec.Params.Threshold)
	assert.Equal(t, ir.ThresholdOne, discSpec.Params.Threshold)
}

func TestBuiltinRules(t *testing.T) {
	c := MustBuiltin()
	rules := c.Rules()
	require.NotEmpty(t, rules)

	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	assert.Contains(t, ids, "r-run")
	assert.Contains(t, ids, "r-offer")
	assert.Contains(t, ids, "r-cancel")

	// Rules never remove facts: produce-only by construction, and every
	// rule must produce advisories, not graph facts.
	for _, r := range rules {
		require.NotEmpty(t, r.Produce, r.ID)
		for _, p := range r.Produce {
			assert.Equal(t, ir.C(ir.PredShouldFire), p.Predicate, r.ID)
		}
	}

	subset := c.RuleSubset([]string{"wcp18-milestone"})
	var subsetIDs []string
	for _, r := range subset {
		subsetIDs = append(subsetIDs, r.ID)
	}
	assert.Contains(t, subsetIDs, "r-milestone")
	assert.Contains(t, subsetIDs, "r-run", "global rules apply to every pattern")
}

func TestNewRejectsDuplicates(t *testing.T) {
	spec := mustSpec(t)
	_, err := New([]ir.VerbSpec{spec, spec}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
}

func TestNewRejectsIncompleteSpec(t *testing.T) {
	spec := mustSpec(t)
	spec.Removal = ir.Template{}
	_, err := New([]ir.VerbSpec{spec}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "removal template")

	spec = mustSpec(t)
	spec.SplitType = "fanout"
	_, err = New([]ir.VerbSpec{spec}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown split behavior")

	spec = mustSpec(t)
	spec.Verb = ir.VerbAwait
	spec.Params.Threshold = "several"
	_, err = New([]ir.VerbSpec{spec}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither symbolic nor an integer")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.cue")
	require.NoError(t, os.WriteFile(path, []byte(builtinSource), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, MustBuiltin().Len(), c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func mustSpec(t *testing.T) ir.VerbSpec {
	t.Helper()
	c := MustBuiltin()
	spec, err := c.Lookup(ir.SpecKey{
		NodeType:  ir.NodeTask,
		SplitType: ir.BehaviorNone,
		JoinType:  ir.BehaviorNone,
		PatternID: "wcp1-sequence",
	})
	require.NoError(t, err)
	return spec
}
