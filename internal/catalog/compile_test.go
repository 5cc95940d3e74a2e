package catalog

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ir"
)

func TestCompileSpecMinimal(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		name:  "Sequence"
		node:  "task"
		split: "none"
		join:  "none"
		verb:  "transmute"
		exec: steps: [{
			comment: "complete"
			where: [["?node", "wf:status", "Enabled", "?case"]]
			remove: [["?node", "wf:status", "Enabled", "?case"]]
			add: [["?node", "wf:status", "Completed", "?case"]]
		}]
		removal: steps: [{
			where: [["?node", "wf:status", "Enabled", "?case"]]
			remove: [["?node", "wf:status", "Enabled", "?case"]]
			add: [["?node", "wf:status", "Cancelled", "?case"]]
		}]
	`)
	require.NoError(t, v.Err())

	spec, err := CompileSpec("wcp1-sequence", v)
	require.NoError(t, err)

	assert.Equal(t, "wcp1-sequence", spec.PatternID)
	assert.Equal(t, ir.VerbTransmute, spec.Verb)
	require.Len(t, spec.Exec.Steps, 1)

	step := spec.Exec.Steps[0]
	assert.Equal(t, "complete", step.Comment)
	require.Len(t, step.Where, 1)
	assert.Equal(t, ir.V("node"), step.Where[0].Subject)
	assert.Equal(t, ir.C("wf:status"), step.Where[0].Predicate)
	assert.Equal(t, ir.C("Enabled"), step.Where[0].Object)
	assert.Equal(t, ir.V("case"), step.Where[0].Graph)
}

func TestCompileSpecParams(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		name:  "Partial Join"
		node:  "task"
		split: "none"
		join:  "and"
		verb:  "await"
		params: {
			threshold:          "2"
			count:              2
			completionStrategy: "waitQuorum"
			resetOnFire:        true
		}
		exec: steps: [{
			where: [["?node", "wf:status", "Pending", "?case"]]
			guards: [{
				kind:      "countAtLeast"
				pattern: ["?node", "wf:offer", "?src", "?case"]
				threshold: "param"
			}]
			add: [["?node", "wf:status", "Enabled", "?case"]]
		}]
		removal: steps: [{
			where: [["?node", "wf:status", "Pending", "?case"]]
			remove: [["?node", "wf:status", "Pending", "?case"]]
		}]
	`)
	require.NoError(t, v.Err())

	spec, err := CompileSpec("wcp30-partial-join", v)
	require.NoError(t, err)

	assert.Equal(t, "2", spec.Params.Threshold)
	assert.Equal(t, int64(2), spec.Params.Count)
	assert.Equal(t, ir.CompleteWaitQuorum, spec.Params.CompletionStrategy)
	assert.True(t, spec.Params.ResetOnFire)

	require.Len(t, spec.Exec.Steps[0].Guards, 1)
	guard := spec.Exec.Steps[0].Guards[0]
	assert.Equal(t, ir.GuardCountAtLeast, guard.Kind)
	assert.Equal(t, "param", guard.Threshold)
}

func TestCompileSpecErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing verb",
			src: `
				name: "X", node: "task", split: "none", join: "none"
				exec: steps: [{where: [["a", "b", "c", "d"]]}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "verb is required",
		},
		{
			name: "unknown verb",
			src: `
				name: "X", node: "task", split: "none", join: "none", verb: "summon"
				exec: steps: [{where: [["a", "b", "c", "d"]]}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "unknown verb",
		},
		{
			name: "short pattern",
			src: `
				name: "X", node: "task", split: "none", join: "none", verb: "transmute"
				exec: steps: [{where: [["a", "b", "c"]]}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "3 elements",
		},
		{
			name: "empty where",
			src: `
				name: "X", node: "task", split: "none", join: "none", verb: "transmute"
				exec: steps: [{add: [["a", "b", "c", "d"]]}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "non-empty where",
		},
		{
			name: "guard without threshold",
			src: `
				name: "X", node: "task", split: "none", join: "none", verb: "transmute"
				exec: steps: [{
					where: [["a", "b", "c", "d"]]
					guards: [{kind: "countAtLeast", pattern: ["a", "b", "c", "d"]}]
				}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "requires a threshold",
		},
		{
			name: "unknown guard kind",
			src: `
				name: "X", node: "task", split: "none", join: "none", verb: "transmute"
				exec: steps: [{
					where: [["a", "b", "c", "d"]]
					guards: [{kind: "exists", pattern: ["a", "b", "c", "d"]}]
				}]
				removal: steps: [{where: [["a", "b", "c", "d"]]}]
			`,
			want: "unknown guard kind",
		},
	}

	ctx := cuecontext.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ctx.CompileString(tc.src)
			require.NoError(t, v.Err())
			_, err := CompileSpec("x", v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompileCatalogRules(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		patterns: {}
		rules: [
			{
				id: "r-run"
				where: [["?n", "wf:status", "Enabled", "?g"]]
				produce: [["?n", "wf:shouldFire", "run", "?g"]]
			},
			{
				id: "r-milestone"
				patterns: ["wcp18-milestone"]
				where: [["?n", "wf:milestone", "true", "?g"]]
				produce: [["?n", "wf:shouldFire", "offer", "?g"]]
			},
		]
	`)
	require.NoError(t, v.Err())

	_, rules, err := CompileCatalog(v)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r-run", rules[0].ID)
	assert.Empty(t, rules[0].Patterns)
	assert.Equal(t, []string{"wcp18-milestone"}, rules[1].Patterns)
}

func TestCompileCatalogRequiresPatterns(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`rules: []`)
	require.NoError(t, v.Err())

	_, _, err := CompileCatalog(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patterns struct is required")
}
