package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	v := ParseTerm("?node")
	assert.True(t, v.IsVar())
	assert.Equal(t, "node", v.Var)
	assert.Equal(t, "?node", v.String())

	c := ParseTerm("wf:status")
	assert.False(t, c.IsVar())
	assert.Equal(t, "wf:status", c.String())
}

func TestBindingInstantiate(t *testing.T) {
	b := Binding{"node": "task:b", "case": "case:1"}
	p := PatternQuad{V("node"), C(PredStatus), C(StatusEnabled), V("case")}

	q, err := b.Instantiate(p)
	require.NoError(t, err)

	assert.Equal(t, Quad{"task:b", PredStatus, StatusEnabled, "case:1"}, q)
}

func TestBindingInstantiateUnboundVariable(t *testing.T) {
	b := Binding{"node": "task:b"}
	p := PatternQuad{V("node"), C(PredStatus), V("missing"), C("case:1")}

	_, err := b.Instantiate(p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound variable ?missing")
}

func TestBindingCloneIsIndependent(t *testing.T) {
	b := Binding{"node": "task:a"}
	c := b.Clone()
	c["node"] = "task:b"

	assert.Equal(t, "task:a", b["node"])
}

func TestRewriteStepVars(t *testing.T) {
	tpl := RewriteStep{
		Where: []PatternQuad{
			{V("node"), C(PredFlowsTo), V("succ"), V("case")},
		},
		Guards: []Guard{
			{Kind: GuardAbsent, Pattern: PatternQuad{V("succ"), C(PredEmitted), C(ValueTrue), V("case")}},
		},
		Add: []PatternQuad{
			{V("succ"), C(PredStatus), C(StatusEnabled), V("case")},
		},
	}

	assert.Equal(t, []string{"case", "node", "succ"}, tpl.Vars())
}

func TestRuleSetForPatterns(t *testing.T) {
	rs := RuleSet{
		{ID: "r-global"},
		{ID: "r-seq", Patterns: []string{"wcp1-sequence"}},
		{ID: "r-sync", Patterns: []string{"wcp3-synchronization"}},
	}

	sub := rs.ForPatterns([]string{"wcp1-sequence"})

	require.Len(t, sub, 2)
	assert.Equal(t, "r-global", sub[0].ID, "declaration order preserved, global rules always included")
	assert.Equal(t, "r-seq", sub[1].ID)
}
