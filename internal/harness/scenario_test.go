package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
graph: case-1
quads: |
  a wf:type task case-1
expect_converged: true
expect_statuses:
  a: Pending
`))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "case-1", s.Graph)
	assert.Equal(t, 25, s.MaxTicks, "max_ticks defaults when omitted")
	assert.Equal(t, map[string]string{"a": "Pending"}, s.ExpectStatuses)

	quads, err := s.InitialQuads()
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.Equal(t, "a", quads[0].Subject)
}

func TestParseScenarioRejectsUnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
graph: case-1
quads: "a wf:type task case-1"
expect_statusses:
  a: Pending
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expect_statusses")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "graph: g\nquads: \"a wf:type task g\"\n",
			want: "missing name",
		},
		{
			name: "missing graph",
			yaml: "name: x\nquads: \"a wf:type task g\"\n",
			want: "missing graph",
		},
		{
			name: "missing quads",
			yaml: "name: x\ngraph: g\n",
			want: "missing quads",
		},
		{
			name: "contradictory expectations",
			yaml: "name: x\ngraph: g\nquads: \"a wf:type task g\"\nexpect_converged: true\nexpect_diverged: true\n",
			want: "cannot expect both",
		},
		{
			name: "malformed quad line",
			yaml: "name: x\ngraph: g\nquads: \"a wf:type task\"\n",
			want: "expected 4 fields",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/sequence.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sequence-three-tasks", s.Name)
	assert.True(t, s.ExpectConverged)

	quads, err := s.InitialQuads()
	require.NoError(t, err)
	assert.Len(t, quads, 17)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/no-such.yaml")
	require.Error(t, err)
}
