package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/ir"
)

// Scenario is a declarative workflow execution test case loaded from YAML.
//
// Quads use the line format "subject predicate object graph", one per
// line. Expectations are checked against the state after the runner
// stops: final statuses by node, convergence or divergence, and how many
// ticks actually mutated state.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Graph is the case graph name the engine operates on.
	Graph string `yaml:"graph"`

	// Quads is the initial store content in line-quad form.
	Quads string `yaml:"quads"`

	// MaxTicks bounds the convergence runner. Defaults to 25.
	MaxTicks int `yaml:"max_ticks,omitempty"`

	// ExpectStatuses maps node id to the wf:status value it must hold
	// when the runner stops.
	ExpectStatuses map[string]string `yaml:"expect_statuses,omitempty"`

	// ExpectConverged asserts the runner reached a committed zero-delta
	// tick. ExpectDiverged asserts it exhausted MaxTicks instead.
	ExpectConverged bool `yaml:"expect_converged,omitempty"`
	ExpectDiverged  bool `yaml:"expect_diverged,omitempty"`

	// ExpectMutatingTicks, when non-zero, asserts the number of
	// committed ticks with a positive delta.
	ExpectMutatingTicks int `yaml:"expect_mutating_ticks,omitempty"`
}

// InitialQuads parses the scenario's quads block.
func (s *Scenario) InitialQuads() ([]ir.Quad, error) {
	quads, err := ir.ParseLineQuads(strings.NewReader(s.Quads))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return quads, nil
}

// LoadScenario reads and validates a scenario file. Unknown YAML fields
// are rejected so that typos in expectation keys fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario missing name")
	}
	if s.Graph == "" {
		return fmt.Errorf("scenario %s: missing graph", s.Name)
	}
	if strings.TrimSpace(s.Quads) == "" {
		return fmt.Errorf("scenario %s: missing quads", s.Name)
	}
	if s.ExpectConverged && s.ExpectDiverged {
		return fmt.Errorf("scenario %s: cannot expect both convergence and divergence", s.Name)
	}
	if s.MaxTicks < 0 {
		return fmt.Errorf("scenario %s: max_ticks must be positive", s.Name)
	}
	if s.MaxTicks == 0 {
		s.MaxTicks = 25
	}
	if _, err := s.InitialQuads(); err != nil {
		return err
	}
	return nil
}
