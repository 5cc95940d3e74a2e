package ir

// InferenceRule is one monotonic rule evaluated by the reasoner: match
// Where, filter by Guards, produce the instantiated Produce quads. Rules
// have no Remove side by construction - inference only adds facts. The
// non-monotonic delete+add complement happens in the verb executors.
type InferenceRule struct {
	ID       string        `json:"id"`
	Patterns []string      `json:"patterns,omitempty"` // pattern ids this rule serves
	Where    []PatternQuad `json:"where"`
	Guards   []Guard       `json:"guards,omitempty"`
	Produce  []PatternQuad `json:"produce"`
}

// RuleSet is an ordered collection of inference rules. Order is the
// declaration order from the catalog source and NEVER changes after load:
// the reasoner's output order (and therefore the mutator's later-wins
// merge) depends on it.
type RuleSet []InferenceRule

// ForPatterns returns the rules serving any of the given pattern ids,
// preserving declaration order. Rules with an empty Patterns list apply
// to every pattern.
func (rs RuleSet) ForPatterns(patternIDs []string) RuleSet {
	want := make(map[string]bool, len(patternIDs))
	for _, id := range patternIDs {
		want[id] = true
	}
	var out RuleSet
	for _, r := range rs {
		if len(r.Patterns) == 0 {
			out = append(out, r)
			continue
		}
		for _, p := range r.Patterns {
			if want[p] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
