package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Term is one position of a quad pattern: either a variable (leading '?')
// or a constant literal.
type Term struct {
	Var   string `json:"var,omitempty"`
	Const string `json:"const,omitempty"`
}

// V constructs a variable term. The name excludes the leading '?'.
func V(name string) Term { return Term{Var: name} }

// C constructs a constant term.
func C(value string) Term { return Term{Const: value} }

// ParseTerm interprets a template token: "?name" is a variable, anything
// else is a constant.
func ParseTerm(tok string) Term {
	if strings.HasPrefix(tok, "?") {
		return V(strings.TrimPrefix(tok, "?"))
	}
	return C(tok)
}

// IsVar reports whether the term is a variable.
func (t Term) IsVar() bool { return t.Var != "" }

func (t Term) String() string {
	if t.IsVar() {
		return "?" + t.Var
	}
	return t.Const
}

// PatternQuad is a quad with variables: the unit of WHERE matching and of
// add/remove instantiation.
type PatternQuad struct {
	Subject   Term `json:"subject"`
	Predicate Term `json:"predicate"`
	Object    Term `json:"object"`
	Graph     Term `json:"graph"`
}

// Terms returns the four positions in quad order.
func (p PatternQuad) Terms() [4]Term {
	return [4]Term{p.Subject, p.Predicate, p.Object, p.Graph}
}

func (p PatternQuad) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Subject, p.Predicate, p.Object, p.Graph)
}

// Binding maps variable names to concrete values.
type Binding map[string]string

// Clone returns an independent copy of the binding.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Resolve substitutes the binding into a term. Returns an error for
// unbound variables: instantiation must be total.
func (b Binding) Resolve(t Term) (string, error) {
	if !t.IsVar() {
		return t.Const, nil
	}
	v, ok := b[t.Var]
	if !ok {
		return "", fmt.Errorf("unbound variable ?%s", t.Var)
	}
	return v, nil
}

// Instantiate substitutes the binding into a pattern quad.
func (b Binding) Instantiate(p PatternQuad) (Quad, error) {
	s, err := b.Resolve(p.Subject)
	if err != nil {
		return Quad{}, err
	}
	pr, err := b.Resolve(p.Predicate)
	if err != nil {
		return Quad{}, err
	}
	o, err := b.Resolve(p.Object)
	if err != nil {
		return Quad{}, err
	}
	g, err := b.Resolve(p.Graph)
	if err != nil {
		return Quad{}, err
	}
	return Quad{Subject: s, Predicate: pr, Object: o, Graph: g}, nil
}

// GuardKind categorizes template guards.
type GuardKind string

const (
	// GuardCountAtLeast requires the pattern to match at least Threshold
	// times under the current binding. Threshold may be a literal integer
	// or one of the symbolic values resolved by the kernel ("all", "one",
	// "dynamic").
	GuardCountAtLeast GuardKind = "countAtLeast"

	// GuardAbsent requires the pattern to have no match under the current
	// binding (closed-world negation over the tick's view).
	GuardAbsent GuardKind = "absent"
)

// Guard constrains the bindings produced by a WHERE clause.
type Guard struct {
	Kind      GuardKind   `json:"kind"`
	Pattern   PatternQuad `json:"pattern"`
	Threshold string      `json:"threshold,omitempty"`
}

// RewriteStep is one bounded match-instantiate unit: match Where (all
// patterns must join), filter by Guards, then for the surviving bindings
// remove the instantiated Remove quads and add the instantiated Add quads.
//
// Candidate names the variable whose distinct values are the step's
// candidates; selection policies (cardinality, selectionMode) restrict the
// candidate set, not raw bindings. Empty Candidate means no selection.
//
// A Where clause matching zero rows yields an empty delta: success with
// no-op, never an error.
type RewriteStep struct {
	Comment   string        `json:"comment,omitempty"`
	Where     []PatternQuad `json:"where"`
	Guards    []Guard       `json:"guards,omitempty"`
	Remove    []PatternQuad `json:"remove,omitempty"`
	Add       []PatternQuad `json:"add,omitempty"`
	Candidate string        `json:"candidate,omitempty"`
}

// Template is a bounded graph rewrite: an ordered list of steps executed
// against a working view that accumulates the earlier steps' changes. A
// typical execution template is [consume-and-enable, complete,
// propagate...]; each step that does not match is a silent no-op, so one
// template covers every lifecycle position of its node.
type Template struct {
	Steps []RewriteStep `json:"steps"`
}

// Vars returns the sorted set of variables the step mentions.
func (s RewriteStep) Vars() []string {
	seen := map[string]bool{}
	collect := func(patterns []PatternQuad) {
		for _, p := range patterns {
			for _, term := range p.Terms() {
				if term.IsVar() {
					seen[term.Var] = true
				}
			}
		}
	}
	collect(s.Where)
	collect(s.Remove)
	collect(s.Add)
	for _, g := range s.Guards {
		for _, term := range g.Pattern.Terms() {
			if term.IsVar() {
				seen[term.Var] = true
			}
		}
	}
	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}
