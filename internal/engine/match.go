package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/weftlabs/weft/internal/ir"
)

// MatchWhere joins the WHERE patterns left to right against the view,
// extending the seed binding. The result order is deterministic: pattern
// order times canonical quad order, never map iteration order.
//
// Zero results is a valid outcome, not an error.
func MatchWhere(v *View, seed ir.Binding, where []ir.PatternQuad) []ir.Binding {
	bindings := []ir.Binding{seed.Clone()}
	for _, pattern := range where {
		var next []ir.Binding
		for _, b := range bindings {
			for _, q := range v.Match(partialPattern(b, pattern)) {
				if extended, ok := unify(b, pattern, q); ok {
					next = append(next, extended)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			return nil
		}
	}
	return bindings
}

// partialPattern instantiates the bound positions of a pattern quad into
// a store pattern; unbound variables become wildcards.
func partialPattern(b ir.Binding, p ir.PatternQuad) ir.Pattern {
	resolve := func(t ir.Term) string {
		if !t.IsVar() {
			return t.Const
		}
		return b[t.Var] // "" when unbound = wildcard
	}
	return ir.Pattern{
		Subject:   resolve(p.Subject),
		Predicate: resolve(p.Predicate),
		Object:    resolve(p.Object),
		Graph:     resolve(p.Graph),
	}
}

// unify extends the binding with the quad's values for the pattern's
// unbound variables. Returns ok=false when a variable occurring twice in
// the pattern would bind two different values.
func unify(b ir.Binding, p ir.PatternQuad, q ir.Quad) (ir.Binding, bool) {
	out := b.Clone()
	positions := []struct {
		term  ir.Term
		value string
	}{
		{p.Subject, q.Subject},
		{p.Predicate, q.Predicate},
		{p.Object, q.Object},
		{p.Graph, q.Graph},
	}
	for _, pos := range positions {
		if !pos.term.IsVar() {
			continue
		}
		if bound, ok := out[pos.term.Var]; ok {
			if bound != pos.value {
				return nil, false
			}
			continue
		}
		out[pos.term.Var] = pos.value
	}
	return out, true
}

// CheckGuards evaluates a step's guards under one binding. Guards with
// unbound variables count or test all their matches.
func CheckGuards(v *View, b ir.Binding, guards []ir.Guard, params *ir.Params) (bool, error) {
	for _, g := range guards {
		pattern := partialPattern(b, g.Pattern)
		switch g.Kind {
		case ir.GuardAbsent:
			if v.Count(pattern) > 0 {
				return false, nil
			}
		case ir.GuardCountAtLeast:
			threshold, err := resolveThreshold(v, g.Threshold, params, pattern.Subject, pattern.Graph)
			if err != nil {
				return false, err
			}
			if v.Count(pattern) < threshold {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unknown guard kind %q", g.Kind)
		}
	}
	return true, nil
}

// resolveThreshold turns a symbolic threshold into a concrete count.
//
//	"one"     -> 1
//	"all"     -> indegree of subject (count of incoming flow edges)
//	"quorum"  -> indegree/2 + 1
//	"dynamic" -> object of (subject, wf:instances, graph), default 1
//	"param"   -> the spec's Threshold parameter (falling back to Count,
//	             then to the completion strategy's natural threshold)
//	decimal   -> static-N
func resolveThreshold(v *View, raw string, params *ir.Params, subject, graph string) (int, error) {
	switch raw {
	case ir.ThresholdOne, "":
		return 1, nil
	case ir.ThresholdAll:
		return indegree(v, subject, graph), nil
	case "quorum":
		return indegree(v, subject, graph)/2 + 1, nil
	case ir.ThresholdDynamic:
		val, ok := v.Object(subject, ir.PredInstances, graph)
		if !ok {
			return 1, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("dynamic threshold for %s: %q is not an integer", subject, val)
		}
		return n, nil
	case "param":
		if params == nil {
			return 1, nil
		}
		if params.Threshold != "" {
			return resolveThreshold(v, params.Threshold, nil, subject, graph)
		}
		if params.Count > 0 {
			return int(params.Count), nil
		}
		switch params.CompletionStrategy {
		case ir.CompleteWaitAll:
			return indegree(v, subject, graph), nil
		case ir.CompleteWaitQuorum:
			return indegree(v, subject, graph)/2 + 1, nil
		default:
			return 1, nil
		}
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("threshold %q is not an integer", raw)
		}
		return n, nil
	}
}

func indegree(v *View, node, graph string) int {
	return v.Count(ir.Pattern{Predicate: ir.PredFlowsTo, Object: node, Graph: graph})
}

// selectCandidates restricts bindings to the selected values of the
// step's candidate variable, per the spec's uniform selection parameters.
//
// Candidate ordering (the tie-break rule): ascending declared priority
// (wf:order, absent sorts last), then lowest lexicographic identifier.
func selectCandidates(v *View, bindings []ir.Binding, candidateVar string, spec ir.VerbSpec, node, graph string) ([]ir.Binding, error) {
	if candidateVar == "" || len(bindings) == 0 {
		return bindings, nil
	}

	// Distinct candidate values.
	seen := map[string]bool{}
	var candidates []string
	for _, b := range bindings {
		val, ok := b[candidateVar]
		if !ok {
			return nil, fmt.Errorf("candidate variable ?%s unbound", candidateVar)
		}
		if !seen[val] {
			seen[val] = true
			candidates = append(candidates, val)
		}
	}

	slices.SortFunc(candidates, func(a, b string) int {
		pa, pb := candidatePriority(v, a, graph), candidatePriority(v, b, graph)
		if pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	limit, err := candidateLimit(v, spec, node, graph, len(candidates))
	if err != nil {
		return nil, err
	}

	chosen := map[string]bool{}
	switch {
	case spec.Verb == ir.VerbFilter && spec.Params.SelectionMode == ir.SelectDeferred:
		// Deferred choice: the environment marks the chosen branch; until
		// then nothing is selected and the step is a no-op.
		for _, c := range candidates {
			if v.Contains(ir.Quad{Subject: c, Predicate: ir.PredChosen, Object: ir.ValueTrue, Graph: graph}) {
				chosen[c] = true
				break
			}
		}
	default:
		for i, c := range candidates {
			if i >= limit {
				break
			}
			chosen[c] = true
		}
	}

	var out []ir.Binding
	for _, b := range bindings {
		if chosen[b[candidateVar]] {
			out = append(out, b)
		}
	}
	return out, nil
}

func candidatePriority(v *View, candidate, graph string) int {
	val, ok := v.Object(candidate, ir.PredOrder, graph)
	if !ok {
		return math.MaxInt
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// candidateLimit interprets cardinality/selectionMode uniformly. The
// kernel never branches on pattern identity - only on these parameters.
func candidateLimit(v *View, spec ir.VerbSpec, node, graph string, total int) (int, error) {
	switch spec.Verb {
	case ir.VerbCopy:
		switch spec.Params.Cardinality {
		case ir.CardinalityTopology, "":
			return total, nil
		case ir.CardinalityStatic:
			return int(spec.Params.Count), nil
		case ir.CardinalityDynamic:
			val, ok := v.Object(node, ir.PredInstances, graph)
			if !ok {
				return total, nil
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("dynamic cardinality for %s: %q is not an integer", node, val)
			}
			return n, nil
		case ir.CardinalityIncremental:
			return 1, nil
		default:
			return 0, fmt.Errorf("unknown cardinality %q", spec.Params.Cardinality)
		}
	case ir.VerbFilter:
		switch spec.Params.SelectionMode {
		case ir.SelectExactlyOne, ir.SelectMutex:
			return 1, nil
		case ir.SelectOneOrMore, ir.SelectWhileTrue, ir.SelectUntilTrue, "":
			return total, nil
		case ir.SelectDeferred:
			return 1, nil
		default:
			return 0, fmt.Errorf("unknown selection mode %q", spec.Params.SelectionMode)
		}
	default:
		return total, nil
	}
}
