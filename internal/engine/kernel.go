package engine

import (
	"fmt"

	"github.com/weftlabs/weft/internal/ir"
)

// Kernel resolves nodes to verb specifications and executes their rewrite
// templates. It contains no pattern-specific logic: every behavioral
// difference between workflow patterns lives in catalog data.
type Kernel struct {
	catalog Catalog
}

func NewKernel(catalog Catalog) *Kernel {
	return &Kernel{catalog: catalog}
}

// Resolve reads a node's structural quads and looks up its verb spec.
// A node with no wf:pattern quad, or a key missing from the catalog, is
// a hard error: the kernel never guesses behavior.
func (k *Kernel) Resolve(v *View, node, graph string) (ir.VerbSpec, error) {
	patternID, ok := v.Object(node, ir.PredPattern, graph)
	if !ok {
		return ir.VerbSpec{}, &ResolveError{
			Node: node,
			Err:  fmt.Errorf("no %s quad in graph %s", ir.PredPattern, graph),
		}
	}
	nodeType, ok := v.Object(node, ir.PredType, graph)
	if !ok {
		return ir.VerbSpec{}, &ResolveError{
			Node: node,
			Err:  fmt.Errorf("no %s quad in graph %s", ir.PredType, graph),
		}
	}
	split, ok := v.Object(node, ir.PredSplit, graph)
	if !ok {
		split = ir.BehaviorNone
	}
	join, ok := v.Object(node, ir.PredJoin, graph)
	if !ok {
		join = ir.BehaviorNone
	}

	key := ir.SpecKey{
		PatternID: patternID,
		NodeType:  nodeType,
		SplitType: split,
		JoinType:  join,
	}
	spec, err := k.catalog.Lookup(key)
	if err != nil {
		return ir.VerbSpec{}, &ResolveError{Node: node, Key: key, Err: err}
	}
	return spec, nil
}

// Execute runs a template's steps against a working copy of the view and
// returns the net delta relative to the input view. Steps see the effects
// of earlier steps. A step whose WHERE matches nothing is a no-op; the
// whole execution succeeding with an empty delta is a valid outcome.
//
// The returned delta is net: a quad both added and removed along the way
// appears in neither side.
func (k *Kernel) Execute(v *View, spec ir.VerbSpec, tpl ir.Template, node, graph string) (ir.QuadDelta, error) {
	working := v.Clone()
	seed := ir.Binding{"node": node, "case": graph}

	for i, step := range tpl.Steps {
		bindings := MatchWhere(working, seed, step.Where)

		var kept []ir.Binding
		for _, b := range bindings {
			ok, err := CheckGuards(working, b, step.Guards, &spec.Params)
			if err != nil {
				return ir.QuadDelta{}, &ResolveError{
					Node: node,
					Key:  spec.Key(),
					Err:  fmt.Errorf("step %d: %w", i, err),
				}
			}
			if ok {
				kept = append(kept, b)
			}
		}

		if step.Candidate != "" {
			selected, err := selectCandidates(working, kept, step.Candidate, spec, node, graph)
			if err != nil {
				return ir.QuadDelta{}, &ResolveError{
					Node: node,
					Key:  spec.Key(),
					Err:  fmt.Errorf("step %d: %w", i, err),
				}
			}
			kept = selected
		}

		for _, b := range kept {
			for _, p := range step.Remove {
				q, err := b.Instantiate(p)
				if err != nil {
					return ir.QuadDelta{}, &ResolveError{Node: node, Key: spec.Key(), Err: err}
				}
				working.Remove(q)
			}
			for _, p := range step.Add {
				q, err := b.Instantiate(p)
				if err != nil {
					return ir.QuadDelta{}, &ResolveError{Node: node, Key: spec.Key(), Err: err}
				}
				working.Add(q)
			}
		}
	}

	return working.Diff(v), nil
}

// Fire resolves and executes a node's exec template in one call.
func (k *Kernel) Fire(v *View, node, graph string) (ir.QuadDelta, error) {
	spec, err := k.Resolve(v, node, graph)
	if err != nil {
		return ir.QuadDelta{}, err
	}
	return k.Execute(v, spec, spec.Exec, node, graph)
}

// Cancel resolves and executes a node's removal template in one call.
func (k *Kernel) Cancel(v *View, node, graph string) (ir.QuadDelta, error) {
	spec, err := k.Resolve(v, node, graph)
	if err != nil {
		return ir.QuadDelta{}, err
	}
	return k.Execute(v, spec, spec.Removal, node, graph)
}
