package engine

import (
	"slices"

	"github.com/weftlabs/weft/internal/ir"
)

// View is an in-memory quad set: the engine's working copy of the graph
// for one tick. A view is loaded once from the store snapshot; the
// kernel, mutator, validator, and in-process reasoner all read from it,
// so a tick performs exactly one store read.
//
// Views are NOT thread-safe. The single-writer tick pipeline owns the
// view for the duration of the tick.
type View struct {
	quads map[ir.Quad]struct{}
}

// NewView builds a view over the given quads.
func NewView(quads []ir.Quad) *View {
	v := &View{quads: make(map[ir.Quad]struct{}, len(quads))}
	for _, q := range quads {
		v.quads[q] = struct{}{}
	}
	return v
}

// Clone returns an independent copy of the view.
func (v *View) Clone() *View {
	out := &View{quads: make(map[ir.Quad]struct{}, len(v.quads))}
	for q := range v.quads {
		out.quads[q] = struct{}{}
	}
	return out
}

// Contains reports whether the view holds the quad.
func (v *View) Contains(q ir.Quad) bool {
	_, ok := v.quads[q]
	return ok
}

// Match returns all quads satisfying the pattern in canonical order.
func (v *View) Match(p ir.Pattern) []ir.Quad {
	out := []ir.Quad{}
	for q := range v.quads {
		if p.Matches(q) {
			out = append(out, q)
		}
	}
	ir.SortQuads(out)
	return out
}

// Count returns the number of quads satisfying the pattern.
func (v *View) Count(p ir.Pattern) int {
	n := 0
	for q := range v.quads {
		if p.Matches(q) {
			n++
		}
	}
	return n
}

// Quads returns the full quad set in canonical order.
func (v *View) Quads() []ir.Quad {
	return v.Match(ir.Pattern{})
}

// Len returns the number of quads in the view.
func (v *View) Len() int {
	return len(v.quads)
}

// Apply mutates the view by a delta: remove-then-add, idempotent.
// Add inserts a single quad. Inserting a present quad is a no-op.
func (v *View) Add(q ir.Quad) {
	v.quads[q] = struct{}{}
}

// Remove deletes a single quad. Deleting an absent quad is a no-op.
func (v *View) Remove(q ir.Quad) {
	delete(v.quads, q)
}

func (v *View) Apply(delta ir.QuadDelta) {
	for _, q := range delta.Removed {
		delete(v.quads, q)
	}
	for _, q := range delta.Added {
		v.quads[q] = struct{}{}
	}
}

// Diff computes the net delta that transforms base into v: quads present
// in v but not base are added, quads present in base but not v are
// removed. Both sides come out in canonical order and are disjoint by
// construction.
func (v *View) Diff(base *View) ir.QuadDelta {
	var added, removed []ir.Quad
	for q := range v.quads {
		if !base.Contains(q) {
			added = append(added, q)
		}
	}
	for q := range base.quads {
		if !v.Contains(q) {
			removed = append(removed, q)
		}
	}
	ir.SortQuads(added)
	ir.SortQuads(removed)
	return ir.QuadDelta{Added: added, Removed: removed}
}

// Object returns the object of the first quad matching (subject,
// predicate, graph), ok=false when absent. With multiple matches the
// canonically lowest object wins - deterministic, never map order.
func (v *View) Object(subject, predicate, graph string) (string, bool) {
	matches := v.Match(ir.Pattern{Subject: subject, Predicate: predicate, Graph: graph})
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Object, true
}

// Graphs returns the distinct graph names present in the view, sorted.
func (v *View) Graphs() []string {
	seen := map[string]bool{}
	for q := range v.quads {
		seen[q.Graph] = true
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}
