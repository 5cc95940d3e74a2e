package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Quad is the atomic fact: (subject, predicate, object, graph).
// Immutable once created; identity is structural equality. The graph
// component names the case instance the fact belongs to.
type Quad struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Graph     string `json:"graph"`
}

// Compare orders quads lexicographically by (subject, predicate, object,
// graph). This is THE canonical quad order: every serialization and every
// deterministic iteration in the engine uses it.
func (q Quad) Compare(other Quad) int {
	if c := strings.Compare(q.Subject, other.Subject); c != 0 {
		return c
	}
	if c := strings.Compare(q.Predicate, other.Predicate); c != 0 {
		return c
	}
	if c := strings.Compare(q.Object, other.Object); c != 0 {
		return c
	}
	return strings.Compare(q.Graph, other.Graph)
}

// String renders the quad in the line-quads text format.
func (q Quad) String() string {
	return fmt.Sprintf("%s %s %s %s", q.Subject, q.Predicate, q.Object, q.Graph)
}

// toIR converts the quad to a 4-element IRArray for canonical hashing.
func (q Quad) toIR() IRArray {
	return IRArray{IRString(q.Subject), IRString(q.Predicate), IRString(q.Object), IRString(q.Graph)}
}

// SortQuads sorts a quad slice in place into canonical order.
func SortQuads(quads []Quad) {
	slices.SortFunc(quads, Quad.Compare)
}

// DedupeQuads returns the quads sorted canonically with duplicates removed.
// The input slice is not modified.
func DedupeQuads(quads []Quad) []Quad {
	out := make([]Quad, len(quads))
	copy(out, quads)
	SortQuads(out)
	return slices.Compact(out)
}

// QuadDelta is the unit of mutation: a paired add/remove set.
//
// INVARIANTS:
//   - Added and Removed are disjoint
//   - Applying a delta is remove-then-add; removing an absent quad is a
//     no-op, never an error
type QuadDelta struct {
	Added   []Quad `json:"added"`
	Removed []Quad `json:"removed"`
}

// NewQuadDelta builds a canonical delta (sorted, deduped) and enforces the
// disjointness invariant.
func NewQuadDelta(added, removed []Quad) (QuadDelta, error) {
	d := QuadDelta{Added: DedupeQuads(added), Removed: DedupeQuads(removed)}
	seen := make(map[Quad]bool, len(d.Removed))
	for _, q := range d.Removed {
		seen[q] = true
	}
	for _, q := range d.Added {
		if seen[q] {
			return QuadDelta{}, fmt.Errorf("quad %q appears in both added and removed", q)
		}
	}
	return d, nil
}

// Canonicalize returns the delta with both sides sorted and deduped.
func (d QuadDelta) Canonicalize() QuadDelta {
	return QuadDelta{Added: DedupeQuads(d.Added), Removed: DedupeQuads(d.Removed)}
}

// Size returns |added| + |removed|.
func (d QuadDelta) Size() int {
	return len(d.Added) + len(d.Removed)
}

// Empty reports whether the delta changes nothing.
func (d QuadDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// toIR converts the delta to an IRObject for canonical hashing. Both sides
// are canonicalized first so equal deltas always hash identically.
func (d QuadDelta) toIR() IRObject {
	c := d.Canonicalize()
	added := make(IRArray, len(c.Added))
	for i, q := range c.Added {
		added[i] = q.toIR()
	}
	removed := make(IRArray, len(c.Removed))
	for i, q := range c.Removed {
		removed[i] = q.toIR()
	}
	return IRObject{"added": added, "removed": removed}
}

// MarshalDeltaCanonical serializes the delta as RFC 8785 canonical JSON.
// This is the byte stream that receipt hashes commit to.
func MarshalDeltaCanonical(d QuadDelta) ([]byte, error) {
	return MarshalCanonical(d.toIR())
}

// Pattern is a concrete match pattern for store queries: empty fields are
// wildcards. This is the store port's query primitive; variable joins are
// the kernel's job, not the store's.
type Pattern struct {
	Subject   string
	Predicate string
	Object    string
	Graph     string
}

// Matches reports whether the quad satisfies the pattern.
func (p Pattern) Matches(q Quad) bool {
	if p.Subject != "" && p.Subject != q.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != q.Predicate {
		return false
	}
	if p.Object != "" && p.Object != q.Object {
		return false
	}
	if p.Graph != "" && p.Graph != q.Graph {
		return false
	}
	return true
}

// QuadSetsEqual reports whether two quad slices contain the same set of
// quads, ignoring order and duplicates. Used by the atomicity tests to
// compare store states.
func QuadSetsEqual(a, b []Quad) bool {
	return slices.Equal(DedupeQuads(a), DedupeQuads(b))
}
