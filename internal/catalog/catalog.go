// Package catalog loads and serves the declarative pattern catalog: the
// CUE-defined mapping from (node type, split, join, pattern id) keys to
// verb specifications, plus the reasoner's inference rules.
//
// The catalog is compiled once at startup and immutable afterwards.
// Lookup is a pure function of the key; a miss is a hard error, never a
// guess.
package catalog

import (
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue/cuecontext"

	"github.com/weftlabs/weft/internal/ir"
)

// NotFoundError reports a catalog miss.
type NotFoundError struct {
	Key ir.SpecKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no catalog entry for %s", e.Key)
}

// Catalog is the compiled pattern catalog.
type Catalog struct {
	specs map[ir.SpecKey]ir.VerbSpec
	ids   []string
	rules ir.RuleSet
}

// New builds a catalog from compiled specs and rules, rejecting duplicate
// keys and structurally incomplete entries.
func New(specs []ir.VerbSpec, rules ir.RuleSet) (*Catalog, error) {
	c := &Catalog{specs: make(map[ir.SpecKey]ir.VerbSpec, len(specs)), rules: rules}
	for _, spec := range specs {
		if err := checkSpec(spec); err != nil {
			return nil, err
		}
		key := spec.Key()
		if _, dup := c.specs[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry for %s", key)
		}
		c.specs[key] = spec
		c.ids = append(c.ids, spec.PatternID)
	}
	return c, nil
}

// checkSpec enforces the load-time completeness rules: valid literals,
// an exec template for every pattern, a removal template for every
// pattern (cancellation must always be possible), and resolvable
// symbolic parameters.
func checkSpec(spec ir.VerbSpec) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("catalog: pattern %s: %s", spec.PatternID, fmt.Sprintf(format, args...))
	}
	if spec.NodeType != ir.NodeTask && spec.NodeType != ir.NodeCondition {
		return fail("unknown node type %q", spec.NodeType)
	}
	if !ir.ValidBehaviors[spec.SplitType] {
		return fail("unknown split behavior %q", spec.SplitType)
	}
	if !ir.ValidBehaviors[spec.JoinType] {
		return fail("unknown join behavior %q", spec.JoinType)
	}
	if len(spec.Exec.Steps) == 0 {
		return fail("exec template has no steps")
	}
	if len(spec.Removal.Steps) == 0 {
		return fail("removal template has no steps")
	}
	if spec.Verb == ir.VerbAwait && spec.Params.Threshold != "" {
		if err := checkThresholdLiteral(spec.Params.Threshold); err != nil {
			return fail("%v", err)
		}
	}
	if spec.Verb == ir.VerbCopy && spec.Params.Cardinality == ir.CardinalityStatic && spec.Params.Count < 1 {
		return fail("static cardinality requires count >= 1")
	}
	return nil
}

func checkThresholdLiteral(threshold string) error {
	switch threshold {
	case ir.ThresholdAll, ir.ThresholdOne, ir.ThresholdDynamic, "quorum":
		return nil
	}
	n, err := strconv.Atoi(threshold)
	if err != nil {
		return fmt.Errorf("threshold %q is neither symbolic nor an integer", threshold)
	}
	if n < 1 {
		return fmt.Errorf("static threshold must be >= 1, got %d", n)
	}
	return nil
}

// Lookup returns the spec for a key or a NotFoundError.
func (c *Catalog) Lookup(key ir.SpecKey) (ir.VerbSpec, error) {
	spec, ok := c.specs[key]
	if !ok {
		return ir.VerbSpec{}, &NotFoundError{Key: key}
	}
	return spec, nil
}

// Rules returns the full inference rule set in declaration order.
func (c *Catalog) Rules() ir.RuleSet { return c.rules }

// RuleSubset returns the rules serving the given pattern ids.
func (c *Catalog) RuleSubset(patternIDs []string) ir.RuleSet {
	return c.rules.ForPatterns(patternIDs)
}

// SpecByID returns the first spec registered under a pattern id.
func (c *Catalog) SpecByID(patternID string) (ir.VerbSpec, bool) {
	for _, spec := range c.specs {
		if spec.PatternID == patternID {
			return spec, true
		}
	}
	return ir.VerbSpec{}, false
}

// PatternIDs returns the loaded pattern ids in declaration order.
// Pattern ids repeat when one pattern registers several key shapes.
func (c *Catalog) PatternIDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.specs) }

// LoadSource compiles a catalog from CUE source text.
func LoadSource(src string) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	specs, rules, err := CompileCatalog(v)
	if err != nil {
		return nil, err
	}
	return New(specs, rules)
}

// LoadFile compiles a catalog from a CUE file on disk.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return LoadSource(string(src))
}
