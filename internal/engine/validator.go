package engine

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/weftlabs/weft/internal/ir"
)

// WorkflowValidator evaluates the closed-world constraints against a
// view. Absence of a quad is treated as falsity: a node without a status
// quad has no status, full stop.
//
// The same constraint set runs as precondition and postcondition; a
// violating precondition means the persisted state was already broken
// and the tick must not run against it.
type WorkflowValidator struct {
	catalog Catalog
}

// NewWorkflowValidator returns a validator. The catalog may be nil, in
// which case shape constraints that need verb parameters are skipped.
func NewWorkflowValidator(catalog Catalog) *WorkflowValidator {
	return &WorkflowValidator{catalog: catalog}
}

func (wv *WorkflowValidator) Validate(v *View) ir.ValidationResult {
	var violations []ir.Violation
	for _, graph := range v.Graphs() {
		violations = append(violations, wv.checkStatusExclusivity(v, graph)...)
		violations = append(violations, wv.checkStatusValues(v, graph)...)
		violations = append(violations, wv.checkBehaviorValues(v, graph)...)
		violations = append(violations, wv.checkFlowEndpoints(v, graph)...)
		violations = append(violations, wv.checkThresholdShape(v, graph)...)
	}
	return ir.NewValidationResult(violations)
}

// checkStatusExclusivity flags nodes carrying two or more status quads
// in the same graph. Status is single-valued at every committed state.
func (wv *WorkflowValidator) checkStatusExclusivity(v *View, graph string) []ir.Violation {
	counts := map[string]int{}
	for _, q := range v.Match(ir.Pattern{Predicate: ir.PredStatus, Graph: graph}) {
		counts[q.Subject]++
	}
	var out []ir.Violation
	for _, subject := range sortedKeys(counts) {
		if counts[subject] > 1 {
			out = append(out, ir.Violation{
				ConstraintID:  "status-exclusivity",
				Severity:      ir.SeverityViolation,
				Message:       fmt.Sprintf("node holds %d status values in graph %s", counts[subject], graph),
				OffendingNode: subject,
			})
		}
	}
	return out
}

// checkStatusValues flags status literals outside the allowed set.
func (wv *WorkflowValidator) checkStatusValues(v *View, graph string) []ir.Violation {
	var out []ir.Violation
	for _, q := range v.Match(ir.Pattern{Predicate: ir.PredStatus, Graph: graph}) {
		if !ir.ValidStatuses[q.Object] {
			out = append(out, ir.Violation{
				ConstraintID:  "status-value",
				Severity:      ir.SeverityViolation,
				Message:       fmt.Sprintf("unknown status %q in graph %s", q.Object, graph),
				OffendingNode: q.Subject,
			})
		}
	}
	return out
}

// checkBehaviorValues flags split/join literals outside the allowed set.
func (wv *WorkflowValidator) checkBehaviorValues(v *View, graph string) []ir.Violation {
	var out []ir.Violation
	for _, pred := range []string{ir.PredSplit, ir.PredJoin} {
		for _, q := range v.Match(ir.Pattern{Predicate: pred, Graph: graph}) {
			if !ir.ValidBehaviors[q.Object] {
				out = append(out, ir.Violation{
					ConstraintID:  "behavior-value",
					Severity:      ir.SeverityViolation,
					Message:       fmt.Sprintf("unknown %s behavior %q in graph %s", pred, q.Object, graph),
					OffendingNode: q.Subject,
				})
			}
		}
	}
	return out
}

// checkFlowEndpoints requires both ends of every flow edge to be declared
// nodes. A node is declared when it carries a wf:type quad in the same
// graph; a dangling edge cannot be executed and fails the case.
func (wv *WorkflowValidator) checkFlowEndpoints(v *View, graph string) []ir.Violation {
	var out []ir.Violation
	for _, q := range v.Match(ir.Pattern{Predicate: ir.PredFlowsTo, Graph: graph}) {
		for _, endpoint := range []string{q.Subject, q.Object} {
			if v.Count(ir.Pattern{Subject: endpoint, Predicate: ir.PredType, Graph: graph}) == 0 {
				out = append(out, ir.Violation{
					ConstraintID:  "flow-endpoint",
					Severity:      ir.SeverityViolation,
					Message:       fmt.Sprintf("flow edge %s -> %s references undeclared node %s", q.Subject, q.Object, endpoint),
					OffendingNode: endpoint,
				})
			}
		}
	}
	return out
}

// checkThresholdShape flags Await nodes whose static threshold exceeds
// their indegree: such a join can never fire and the graph is a dead
// end by construction. Needs the catalog to see verb parameters.
func (wv *WorkflowValidator) checkThresholdShape(v *View, graph string) []ir.Violation {
	if wv.catalog == nil {
		return nil
	}
	kernel := NewKernel(wv.catalog)
	var out []ir.Violation
	for _, q := range v.Match(ir.Pattern{Predicate: ir.PredPattern, Graph: graph}) {
		spec, err := kernel.Resolve(v, q.Subject, graph)
		if err != nil {
			out = append(out, ir.Violation{
				ConstraintID:  "pattern-resolvable",
				Severity:      ir.SeverityViolation,
				Message:       err.Error(),
				OffendingNode: q.Subject,
			})
			continue
		}
		if spec.Verb != ir.VerbAwait {
			continue
		}
		n, err := strconv.Atoi(spec.Params.Threshold)
		if err != nil {
			continue // symbolic thresholds are shape-checked at runtime
		}
		if in := indegree(v, q.Subject, graph); n > in {
			out = append(out, ir.Violation{
				ConstraintID:  "await-threshold",
				Severity:      ir.SeverityViolation,
				Message:       fmt.Sprintf("static threshold %d exceeds indegree %d", n, in),
				OffendingNode: q.Subject,
			})
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
