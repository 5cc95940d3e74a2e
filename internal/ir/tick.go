package ir

import "time"

// Severity grades a constraint violation.
type Severity string

const (
	SeverityInfo      Severity = "Info"
	SeverityWarning   Severity = "Warning"
	SeverityViolation Severity = "Violation"
)

// Violation is one failed constraint.
type Violation struct {
	ConstraintID  string   `json:"constraint_id"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	OffendingNode string   `json:"offending_node,omitempty"`
}

// ValidationResult is the outcome of evaluating the closed-world
// constraints against a graph view. Conforms is false only when at least
// one violation has SeverityViolation; infos and warnings do not block.
type ValidationResult struct {
	Conforms   bool        `json:"conforms"`
	Violations []Violation `json:"violations,omitempty"`
}

// NewValidationResult derives Conforms from the violation list.
func NewValidationResult(violations []Violation) ValidationResult {
	conforms := true
	for _, v := range violations {
		if v.Severity == SeverityViolation {
			conforms = false
			break
		}
	}
	return ValidationResult{Conforms: conforms, Violations: violations}
}

// TickOutcome reports one completed tick. Created by the orchestrator at
// tick end; immutable; aggregated into history by the convergence runner.
//
// Delta counts the changed quads that actually survived the tick: a
// rolled-back tick reports 0 regardless of what was attempted.
type TickOutcome struct {
	TickNumber int           `json:"tick_number"`
	Delta      int           `json:"delta"`
	Duration   time.Duration `json:"duration"`
	Converged  bool          `json:"converged"`
	Committed  bool          `json:"committed"`
	Violations []Violation   `json:"violations,omitempty"`
	Receipt    Receipt       `json:"receipt"`
}
