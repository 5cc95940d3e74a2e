package engine

import (
	"errors"
	"fmt"

	"github.com/weftlabs/weft/internal/ir"
)

// The engine's error taxonomy. Constraint violations are NOT errors: they
// are expected outcomes, handled by rollback and surfaced as metadata on
// the TickOutcome. Everything below is fatal to at least the current
// tick; the engine never retries internally.

// ReasonerError reports an external inference failure or timeout. Fatal
// to the tick: the orchestrator rolls back without attempting mutation.
type ReasonerError struct {
	Op       string // "exec", "infer", ...
	TimedOut bool
	Err      error
}

func (e *ReasonerError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("reasoner %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("reasoner %s: %v", e.Op, e.Err)
}

func (e *ReasonerError) Unwrap() error { return e.Err }

// StoreOperationError reports a malformed query or I/O failure on the
// graph store. Fatal to the tick.
type StoreOperationError struct {
	Op  string
	Err error
}

func (e *StoreOperationError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreOperationError) Unwrap() error { return e.Err }

// TransactionError reports that commit or rollback itself failed. Fatal
// to the engine instance: the caller must not continue ticking.
type TransactionError struct {
	Op   string
	TxID string
	Err  error
}

func (e *TransactionError) Error() string {
	if e.TxID != "" {
		return fmt.Sprintf("transaction %s (tx=%s): %v", e.Op, e.TxID, e.Err)
	}
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ResolveError reports that a node could not be resolved to exactly one
// verb spec: missing structural quads or an unknown catalog combination.
type ResolveError struct {
	Node string
	Key  ir.SpecKey
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s %s: %v", e.Node, e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// ConvergenceError reports that the runner exceeded its tick bound
// without reaching a fixed point. FinalDelta distinguishes "stuck" (delta
// constant > 0) from "oscillating" (delta varying); History carries the
// full tick record for diagnosis.
type ConvergenceError struct {
	MaxTicks   int
	FinalDelta int
	History    []ir.TickOutcome
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d ticks (final delta %d)", e.MaxTicks, e.FinalDelta)
}

// IsReasonerError reports whether err is (or wraps) a ReasonerError.
func IsReasonerError(err error) bool {
	var re *ReasonerError
	return errors.As(err, &re)
}

// IsTransactionError reports whether err is (or wraps) a TransactionError.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}

// IsConvergenceError reports whether err is a ConvergenceError, returning
// it for inspection.
func IsConvergenceError(err error) (*ConvergenceError, bool) {
	var ce *ConvergenceError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
