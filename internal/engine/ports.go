package engine

import (
	"context"

	"github.com/weftlabs/weft/internal/ir"
)

// GraphStore is the abstract quad store the engine runs against. The core
// depends only on this interface; internal/store provides the SQLite and
// in-memory implementations.
//
// Contracts every implementation must honor:
//   - Match/All return quads in canonical (subject, predicate, object,
//     graph) order
//   - Apply is remove-then-add and idempotent on both sides
//   - Restore reproduces the snapshot's quad set exactly
type GraphStore interface {
	Match(ctx context.Context, p ir.Pattern) ([]ir.Quad, error)
	All(ctx context.Context) ([]ir.Quad, error)
	Apply(ctx context.Context, delta ir.QuadDelta) error
	Snapshot(ctx context.Context) ([]ir.Quad, error)
	Restore(ctx context.Context, snapshot []ir.Quad) error
}

// ReceiptLog is the append-only hash-chained audit ledger.
type ReceiptLog interface {
	AppendReceipt(ctx context.Context, entry ir.LedgerEntry) error
	LastReceipt(ctx context.Context) (ir.Receipt, bool, error)
	ListReceipts(ctx context.Context) ([]ir.LedgerEntry, error)
}

// Reasoner is the external monotonic inference oracle. Infer consumes a
// read-only view and returns advisory recommendation quads
// (wf:shouldFire); it must never delete graph facts. Failures surface as
// *ReasonerError and abort the tick before any mutation is attempted.
type Reasoner interface {
	Infer(ctx context.Context, view *View, rules ir.RuleSet) ([]ir.Quad, error)
}

// Catalog is the declarative pattern catalog port: a total, pure lookup
// from structural keys to verb specifications, plus selective access to
// the inference rules. internal/catalog provides the CUE-compiled
// implementation.
type Catalog interface {
	Lookup(key ir.SpecKey) (ir.VerbSpec, error)
	Rules() ir.RuleSet
	RuleSubset(patternIDs []string) ir.RuleSet
}

// TxIDGenerator generates unique transaction ids.
// Implemented by UUIDv7Generator (production) and testutil.FixedGenerator.
type TxIDGenerator interface {
	Generate() string
}
