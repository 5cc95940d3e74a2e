// Package engine implements the weft verb-resolution kernel and the
// transactional tick orchestrator.
//
// The engine executes workflow graphs as mutations over a quad store. On
// each discrete tick it resolves, for every recommended node, the single
// verb that governs that node's behavior from the declarative pattern
// catalog, executes the verb as a bounded graph rewrite, and wraps the
// whole tick in a snapshot/validate/commit-or-rollback transaction with a
// hash-chained receipt.
//
// ARCHITECTURE:
//
// Single-Writer Tick Pipeline:
// All mutation happens in a single goroutine driving the pipeline
//
//	snapshot -> validate(pre) -> infer -> mutate -> validate(post) -> commit|rollback
//
// for deterministic behavior. "Parallel" workflow branches are quads
// added within one atomic batch, never concurrently executing tasks:
// concurrency in the workflow sense is encoded in graph structure, not in
// the engine's execution model.
//
// Monotonicity Separation:
// The reasoner port only ever ADDS advisory facts. All deletion happens
// in the verb executors; Void is the only verb permitted to remove facts
// created outside the current tick.
//
// CRITICAL PATTERNS:
//
// Deterministic Rewrites:
// Same graph state + same catalog => same rewrite. The kernel performs
// zero pattern-specific conditional logic; every behavioral variation is
// template data interpreted uniformly. Candidate tie-breaks order by the
// declared priority field, then lowest lexicographic node id - never by
// map or storage iteration order.
//
// Bounded Blast Radius:
// At most ChatmanConstant (64) recommendations are merged into a single
// atomic mutation per tick; a larger reasoner output is re-derived on the
// following ticks from the committed state.
package engine
