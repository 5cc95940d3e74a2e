// Package store provides graph store port implementations for weft.
//
// Two implementations share one contract:
//
//   - SQLite: durable quad storage plus the append-only receipt ledger.
//   - Memory: pure in-memory quad set, used by tests and the harness.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - All quad reads order by (subject, predicate, object, graph)
//     COLLATE BINARY. Identical stores produce identical iteration order,
//     always.
//
// Idempotent Mutation
//   - Applying a delta is remove-then-add inside one database
//     transaction. Removing an absent quad is a no-op; adding a present
//     quad is a no-op (INSERT OR IGNORE).
//
// Append-Only Receipts
//   - The receipts table is insert-only and keyed by tx_id; each row
//     carries the canonical delta bytes so the hash chain can be
//     recomputed independently of the live graph.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
