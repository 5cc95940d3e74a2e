package store

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/ir"
)

// Apply applies a delta to the live graph: remove-then-add, inside one
// database transaction.
//
// Idempotent by construction: removing an absent quad deletes zero rows,
// adding a present quad hits INSERT OR IGNORE. Applying the same delta
// twice leaves the store unchanged after the first application.
func (s *SQLite) Apply(ctx context.Context, delta ir.QuadDelta) error {
	d := delta.Canonicalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply delta: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range d.Removed {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM quads WHERE subject = ? AND predicate = ? AND object = ? AND graph = ?
		`, q.Subject, q.Predicate, q.Object, q.Graph); err != nil {
			return fmt.Errorf("apply delta: remove %q: %w", q, err)
		}
	}

	for _, q := range d.Added {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO quads (subject, predicate, object, graph) VALUES (?, ?, ?, ?)
		`, q.Subject, q.Predicate, q.Object, q.Graph); err != nil {
			return fmt.Errorf("apply delta: add %q: %w", q, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply delta: commit: %w", err)
	}

	return nil
}

// Snapshot captures the full quad set, sufficient to restore the exact
// pre-tick state.
func (s *SQLite) Snapshot(ctx context.Context) ([]ir.Quad, error) {
	return s.All(ctx)
}

// Restore replaces the live graph with the snapshot's quad set. The
// receipt ledger is untouched: rollbacks still append a non-advancing
// receipt.
func (s *SQLite) Restore(ctx context.Context, snapshot []ir.Quad) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("restore: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM quads"); err != nil {
		return fmt.Errorf("restore: clear: %w", err)
	}

	for _, q := range snapshot {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO quads (subject, predicate, object, graph) VALUES (?, ?, ?, ?)
		`, q.Subject, q.Predicate, q.Object, q.Graph); err != nil {
			return fmt.Errorf("restore: add %q: %w", q, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("restore: commit: %w", err)
	}

	return nil
}
