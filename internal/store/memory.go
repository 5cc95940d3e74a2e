package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/weftlabs/weft/internal/ir"
)

// Memory is the in-memory graph store port implementation. It honors the
// same contracts as SQLite: canonical read order, idempotent delta
// application, append-only receipts. Used by tests and the harness.
//
// Thread-safety: guarded by a mutex. The engine is single-writer per
// instance, but readers (CLI, assertions) may run concurrently.
type Memory struct {
	mu       sync.Mutex
	quads    map[ir.Quad]struct{}
	receipts []ir.LedgerEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{quads: make(map[ir.Quad]struct{})}
}

// NewMemoryWith creates an in-memory store pre-loaded with quads.
func NewMemoryWith(quads []ir.Quad) *Memory {
	m := NewMemory()
	for _, q := range quads {
		m.quads[q] = struct{}{}
	}
	return m
}

// Match returns all quads satisfying the pattern in canonical order.
func (m *Memory) Match(_ context.Context, p ir.Pattern) ([]ir.Quad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []ir.Quad{}
	for q := range m.quads {
		if p.Matches(q) {
			out = append(out, q)
		}
	}
	ir.SortQuads(out)
	return out, nil
}

// All returns the full quad set in canonical order.
func (m *Memory) All(ctx context.Context) ([]ir.Quad, error) {
	return m.Match(ctx, ir.Pattern{})
}

// Count returns the number of quads in the store.
func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.quads)), nil
}

// Apply applies a delta: remove-then-add, idempotent on both sides.
func (m *Memory) Apply(_ context.Context, delta ir.QuadDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range delta.Removed {
		delete(m.quads, q)
	}
	for _, q := range delta.Added {
		m.quads[q] = struct{}{}
	}
	return nil
}

// Snapshot captures the full quad set.
func (m *Memory) Snapshot(ctx context.Context) ([]ir.Quad, error) {
	return m.All(ctx)
}

// Restore replaces the live graph with the snapshot. Receipts are kept.
func (m *Memory) Restore(_ context.Context, snapshot []ir.Quad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quads = make(map[ir.Quad]struct{}, len(snapshot))
	for _, q := range snapshot {
		m.quads[q] = struct{}{}
	}
	return nil
}

// AppendReceipt appends a ledger entry. Duplicate tx ids are rejected.
func (m *Memory) AppendReceipt(_ context.Context, entry ir.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.receipts {
		if e.Receipt.TxID == entry.Receipt.TxID {
			return fmt.Errorf("append receipt %s: duplicate tx_id", entry.Receipt.TxID)
		}
	}
	m.receipts = append(m.receipts, entry)
	return nil
}

// LastReceipt returns the most recent receipt, or ok=false on an empty
// ledger.
func (m *Memory) LastReceipt(_ context.Context) (ir.Receipt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.receipts) == 0 {
		return ir.Receipt{}, false, nil
	}
	return m.receipts[len(m.receipts)-1].Receipt, true, nil
}

// ListReceipts returns the full ledger in append order.
func (m *Memory) ListReceipts(_ context.Context) ([]ir.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ir.LedgerEntry, len(m.receipts))
	copy(out, m.receipts)
	return out, nil
}
