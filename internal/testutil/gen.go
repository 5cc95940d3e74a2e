// Package testutil provides deterministic implementations of engine
// ports for tests and golden snapshots.
package testutil

import (
	"fmt"
	"sync"
)

// FixedGenerator hands out sequential transaction ids: tx-0, tx-1, ...
//
// The same scenario with the same FixedGenerator produces byte-identical
// receipt chains, which is what golden snapshot tests compare against.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedGenerator creates a generator with the given id prefix.
// An empty prefix defaults to "tx".
func NewFixedGenerator(prefix string) *FixedGenerator {
	if prefix == "" {
		prefix = "tx"
	}
	return &FixedGenerator{prefix: prefix}
}

// Generate returns the next sequential id.
//
// Implements engine.TxIDGenerator.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, g.n)
	g.n++
	return id
}

// Reset restarts the sequence at zero.
func (g *FixedGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
