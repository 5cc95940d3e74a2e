package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/internal/ir"
)

// UUIDv7Generator produces time-ordered transaction ids.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 fails only when the entropy source does; v4 keeps the
		// engine running with unordered ids.
		return uuid.NewString()
	}
	return id.String()
}

// Snapshot is the pre-transaction state captured at Begin. It backs both
// the in-memory working view and the rollback path.
type Snapshot struct {
	Quads []ir.Quad
	taken time.Time
}

func (s *Snapshot) View() *View {
	return NewView(s.Quads)
}

// TransactionManager guards the single-writer invariant and drives the
// snapshot/commit/rollback cycle against the store and the receipt log.
// At most one transaction is open at a time; a second Begin before
// Commit or Rollback is a programming error, not a queueing request.
type TransactionManager struct {
	store GraphStore
	log   ReceiptLog
	gen   TxIDGenerator
	actor string

	mu   sync.Mutex
	open bool
}

func NewTransactionManager(store GraphStore, log ReceiptLog, gen TxIDGenerator, actor string) *TransactionManager {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &TransactionManager{store: store, log: log, gen: gen, actor: actor}
}

// Begin captures a snapshot of the store and opens the transaction.
func (tm *TransactionManager) Begin(ctx context.Context) (*Snapshot, error) {
	tm.mu.Lock()
	if tm.open {
		tm.mu.Unlock()
		return nil, &TransactionError{Op: "begin", Err: fmt.Errorf("transaction already open")}
	}
	tm.open = true
	tm.mu.Unlock()

	quads, err := tm.store.Snapshot(ctx)
	if err != nil {
		tm.release()
		return nil, &TransactionError{Op: "begin", Err: err}
	}
	return &Snapshot{Quads: quads, taken: time.Now().UTC()}, nil
}

// NewContext builds the transaction context for the open transaction,
// chaining from the last receipt (or the genesis hash on an empty
// ledger).
func (tm *TransactionManager) NewContext(ctx context.Context) (ir.TransactionContext, error) {
	prev := ir.GenesisHash
	last, ok, err := tm.log.LastReceipt(ctx)
	if err != nil {
		return ir.TransactionContext{}, &TransactionError{Op: "context", Err: err}
	}
	if ok {
		prev = last.NewHash
	}
	txctx := ir.TransactionContext{
		TxID:     tm.gen.Generate(),
		Actor:    tm.actor,
		PrevHash: prev,
	}
	if err := txctx.Validate(); err != nil {
		return ir.TransactionContext{}, &TransactionError{Op: "context", TxID: txctx.TxID, Err: err}
	}
	return txctx, nil
}

// Commit applies the delta to the store, extends the hash chain, and
// appends the receipt. The store write and the ledger append are the
// only externally visible effects of a tick.
//
// If the store write fails the snapshot is restored before returning, so
// the store never holds a half-applied delta.
func (tm *TransactionManager) Commit(ctx context.Context, snap *Snapshot, delta ir.QuadDelta, txctx ir.TransactionContext) (ir.Receipt, error) {
	defer tm.release()

	if err := tm.checkContinuity(ctx, txctx); err != nil {
		return ir.Receipt{}, err
	}

	if err := tm.store.Apply(ctx, delta); err != nil {
		if restoreErr := tm.store.Restore(ctx, snap.Quads); restoreErr != nil {
			return ir.Receipt{}, &TransactionError{
				Op:   "commit",
				TxID: txctx.TxID,
				Err:  fmt.Errorf("apply failed (%v) and restore failed: %w", err, restoreErr),
			}
		}
		return ir.Receipt{}, &TransactionError{Op: "commit", TxID: txctx.TxID, Err: err}
	}

	deltaBytes, err := ir.MarshalDeltaCanonical(delta)
	if err != nil {
		return ir.Receipt{}, &TransactionError{Op: "commit", TxID: txctx.TxID, Err: err}
	}
	newHash, err := ir.ReceiptHash(txctx.PrevHash, delta, txctx.TxID)
	if err != nil {
		return ir.Receipt{}, &TransactionError{Op: "commit", TxID: txctx.TxID, Err: err}
	}

	receipt := ir.Receipt{
		TxID:      txctx.TxID,
		PrevHash:  txctx.PrevHash,
		NewHash:   newHash,
		DeltaSize: int64(delta.Size()),
		Committed: true,
		Timestamp: time.Now().UTC(),
	}
	entry := ir.LedgerEntry{Receipt: receipt, Delta: deltaBytes}
	if err := tm.log.AppendReceipt(ctx, entry); err != nil {
		return ir.Receipt{}, &TransactionError{Op: "commit", TxID: txctx.TxID, Err: err}
	}
	return receipt, nil
}

// Rollback discards the transaction. The snapshot is restored defensively
// even though the normal tick path never writes the store before commit.
// A non-advancing receipt records the aborted transaction: audit trails
// include failures.
func (tm *TransactionManager) Rollback(ctx context.Context, snap *Snapshot, txctx ir.TransactionContext) (ir.Receipt, error) {
	defer tm.release()

	if err := tm.store.Restore(ctx, snap.Quads); err != nil {
		return ir.Receipt{}, &TransactionError{Op: "rollback", TxID: txctx.TxID, Err: err}
	}

	receipt := ir.Receipt{
		TxID:      txctx.TxID,
		PrevHash:  txctx.PrevHash,
		NewHash:   txctx.PrevHash,
		DeltaSize: 0,
		Committed: false,
		Timestamp: time.Now().UTC(),
	}
	if err := tm.log.AppendReceipt(ctx, ir.LedgerEntry{Receipt: receipt}); err != nil {
		return ir.Receipt{}, &TransactionError{Op: "rollback", TxID: txctx.TxID, Err: err}
	}
	return receipt, nil
}

// checkContinuity re-reads the ledger head under the open transaction so
// a context built against a stale head cannot fork the chain.
func (tm *TransactionManager) checkContinuity(ctx context.Context, txctx ir.TransactionContext) error {
	prev := ir.GenesisHash
	last, ok, err := tm.log.LastReceipt(ctx)
	if err != nil {
		return &TransactionError{Op: "commit", TxID: txctx.TxID, Err: err}
	}
	if ok {
		prev = last.NewHash
	}
	if txctx.PrevHash != prev {
		return &TransactionError{
			Op:   "commit",
			TxID: txctx.TxID,
			Err:  fmt.Errorf("prev_hash %s does not chain from ledger head %s", txctx.PrevHash, prev),
		}
	}
	return nil
}

func (tm *TransactionManager) release() {
	tm.mu.Lock()
	tm.open = false
	tm.mu.Unlock()
}
