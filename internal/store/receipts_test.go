package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ir"
)

func testEntry(t *testing.T, txID, prevHash string, committed bool) ir.LedgerEntry {
	t.Helper()

	delta := ir.QuadDelta{Added: []ir.Quad{{Subject: "task:" + txID, Predicate: ir.PredStatus, Object: ir.StatusEnabled, Graph: "case:1"}}}
	r := ir.Receipt{
		TxID:      txID,
		PrevHash:  prevHash,
		NewHash:   prevHash,
		Committed: committed,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
	entry := ir.LedgerEntry{Receipt: r}
	if committed {
		b, err := ir.MarshalDeltaCanonical(delta)
		require.NoError(t, err)
		entry.Delta = b
		entry.Receipt.NewHash = ir.MustReceiptHash(prevHash, delta, txID)
		entry.Receipt.DeltaSize = int64(delta.Size())
	}
	return entry
}

func TestReceiptLedgerAppendAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e1 := testEntry(t, "tx-1", ir.GenesisHash, true)
	e2 := testEntry(t, "tx-2", e1.Receipt.NewHash, false)
	e3 := testEntry(t, "tx-3", e1.Receipt.NewHash, true)

	require.NoError(t, s.AppendReceipt(ctx, e1))
	require.NoError(t, s.AppendReceipt(ctx, e2))
	require.NoError(t, s.AppendReceipt(ctx, e3))

	entries, err := s.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "tx-1", entries[0].Receipt.TxID, "append order preserved")
	assert.Equal(t, "tx-3", entries[2].Receipt.TxID)

	assert.NoError(t, ir.VerifyChain(entries), "persisted ledger must verify end to end")
}

func TestReceiptLedgerLast(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LastReceipt(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty ledger has no last receipt")

	e1 := testEntry(t, "tx-1", ir.GenesisHash, true)
	require.NoError(t, s.AppendReceipt(ctx, e1))

	last, ok, err := s.LastReceipt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tx-1", last.TxID)
	assert.Equal(t, e1.Receipt.NewHash, last.NewHash)
	assert.True(t, last.Timestamp.Equal(e1.Receipt.Timestamp))
}

func TestReceiptLedgerRejectsDuplicateTxID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := testEntry(t, "tx-1", ir.GenesisHash, true)
	require.NoError(t, s.AppendReceipt(ctx, e))

	err := s.AppendReceipt(ctx, e)
	assert.Error(t, err, "ledger is append-only and keyed by tx_id")
}
