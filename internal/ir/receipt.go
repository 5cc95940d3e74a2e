package ir

import (
	"fmt"
	"time"
)

// TransactionContext carries the caller-provided identity for one tick's
// transaction. Created once per tick by the orchestrator; read-only to the
// kernel.
//
// PrevHash must equal the new_hash of the immediately preceding committed
// receipt for this graph, or GenesisHash for the first transaction (chain
// continuity invariant, checked at commit).
type TransactionContext struct {
	TxID     string   `json:"tx_id"` // UUID
	Actor    string   `json:"actor"`
	PrevHash string   `json:"prev_hash"`
	Data     IRObject `json:"data,omitempty"`
}

// Validate checks the structural invariants of the context.
func (c TransactionContext) Validate() error {
	if c.TxID == "" {
		return fmt.Errorf("transaction context: tx_id is required")
	}
	if err := ValidateHashHex(c.PrevHash); err != nil {
		return fmt.Errorf("transaction context: prev_hash: %w", err)
	}
	return nil
}

// Receipt is one entry of the hash-chained audit trail (the lockchain).
// Append-only; never mutated after creation.
//
// For committed receipts, NewHash = ReceiptHash(PrevHash, delta, TxID).
// For rolled-back transactions NewHash == PrevHash: the chain does not
// advance on abort.
type Receipt struct {
	TxID      string    `json:"tx_id"`
	PrevHash  string    `json:"prev_hash"`
	NewHash   string    `json:"new_hash"`
	DeltaSize int64     `json:"delta_size"`
	Committed bool      `json:"committed"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEntry pairs a receipt with the canonical delta bytes it committed,
// as persisted in the receipt log. The delta bytes make the chain
// independently recomputable: tampering with any entry's delta invalidates
// every subsequent hash.
type LedgerEntry struct {
	Receipt Receipt `json:"receipt"`
	Delta   []byte  `json:"delta"` // canonical JSON, empty for rollbacks
}

// VerifyChain recomputes the hash chain over a receipt sequence and
// returns an error naming the first entry that breaks it. An empty
// sequence is trivially valid.
func VerifyChain(entries []LedgerEntry) error {
	prev := GenesisHash
	for i, e := range entries {
		r := e.Receipt
		if r.PrevHash != prev {
			return fmt.Errorf("receipt %d (tx %s): prev_hash %s does not chain from %s", i, r.TxID, r.PrevHash, prev)
		}
		if !r.Committed {
			if r.NewHash != r.PrevHash {
				return fmt.Errorf("receipt %d (tx %s): rolled-back receipt advanced the chain", i, r.TxID)
			}
			continue
		}
		want := hashWithDomain(DomainReceipt, []byte(r.PrevHash), e.Delta, []byte(r.TxID))
		if r.NewHash != want {
			return fmt.Errorf("receipt %d (tx %s): new_hash %s, recomputed %s", i, r.TxID, r.NewHash, want)
		}
		prev = r.NewHash
	}
	return nil
}
