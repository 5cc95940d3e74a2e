package store

import (
	"context"
	"fmt"
	"time"

	"github.com/weftlabs/weft/internal/ir"
)

// AppendReceipt appends a ledger entry. The receipts table is insert-only;
// a duplicate tx_id is a hard error, not an idempotent no-op, because two
// transactions must never share an id.
func (s *SQLite) AppendReceipt(ctx context.Context, entry ir.LedgerEntry) error {
	r := entry.Receipt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (tx_id, prev_hash, new_hash, delta_size, committed, timestamp, delta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.TxID,
		r.PrevHash,
		r.NewHash,
		r.DeltaSize,
		boolToInt(r.Committed),
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Delta),
	)
	if err != nil {
		return fmt.Errorf("append receipt %s: %w", r.TxID, err)
	}
	return nil
}

// LastReceipt returns the most recent receipt, or ok=false on an empty
// ledger.
func (s *SQLite) LastReceipt(ctx context.Context) (ir.Receipt, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tx_id, prev_hash, new_hash, delta_size, committed, timestamp
		FROM receipts ORDER BY seq DESC LIMIT 1
	`)
	if err != nil {
		return ir.Receipt{}, false, fmt.Errorf("last receipt: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return ir.Receipt{}, false, rows.Err()
	}
	r, err := scanReceipt(rows)
	if err != nil {
		return ir.Receipt{}, false, err
	}
	return r, true, rows.Err()
}

// ListReceipts returns the full ledger in append order.
func (s *SQLite) ListReceipts(ctx context.Context) ([]ir.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tx_id, prev_hash, new_hash, delta_size, committed, timestamp, delta
		FROM receipts ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	entries := []ir.LedgerEntry{}
	for rows.Next() {
		var (
			r         ir.Receipt
			committed int64
			ts        string
			delta     string
		)
		if err := rows.Scan(&r.TxID, &r.PrevHash, &r.NewHash, &r.DeltaSize, &committed, &ts, &delta); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		r.Committed = committed != 0
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse receipt timestamp: %w", err)
		}
		entries = append(entries, ir.LedgerEntry{Receipt: r, Delta: []byte(delta)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (ir.Receipt, error) {
	var (
		r         ir.Receipt
		committed int64
		ts        string
	)
	if err := row.Scan(&r.TxID, &r.PrevHash, &r.NewHash, &r.DeltaSize, &committed, &ts); err != nil {
		return ir.Receipt{}, fmt.Errorf("scan receipt: %w", err)
	}
	r.Committed = committed != 0
	var err error
	r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("parse receipt timestamp: %w", err)
	}
	return r, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
