package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/ir"
)

// quadOrder is the canonical read ordering. Every quad query MUST append
// it: identical stores produce identical iteration order regardless of
// insert history.
const quadOrder = " ORDER BY subject COLLATE BINARY ASC, predicate COLLATE BINARY ASC, object COLLATE BINARY ASC, graph COLLATE BINARY ASC"

// Match returns all quads satisfying the pattern (empty fields are
// wildcards), in canonical order. Returns an empty slice, not nil, when
// nothing matches.
func (s *SQLite) Match(ctx context.Context, p ir.Pattern) ([]ir.Quad, error) {
	var conds []string
	var args []any
	add := func(col, val string) {
		if val != "" {
			conds = append(conds, col+" = ?")
			args = append(args, val)
		}
	}
	add("subject", p.Subject)
	add("predicate", p.Predicate)
	add("object", p.Object)
	add("graph", p.Graph)

	query := "SELECT subject, predicate, object, graph FROM quads"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += quadOrder

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quads: %w", err)
	}
	defer rows.Close()

	quads := []ir.Quad{}
	for rows.Next() {
		var q ir.Quad
		if err := rows.Scan(&q.Subject, &q.Predicate, &q.Object, &q.Graph); err != nil {
			return nil, fmt.Errorf("scan quad: %w", err)
		}
		quads = append(quads, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quads: %w", err)
	}

	return quads, nil
}

// All returns the full quad set in canonical order.
func (s *SQLite) All(ctx context.Context) ([]ir.Quad, error) {
	return s.Match(ctx, ir.Pattern{})
}

// Count returns the number of quads in the store.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quads").Scan(&n); err != nil {
		return 0, fmt.Errorf("count quads: %w", err)
	}
	return n, nil
}
