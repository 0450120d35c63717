package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the minimal executor surface repositories need. Both pgx.Tx and
// *pgxpool.Pool satisfy it, so repositories work inside and outside of
// explicit transactions.
type Tx interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Join concatenates non-empty query fragments with single spaces.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// JoinWhere produces a WHERE clause AND-ing the given conditions.
func JoinWhere(conditions ...string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

// FormatLimitOffset renders LIMIT/OFFSET, omitting either when zero.
func FormatLimitOffset(limit, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}
	if limit > 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}
	if offset > 0 {
		return fmt.Sprintf("OFFSET %d", offset)
	}
	return ""
}

// BatchInsertQueryN builds a multi-row VALUES clause for the given base
// insert statement, e.g. "INSERT INTO t (a, b) VALUES" + ($1,$2),($3,$4).
func BatchInsertQueryN(base string, rows [][]interface{}) (string, []interface{}) {
	if len(rows) == 0 {
		return base, nil
	}
	var b strings.Builder
	b.WriteString(base)
	args := make([]interface{}, 0, len(rows)*len(rows[0]))
	n := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" (")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
			args = append(args, v)
		}
		b.WriteString(")")
	}
	return b.String(), args
}
