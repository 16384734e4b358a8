package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a store can be bound to
// either the pool or a single transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn inside a single transaction. The transaction is committed when
// fn returns nil and rolled back on error or panic.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// maxBindVars keeps multi-row inserts well under SQLite's bound parameter limit.
const maxBindVars = 900

// insertRows writes rows into table with multi-row INSERT statements, split
// into chunks so no statement exceeds maxBindVars parameters.
func insertRows(ctx context.Context, db DBTX, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	perChunk := maxBindVars / len(cols)
	if perChunk < 1 {
		perChunk = 1
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	prefix := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES "

	for start := 0; start < len(rows); start += perChunk {
		end := min(start+perChunk, len(rows))
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, len(chunk)*len(cols))
		for i, row := range chunk {
			if len(row) != len(cols) {
				return fmt.Errorf("insert %s: row has %d values, want %d", table, len(row), len(cols))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder)
			args = append(args, row...)
		}

		if _, err := db.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func deleteByOrganization(ctx context.Context, db DBTX, table, orgID string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE organization_id = ?`, orgID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// CountByOrganization returns the number of rows in table owned by orgID.
func CountByOrganization(ctx context.Context, db DBTX, table, orgID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE organization_id = ?`, orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// splitCols turns a const column list into the slice insertRows expects.
func splitCols(cols string) []string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
