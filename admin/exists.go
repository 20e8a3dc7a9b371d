package admin

import (
	"context"

	"golang.org/x/text/cases"
)

// DatabaseExists reports whether the server has database, ignoring case.
func (t *Tools) DatabaseExists(ctx context.Context, database string) (bool, error) {
	names, err := t.DatabaseNames(ctx)
	if err != nil {
		return false, err
	}

	fold := cases.Fold()
	want := fold.String(database)
	for _, name := range names {
		if fold.String(name) == want {
			return true, nil
		}
	}

	return false, nil
}

// TableExists reports whether the current database has a base table named table.
func (t *Tools) TableExists(ctx context.Context, table string) (bool, error) {
	return t.relationExists(ctx, table, "BASE TABLE")
}

// ViewExists reports whether the current database has a view named view.
func (t *Tools) ViewExists(ctx context.Context, view string) (bool, error) {
	return t.relationExists(ctx, view, "VIEW")
}

func (t *Tools) relationExists(ctx context.Context, name, tableType string) (bool, error) {
	var n int64

	err := t.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND TABLE_TYPE = ?`,
		name, tableType).Scan(&n)
	if err != nil {
		return false, classify(err)
	}

	return n > 0, nil
}

// ColumnExists reports whether table exists and has column. A missing table is
// not an error.
func (t *Tools) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	ok, err := t.TableExists(ctx, table)
	if err != nil || !ok {
		return false, err
	}

	var n int64

	err = t.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		table, column).Scan(&n)
	if err != nil {
		return false, classify(err)
	}

	return n > 0, nil
}
