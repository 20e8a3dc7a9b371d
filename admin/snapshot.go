package admin

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/schemadiff"
	"github.com/shibukawa/mysqltools/snapshot"
)

const snapshotQuery = `SELECT c.TABLE_NAME, c.COLUMN_NAME, c.COLUMN_TYPE, c.IS_NULLABLE, c.COLUMN_KEY, c.COLUMN_DEFAULT, c.EXTRA
	FROM information_schema.COLUMNS c
	JOIN information_schema.TABLES t ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
	WHERE c.TABLE_SCHEMA = DATABASE() AND t.TABLE_TYPE = 'BASE TABLE'
	ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// Snapshot captures the columns of every base table whose name starts with prefix.
func (t *Tools) Snapshot(ctx context.Context, prefix string) (mysqltools.Snapshot, error) {
	rows, err := t.conn.QueryContext(ctx, snapshotQuery)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	snap := mysqltools.Snapshot{}

	for rows.Next() {
		var (
			table, column, key string
			c                  mysqltools.Column
			defaultVal         sql.NullString
		)

		if err := rows.Scan(&table, &column, &c.Type, &c.Null, &key, &defaultVal, &c.Extra); err != nil {
			return nil, fmt.Errorf("scan snapshot column: %w", err)
		}

		if !strings.HasPrefix(table, prefix) {
			continue
		}

		c.Key = mysqltools.KeyRole(key)

		if defaultVal.Valid {
			v := defaultVal.String
			c.Default = &v
		}

		if snap[table] == nil {
			snap[table] = mysqltools.TableSchema{}
		}

		snap[table][column] = c
	}

	return snap, rows.Err()
}

// CompareWith compares the tables of t starting with prefix against those of
// other starting with otherPrefix. The prefixes are stripped before comparison.
func (t *Tools) CompareWith(ctx context.Context, other *Tools, prefix, otherPrefix string) (schemadiff.Diff, error) {
	mine, err := t.Snapshot(ctx, prefix)
	if err != nil {
		return schemadiff.Diff{}, err
	}

	theirs, err := other.Snapshot(ctx, otherPrefix)
	if err != nil {
		return schemadiff.Diff{}, err
	}

	return schemadiff.Compare(mine, theirs, prefix, otherPrefix), nil
}

// SaveSnapshot writes the schema of the current database into dir and returns
// the path of the new file.
func (t *Tools) SaveSnapshot(ctx context.Context, dir string, now time.Time) (string, error) {
	database, err := t.DatabaseName(ctx)
	if err != nil {
		return "", err
	}

	snap, err := t.Snapshot(ctx, "")
	if err != nil {
		return "", err
	}

	return snapshot.Write(dir, snapshot.File{Database: database, TakenAt: now, Tables: snap})
}

// CompareWithSnapshotFile diffs the live schema against a file written by
// SaveSnapshot and returns a readable report.
func (t *Tools) CompareWithSnapshotFile(ctx context.Context, path string) (string, schemadiff.Diff, error) {
	file, err := snapshot.Read(path)
	if err != nil {
		return "", schemadiff.Diff{}, err
	}

	return t.CompareWithFile(ctx, path, file)
}

// CompareWithFile diffs the live schema against an already loaded snapshot.
// label names the snapshot in the report.
func (t *Tools) CompareWithFile(ctx context.Context, label string, file *snapshot.File) (string, schemadiff.Diff, error) {
	database, err := t.DatabaseName(ctx)
	if err != nil {
		return "", schemadiff.Diff{}, err
	}

	live, err := t.Snapshot(ctx, "")
	if err != nil {
		return "", schemadiff.Diff{}, err
	}

	diff := schemadiff.Compare(live, file.Tables, "", "")

	return schemadiff.Report(diff, database, label), diff, nil
}
