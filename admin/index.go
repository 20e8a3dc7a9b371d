package admin

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/sqlbuild"
)

// Index is one index of a table as reported by information_schema.STATISTICS.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// Primary reports whether the index is the primary key.
func (i Index) Primary() bool {
	return i.Name == "PRIMARY"
}

// Indexes lists the indexes of table with their columns in index order.
func (t *Tools) Indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := t.conn.QueryContext(ctx,
		`SELECT INDEX_NAME, NON_UNIQUE, COLUMN_NAME FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`, table)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []Index

	for rows.Next() {
		var (
			name      string
			nonUnique int
			column    sql.NullString
		)

		if err := rows.Scan(&name, &nonUnique, &column); err != nil {
			return nil, fmt.Errorf("scan index of %s: %w", table, err)
		}

		if n := len(result); n == 0 || result[n-1].Name != name {
			result = append(result, Index{Name: name, Unique: nonUnique == 0})
		}

		if column.Valid {
			last := &result[len(result)-1]
			last.Columns = append(last.Columns, column.String)
		}
	}

	return result, rows.Err()
}

var fullTextTypes = []string{"text", "longtext"}

// CreateIndex adds a single-column index for each of columns that exists and
// has no key yet. Long text columns get a FULLTEXT index. A failing statement
// is reported in its Outcome and the remaining columns are still processed.
func (t *Tools) CreateIndex(ctx context.Context, table string, columns ...string) ([]Outcome, error) {
	schema, err := t.TableSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(columns))

	for _, column := range columns {
		target := table + "." + column

		col, ok := schema[column]

		switch {
		case !ok:
			outcomes = append(outcomes, t.skipped(target, "column does not exist"))
			continue
		case col.HasKey():
			outcomes = append(outcomes, t.skipped(target, "column is already indexed"))
			continue
		}

		kind := " ADD INDEX "
		if slices.Contains(fullTextTypes, col.TypeName()) {
			kind = " ADD FULLTEXT INDEX "
		}

		st := sqlbuild.New("ALTER TABLE ").Ident(table).Raw(kind).Ident(column).Raw(" (").Ident(column).Raw(")")

		if _, query, err := t.exec(ctx, st); err != nil {
			outcomes = append(outcomes, t.failed(target, query, err))
			continue
		}

		outcomes = append(outcomes, t.applied(target, st.String()))
	}

	return outcomes, nil
}

// CreateUniqueIndex adds a unique index called name over columns. Without
// columns the index covers the column called name. When a unique index of
// that name exists the outcome is Skipped.
func (t *Tools) CreateUniqueIndex(ctx context.Context, table, name string, columns ...string) (Outcome, error) {
	target := table + "." + name

	indexes, err := t.Indexes(ctx, table)
	if err != nil {
		return Outcome{}, err
	}

	for _, idx := range indexes {
		if idx.Unique && strings.EqualFold(idx.Name, name) {
			return t.skipped(target, "unique index already exists"), nil
		}
	}

	if len(columns) == 0 {
		columns = []string{name}
	}

	st := sqlbuild.New("ALTER TABLE ").Ident(table).Raw(" ADD UNIQUE INDEX ").Ident(name).
		Raw(" (").Idents(columns...).Raw(")")

	_, query, err := t.exec(ctx, st)
	if err != nil {
		return Outcome{}, err
	}

	return t.applied(target, query), nil
}

// DropAllIndices drops every index of table except the primary key and
// returns the dropped index names. SHOW INDEX reports composite indexes once
// per member column; each index is dropped once.
func (t *Tools) DropAllIndices(ctx context.Context, table string) ([]string, error) {
	query, _, err := sqlbuild.New("SHOW INDEX FROM ").Ident(table).Build()
	if err != nil {
		return nil, err
	}

	rows, err := t.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}

	entries, err := rowMaps(rows)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, entry := range entries {
		name := entry["Key_name"].String
		if name == "" || name == "PRIMARY" || slices.Contains(names, name) {
			continue
		}

		names = append(names, name)
	}

	var dropped []string

	for _, name := range names {
		if _, query, err := t.exec(ctx, sqlbuild.New("ALTER TABLE ").Ident(table).Raw(" DROP INDEX ").Ident(name)); err != nil {
			return dropped, &StatementError{Statement: query, Err: err}
		}

		dropped = append(dropped, name)
	}

	return dropped, nil
}

// DropIndices drops the indexes of every table in tables. Primary keys and
// unique indexes are kept unless includePrimaryUnique is set. Indexes on
// auto_increment columns are always kept because the server requires them.
func (t *Tools) DropIndices(ctx context.Context, tables []string, includePrimaryUnique bool) ([]Outcome, error) {
	var outcomes []Outcome

	for _, table := range tables {
		schema, err := t.TableSchema(ctx, table)
		if err != nil {
			return outcomes, err
		}

		indexes, err := t.Indexes(ctx, table)
		if err != nil {
			return outcomes, err
		}

		for _, idx := range indexes {
			target := table + "." + idx.Name

			if (idx.Primary() || idx.Unique) && !includePrimaryUnique {
				outcomes = append(outcomes, t.skipped(target, "primary or unique index"))
				continue
			}

			if coversAutoIncrement(schema, idx) {
				outcomes = append(outcomes, t.skipped(target, "index on auto_increment column"))
				continue
			}

			st := sqlbuild.New("ALTER TABLE ").Ident(table)
			if idx.Primary() {
				st.Raw(" DROP PRIMARY KEY")
			} else {
				st.Raw(" DROP INDEX ").Ident(idx.Name)
			}

			if _, query, err := t.exec(ctx, st); err != nil {
				outcomes = append(outcomes, t.failed(target, query, err))
				continue
			}

			outcomes = append(outcomes, t.applied(target, st.String()))
		}
	}

	return outcomes, nil
}

func coversAutoIncrement(schema mysqltools.TableSchema, idx Index) bool {
	for _, column := range idx.Columns {
		if schema[column].AutoIncrement() {
			return true
		}
	}

	return false
}

// IndexColumnsEndingWith indexes, in each table, every column whose name ends
// with suffix and which has no key yet.
func (t *Tools) IndexColumnsEndingWith(ctx context.Context, tables []string, suffix string) ([]Outcome, error) {
	var outcomes []Outcome

	for _, table := range tables {
		descriptors, err := t.Describe(ctx, table)
		if err != nil {
			return outcomes, err
		}

		var columns []string

		for _, d := range descriptors {
			if strings.HasSuffix(d.Name, suffix) && !d.HasKey() {
				columns = append(columns, d.Name)
			}
		}

		if len(columns) == 0 {
			continue
		}

		created, err := t.CreateIndex(ctx, table, columns...)
		outcomes = append(outcomes, created...)

		if err != nil {
			return outcomes, err
		}
	}

	return outcomes, nil
}
