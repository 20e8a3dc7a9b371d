package admin

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/sqlbuild"
)

// EmptyStringsToNull sets blank values of nullable columns to NULL. Without
// columns every nullable column of table is processed. The result maps each
// processed column to the number of rows changed.
func (t *Tools) EmptyStringsToNull(ctx context.Context, table string, columns ...string) (map[string]int64, error) {
	nullable, err := t.NullableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	targets := nullable
	if len(columns) > 0 {
		targets = nil

		for _, column := range columns {
			if !slices.Contains(nullable, column) {
				t.logf("%s.%s: skipped: column is not nullable", table, column)
				continue
			}

			targets = append(targets, column)
		}
	}

	result := make(map[string]int64, len(targets))

	for _, column := range targets {
		n, err := t.execAffected(ctx, sqlbuild.New("UPDATE ").Ident(table).
			Raw(" SET ").Ident(column).Raw(" = NULL WHERE TRIM(").Ident(column).Raw(") = ''"))
		if err != nil {
			return result, err
		}

		result[column] = n
	}

	return result, nil
}

var trimmableTypes = []string{"char", "varchar", "text", "tinytext", "mediumtext", "longtext", "blob"}

// TrimAll strips trailing line breaks and then surrounding spaces from the
// character columns of table, or from the given subset.
func (t *Tools) TrimAll(ctx context.Context, table string, columns ...string) (map[string]int64, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	result := map[string]int64{}

	for _, d := range descriptors {
		if len(columns) > 0 && !slices.Contains(columns, d.Name) {
			continue
		}

		if !slices.Contains(trimmableTypes, d.TypeName()) {
			continue
		}

		n, err := t.execAffected(ctx, sqlbuild.New("UPDATE ").Ident(table).
			Raw(" SET ").Ident(d.Name).Raw(" = TRIM(TRIM(TRAILING ").Bind("\r\n").Raw(" FROM ").Ident(d.Name).Raw("))"))
		if err != nil {
			return result, err
		}

		result[d.Name] = n
	}

	return result, nil
}

// TruncateTable removes every row of table. With resetAutoIncrement the
// counter is explicitly set back to 1.
func (t *Tools) TruncateTable(ctx context.Context, table string, resetAutoIncrement bool) error {
	if _, _, err := t.exec(ctx, sqlbuild.New("TRUNCATE TABLE ").Ident(table)); err != nil {
		return err
	}

	if !resetAutoIncrement {
		return nil
	}

	_, _, err := t.exec(ctx, sqlbuild.New("ALTER TABLE ").Ident(table).Raw(" AUTO_INCREMENT = 1"))

	return err
}

// TruncateTables truncates each table and resets its auto_increment counter.
// It returns the tables truncated before the first failure.
func (t *Tools) TruncateTables(ctx context.Context, tables ...string) ([]string, error) {
	var done []string

	for _, table := range tables {
		if err := t.TruncateTable(ctx, table, true); err != nil {
			return done, fmt.Errorf("truncate %s: %w", table, err)
		}

		done = append(done, table)
	}

	return done, nil
}

// TruncateAllTables truncates every base table whose name starts with prefix.
func (t *Tools) TruncateAllTables(ctx context.Context, prefix string) ([]string, error) {
	names, err := t.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	var tables []string

	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			tables = append(tables, name)
		}
	}

	return t.TruncateTables(ctx, tables...)
}

// FindDuplicates counts, for each table, the rows that repeat another row
// when the identifier column ("<table><IDSuffix>") and the configured
// exclusions are ignored. Tables without duplicates are not reported.
func (t *Tools) FindDuplicates(ctx context.Context, tables ...string) (map[string]int64, error) {
	result := map[string]int64{}

	for _, table := range tables {
		columns, err := t.ColumnNames(ctx, table)
		if err != nil {
			return result, err
		}

		excluded := append([]string{table + t.opts.IDSuffix}, t.opts.ExcludeColumns...)
		columns = slices.DeleteFunc(columns, func(c string) bool {
			return slices.Contains(excluded, c)
		})

		if len(columns) == 0 {
			t.logf("%s: skipped: no columns left to compare", table)
			continue
		}

		total, err := t.count(ctx, sqlbuild.New("SELECT COUNT(*) FROM ").Ident(table))
		if err != nil {
			return result, err
		}

		distinct, err := t.count(ctx, sqlbuild.New("SELECT COUNT(*) FROM (SELECT DISTINCT ").
			Idents(columns...).Raw(" FROM ").Ident(table).Raw(") AS d"))
		if err != nil {
			return result, err
		}

		if total > distinct {
			result[table] = total - distinct
		}
	}

	return result, nil
}

// ChangeColumnsToNotNull adds NOT NULL to each nullable column that holds no
// NULL. Without columns every column of table is considered. The column type,
// character set and collation are preserved. It returns the changed columns.
func (t *Tools) ChangeColumnsToNotNull(ctx context.Context, table string, columns ...string) ([]string, error) {
	infos, err := t.ColumnsInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	var changed []string

	for _, info := range infos {
		name := info.ColumnName

		if len(columns) > 0 && !slices.Contains(columns, name) {
			continue
		}

		if info.IsNullable != "YES" {
			continue
		}

		nulls, err := t.count(ctx, sqlbuild.New("SELECT COUNT(*) FROM ").Ident(table).
			Raw(" WHERE ").Ident(name).Raw(" IS NULL"))
		if err != nil {
			return changed, err
		}

		if nulls > 0 {
			t.logf("%s.%s: skipped: %d NULL rows", table, name, nulls)
			continue
		}

		if _, query, err := t.exec(ctx, modifyNotNull(table, info)); err != nil {
			return changed, &StatementError{Statement: query, Err: err}
		}

		changed = append(changed, name)
	}

	return changed, nil
}

func modifyNotNull(table string, info mysqltools.InformationSchemaColumn) *sqlbuild.Statement {
	clause := info.ColumnType
	if info.CharacterSetName.Valid && info.CollationName.Valid {
		clause += " CHARACTER SET " + info.CharacterSetName.String + " COLLATE " + info.CollationName.String
	}

	return sqlbuild.New("ALTER TABLE ").Ident(table).Raw(" MODIFY ").Ident(info.ColumnName).
		Raw(" ").Type(clause + " NOT NULL")
}
