package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shibukawa/mysqltools"
)

// DatabaseNames lists the databases visible to the user.
func (t *Tools) DatabaseNames(ctx context.Context) ([]string, error) {
	return t.queryStrings(ctx, "SHOW DATABASES")
}

// TableNames lists the base tables of the current database.
func (t *Tools) TableNames(ctx context.Context) ([]string, error) {
	return t.relationNames(ctx, "BASE TABLE")
}

// ViewNames lists the views of the current database.
func (t *Tools) ViewNames(ctx context.Context) ([]string, error) {
	return t.relationNames(ctx, "VIEW")
}

func (t *Tools) relationNames(ctx context.Context, tableType string) ([]string, error) {
	return t.queryStrings(ctx,
		`SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = ?
		ORDER BY TABLE_NAME`, tableType)
}

// ColumnNames lists the columns of table in ordinal order.
func (t *Tools) ColumnNames(ctx context.Context, table string) ([]string, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}

	return names, nil
}

// NullableColumns lists the columns of table that accept NULL.
func (t *Tools) NullableColumns(ctx context.Context, table string) ([]string, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, d := range descriptors {
		if d.Nullable() {
			names = append(names, d.Name)
		}
	}

	return names, nil
}

const describeQuery = `SELECT COLUMN_NAME, ORDINAL_POSITION, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_DEFAULT, EXTRA
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	ORDER BY ORDINAL_POSITION`

// Describe returns the DESCRIBE view of table in ordinal order.
func (t *Tools) Describe(ctx context.Context, table string) ([]mysqltools.ColumnDescriptor, error) {
	rows, err := t.conn.QueryContext(ctx, describeQuery, table)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []mysqltools.ColumnDescriptor

	for rows.Next() {
		var (
			d          mysqltools.ColumnDescriptor
			key        string
			defaultVal sql.NullString
		)

		if err := rows.Scan(&d.Name, &d.Position, &d.Type, &d.Null, &key, &defaultVal, &d.Extra); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}

		d.Key = mysqltools.KeyRole(key)

		if defaultVal.Valid {
			v := defaultVal.String
			d.Default = &v
		}

		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s", mysqltools.ErrTableNotFound, table)
	}

	return result, nil
}

// TableSchema returns the columns of table keyed by name.
func (t *Tools) TableSchema(ctx context.Context, table string) (mysqltools.TableSchema, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	schema := make(mysqltools.TableSchema, len(descriptors))
	for _, d := range descriptors {
		schema[d.Name] = d.Column
	}

	return schema, nil
}

const columnInfoQuery = `SELECT TABLE_CATALOG, TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, ORDINAL_POSITION,
	COLUMN_DEFAULT, IS_NULLABLE, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, CHARACTER_OCTET_LENGTH,
	NUMERIC_PRECISION, NUMERIC_SCALE, DATETIME_PRECISION, CHARACTER_SET_NAME, COLLATION_NAME,
	COLUMN_TYPE, COLUMN_KEY, EXTRA, PRIVILEGES, COLUMN_COMMENT
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`

// ColumnsInfo returns the information_schema rows of every column of table.
func (t *Tools) ColumnsInfo(ctx context.Context, table string) ([]mysqltools.InformationSchemaColumn, error) {
	rows, err := t.conn.QueryContext(ctx, columnInfoQuery+" ORDER BY ORDINAL_POSITION", table)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []mysqltools.InformationSchemaColumn

	for rows.Next() {
		c, err := scanColumnInfo(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s", mysqltools.ErrTableNotFound, table)
	}

	return result, nil
}

// ColumnInfo returns the information_schema row of one column.
func (t *Tools) ColumnInfo(ctx context.Context, table, column string) (mysqltools.InformationSchemaColumn, error) {
	rows, err := t.conn.QueryContext(ctx, columnInfoQuery+" AND COLUMN_NAME = ?", table, column)
	if err != nil {
		return mysqltools.InformationSchemaColumn{}, classify(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mysqltools.InformationSchemaColumn{}, err
		}

		return mysqltools.InformationSchemaColumn{}, fmt.Errorf("%w: %s.%s", mysqltools.ErrColumnNotFound, table, column)
	}

	return scanColumnInfo(rows)
}

func scanColumnInfo(rows *sql.Rows) (mysqltools.InformationSchemaColumn, error) {
	var (
		c   mysqltools.InformationSchemaColumn
		key string
	)

	err := rows.Scan(&c.TableCatalog, &c.TableSchema, &c.TableName, &c.ColumnName, &c.OrdinalPosition,
		&c.ColumnDefault, &c.IsNullable, &c.DataType, &c.CharacterMaximumLength, &c.CharacterOctetLength,
		&c.NumericPrecision, &c.NumericScale, &c.DatetimePrecision, &c.CharacterSetName, &c.CollationName,
		&c.ColumnType, &key, &c.Extra, &c.Privileges, &c.ColumnComment)
	if err != nil {
		return c, fmt.Errorf("scan information_schema column: %w", err)
	}

	c.ColumnKey = mysqltools.KeyRole(key)

	return c, nil
}

// ColumnType returns the DATA_TYPE of a column, e.g. "varchar".
func (t *Tools) ColumnType(ctx context.Context, table, column string) (string, error) {
	var dataType string

	err := t.conn.QueryRowContext(ctx,
		`SELECT DATA_TYPE FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		table, column).Scan(&dataType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s.%s", mysqltools.ErrColumnNotFound, table, column)
	}

	if err != nil {
		return "", classify(err)
	}

	return dataType, nil
}

// PrimaryKey returns the primary key column of table. The second result is
// false when the table has no primary key or a composite one.
func (t *Tools) PrimaryKey(ctx context.Context, table string) (string, bool, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return "", false, err
	}

	var keys []string

	for _, d := range descriptors {
		if d.IsPrimary() {
			keys = append(keys, d.Name)
		}
	}

	if len(keys) != 1 {
		return "", false, nil
	}

	return keys[0], true, nil
}

func (t *Tools) hasPrimaryKey(ctx context.Context, table string) (bool, error) {
	descriptors, err := t.Describe(ctx, table)
	if err != nil {
		return false, err
	}

	for _, d := range descriptors {
		if d.IsPrimary() {
			return true, nil
		}
	}

	return false, nil
}
