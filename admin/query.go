package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// exec runs a built statement and returns its SQL text for diagnostics.
func (t *Tools) exec(ctx context.Context, st *sqlbuild.Statement) (sql.Result, string, error) {
	query, args, err := st.Build()
	if err != nil {
		return nil, st.String(), err
	}

	res, err := t.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, query, classify(err)
	}

	return res, query, nil
}

// execAffected runs st and returns the number of affected rows.
func (t *Tools) execAffected(ctx context.Context, st *sqlbuild.Statement) (int64, error) {
	res, _, err := t.exec(ctx, st)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (t *Tools) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := t.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []string

	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}

		if s.Valid {
			result = append(result, s.String)
		}
	}

	return result, rows.Err()
}

func (t *Tools) queryString(ctx context.Context, query string, args ...any) (string, error) {
	var s sql.NullString

	err := t.conn.QueryRowContext(ctx, query, args...).Scan(&s)
	if err != nil {
		return "", classify(err)
	}

	return s.String, nil
}

// count runs a statement returning a single integer.
func (t *Tools) count(ctx context.Context, st *sqlbuild.Statement) (int64, error) {
	query, args, err := st.Build()
	if err != nil {
		return 0, err
	}

	var n sql.NullInt64
	if err := t.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify(err)
	}

	return n.Int64, nil
}

// hasRows reports whether table holds at least one row.
func (t *Tools) hasRows(ctx context.Context, table string) (bool, error) {
	query, args, err := sqlbuild.New("SELECT 1 FROM ").Ident(table).Raw(" LIMIT 1").Build()
	if err != nil {
		return false, err
	}

	var one int

	err = t.conn.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, classify(err)
	}

	return true, nil
}

// rowMaps scans every row into a column name to raw value map. It suits SHOW
// statements whose column set differs between server versions.
func rowMaps(rows *sql.Rows) ([]map[string]sql.NullString, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]sql.NullString

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]sql.NullString, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}

		result = append(result, row)
	}

	return result, rows.Err()
}
