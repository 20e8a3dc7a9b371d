package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// LoadOptions configure LoadDelimitedFile.
type LoadOptions struct {
	// Table defaults to the file name without its extension.
	Table string
	// Delimiter defaults to Options.Delimiter.
	Delimiter rune
	// Columns names the columns explicitly.
	Columns []string
	// FirstLineColumns takes the column names from the first line.
	FirstLineColumns bool
	// Database creates the table in this database instead of the current one.
	Database string
}

// maxPlaceholders is the server limit on bound parameters per statement.
const maxPlaceholders = 65535

const maxBatchRows = 500

// ParseDelimited reads delimited records and resolves the column names.
// Without explicit names and without FirstLineColumns the columns are called
// column_0, column_1 and so on. Rows shorter than the column list are padded
// with empty strings.
func ParseDelimited(r io.Reader, opts LoadOptions) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	if reader.Comma == 0 {
		reader.Comma = '\t'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read delimited input: %w", err)
	}

	if len(records) == 0 {
		return nil, nil, ErrEmptyInput
	}

	var columns []string

	switch {
	case len(opts.Columns) > 0:
		columns = opts.Columns
		if opts.FirstLineColumns {
			records = records[1:]
		}
	case opts.FirstLineColumns:
		columns = make([]string, len(records[0]))
		for i, name := range records[0] {
			columns[i] = strings.TrimSpace(name)
		}

		records = records[1:]
	default:
		columns = make([]string, len(records[0]))
		for i := range columns {
			columns[i] = "column_" + strconv.Itoa(i)
		}
	}

	for _, column := range columns {
		if err := sqlbuild.ValidIdent(column); err != nil {
			return nil, nil, fmt.Errorf("column name: %w", err)
		}
	}

	for i, record := range records {
		if len(record) > len(columns) {
			return nil, nil, fmt.Errorf("%w: record %d has %d fields for %d columns", ErrRowTooLong, i+1, len(record), len(columns))
		}

		for len(record) < len(columns) {
			record = append(record, "")
		}

		records[i] = record
	}

	return columns, records, nil
}

// LoadDelimitedFile creates a table from a delimited text file and inserts
// its rows. Every column is TEXT NOT NULL. It returns the number of rows
// inserted.
func (t *Tools) LoadDelimitedFile(ctx context.Context, path string, opts LoadOptions) (int64, error) {
	if opts.Table == "" {
		base := filepath.Base(path)
		opts.Table = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := sqlbuild.ValidIdent(opts.Table); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNoTableName, path, err)
	}

	if opts.Delimiter == 0 {
		opts.Delimiter = t.opts.Delimiter
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	columns, rows, err := ParseDelimited(f, opts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	create := sqlbuild.New("CREATE TABLE ").Qualified(opts.Database, opts.Table).Raw(" (")
	for i, column := range columns {
		if i > 0 {
			create.Raw(", ")
		}

		create.Ident(column).Raw(" TEXT NOT NULL")
	}

	create.Raw(")")

	if _, query, err := t.exec(ctx, create); err != nil {
		return 0, &StatementError{Statement: query, Err: err}
	}

	batch := min(maxBatchRows, maxPlaceholders/len(columns))

	var inserted int64

	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))

		n, err := t.insertRows(ctx, opts.Database, opts.Table, columns, rows[start:end])
		inserted += n

		if err != nil {
			return inserted, err
		}
	}

	t.logf("%s: loaded %d rows from %s", opts.Table, inserted, path)

	return inserted, nil
}

func (t *Tools) insertRows(ctx context.Context, database, table string, columns []string, rows [][]string) (int64, error) {
	st := sqlbuild.New("INSERT INTO ").Qualified(database, table).Raw(" (").Idents(columns...).Raw(") VALUES ")

	for i, row := range rows {
		if i > 0 {
			st.Raw(", ")
		}

		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}

		st.Raw("(").Binds(values...).Raw(")")
	}

	res, query, err := t.exec(ctx, st)
	if err != nil {
		return 0, &StatementError{Statement: abbreviate(query), Err: err}
	}

	return res.RowsAffected()
}

func abbreviate(query string) string {
	const limit = 200
	if len(query) <= limit {
		return query
	}

	return query[:limit] + "..."
}
