package admin

import (
	"context"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// OptimizeOptions tune OptimizeDataTypes.
type OptimizeOptions struct {
	// Execute applies the alterations. Otherwise they are only returned.
	Execute bool
	// Enums overrides Options.Rules.Enums when not nil.
	Enums []string
}

// ColumnChange is a planned or applied column type alteration.
type ColumnChange struct {
	Table     string
	Column    string
	Type      string
	Statement string
	Applied   bool
}

// OptimizeDataTypes analyses every table and rewrites its columns to the
// refined optimal field types. Empty tables and columns with EXTRA attributes
// such as auto_increment are left alone. When Execute is set the first failing
// statement stops the run; the changes made so far are returned together with
// a *StatementError.
func (t *Tools) OptimizeDataTypes(ctx context.Context, tables []string, opts OptimizeOptions) ([]ColumnChange, error) {
	var changes []ColumnChange

	for _, table := range tables {
		filled, err := t.hasRows(ctx, table)
		if err != nil {
			return changes, err
		}

		if !filled {
			t.logf("%s: skipped: table is empty", table)
			continue
		}

		records, err := t.AnalyseTable(ctx, table, AnalyseOptions{Enums: opts.Enums})
		if err != nil {
			return changes, err
		}

		descriptors, err := t.Describe(ctx, table)
		if err != nil {
			return changes, err
		}

		for _, d := range descriptors {
			rec, ok := records[d.Name]
			if !ok {
				continue
			}

			if d.Extra != "" {
				t.logf("%s.%s: skipped: column has extra attributes %q", table, d.Name, d.Extra)
				continue
			}

			st := sqlbuild.New("ALTER TABLE ").Ident(table).Raw(" CHANGE ").Ident(d.Name).Raw(" ").
				Ident(d.Name).Raw(" ").Type(rec.OptimalFieldType)

			query, _, err := st.Build()
			if err != nil {
				t.logf("%s.%s: skipped: %v", table, d.Name, err)
				continue
			}

			change := ColumnChange{Table: table, Column: d.Name, Type: rec.OptimalFieldType, Statement: query}

			if opts.Execute {
				if _, err := t.conn.ExecContext(ctx, query); err != nil {
					return changes, &StatementError{Statement: query, Err: classify(err)}
				}

				change.Applied = true
			}

			changes = append(changes, change)
		}
	}

	return changes, nil
}
