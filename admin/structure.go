package admin

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// CreateDatabase creates database.
func (t *Tools) CreateDatabase(ctx context.Context, database string) error {
	_, _, err := t.exec(ctx, sqlbuild.New("CREATE DATABASE ").Ident(database))
	return err
}

// DropCreateDatabase drops database if it exists, creates it again and makes
// it current. All data is lost. The three statements are not atomic: if the
// CREATE fails the database stays dropped.
func (t *Tools) DropCreateDatabase(ctx context.Context, database string) error {
	steps := []*sqlbuild.Statement{
		sqlbuild.New("DROP DATABASE IF EXISTS ").Ident(database),
		sqlbuild.New("CREATE DATABASE ").Ident(database),
		sqlbuild.New("USE ").Ident(database),
	}

	for _, st := range steps {
		if _, query, err := t.exec(ctx, st); err != nil {
			return &StatementError{Statement: query, Err: err}
		}
	}

	return nil
}

// RenameTable renames from to to.
func (t *Tools) RenameTable(ctx context.Context, from, to string) error {
	_, _, err := t.exec(ctx, sqlbuild.New("RENAME TABLE ").Ident(from).Raw(" TO ").Ident(to))
	return err
}

// AddColumn adds column with the given type clause, e.g. "varchar(20) NOT NULL".
// An existing column is reported as Skipped.
func (t *Tools) AddColumn(ctx context.Context, table, column, typeClause string) (Outcome, error) {
	target := table + "." + column

	exists, err := t.ColumnExists(ctx, table, column)
	if err != nil {
		return Outcome{}, err
	}

	if exists {
		return t.skipped(target, "column already exists"), nil
	}

	_, query, err := t.exec(ctx, sqlbuild.New("ALTER TABLE ").Ident(table).
		Raw(" ADD COLUMN ").Ident(column).Raw(" ").Type(typeClause))
	if err != nil {
		return Outcome{}, err
	}

	return t.applied(target, query), nil
}

// DropColumns removes columns from table in one statement.
func (t *Tools) DropColumns(ctx context.Context, table string, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}

	st := sqlbuild.New("ALTER TABLE ").Ident(table)
	for i, column := range columns {
		if i > 0 {
			st.Raw(",")
		}

		st.Raw(" DROP COLUMN ").Ident(column)
	}

	_, _, err := t.exec(ctx, st)

	return err
}

// DropTable drops table. It returns false when the table did not exist.
func (t *Tools) DropTable(ctx context.Context, table string) (bool, error) {
	exists, err := t.TableExists(ctx, table)
	if err != nil {
		return false, err
	}

	if !exists {
		t.logf("%s: skipped: table does not exist", table)
		return false, nil
	}

	if _, _, err := t.exec(ctx, sqlbuild.New("DROP TABLE ").Ident(table)); err != nil {
		return false, err
	}

	return true, nil
}

// DropTables drops every existing table of tables and returns the dropped ones.
func (t *Tools) DropTables(ctx context.Context, tables ...string) ([]string, error) {
	var dropped []string

	for _, table := range tables {
		ok, err := t.DropTable(ctx, table)
		if err != nil {
			return dropped, err
		}

		if ok {
			dropped = append(dropped, table)
		}
	}

	return dropped, nil
}

// ShowCreateTable returns the CREATE TABLE statement of table.
func (t *Tools) ShowCreateTable(ctx context.Context, table string) (string, error) {
	query, _, err := sqlbuild.New("SHOW CREATE TABLE ").Ident(table).Build()
	if err != nil {
		return "", err
	}

	var name, create string
	if err := t.conn.QueryRowContext(ctx, query).Scan(&name, &create); err != nil {
		return "", classify(err)
	}

	return create, nil
}

var createTableHead = regexp.MustCompile("(?i)^\\s*CREATE\\s+TABLE\\s+`?[A-Za-z0-9_$]+`?")

// CopyTableStructure creates dst with the definition of src. No rows are copied.
func (t *Tools) CopyTableStructure(ctx context.Context, src, dst string) error {
	quoted, err := sqlbuild.Ident(dst)
	if err != nil {
		return err
	}

	create, err := t.ShowCreateTable(ctx, src)
	if err != nil {
		return err
	}

	if !createTableHead.MatchString(create) {
		return fmt.Errorf("%w: %s", ErrUnexpectedDefinition, src)
	}

	create = createTableHead.ReplaceAllLiteralString(create, "CREATE TABLE "+quoted)

	if _, err := t.conn.ExecContext(ctx, create); err != nil {
		return &StatementError{Statement: create, Err: classify(err)}
	}

	return nil
}

// AddPrimaryKey adds an auto-increment integer column as the first column of
// table and makes it the primary key. If the column already exists the
// server rejects the statement and the error matches ErrDuplicateColumn.
func (t *Tools) AddPrimaryKey(ctx context.Context, table, column string) error {
	_, _, err := t.exec(ctx, sqlbuild.New("ALTER TABLE ").Ident(table).
		Raw(" ADD COLUMN ").Ident(column).Raw(" INT NOT NULL AUTO_INCREMENT FIRST, ADD PRIMARY KEY (").
		Ident(column).Raw(")"))

	return err
}
