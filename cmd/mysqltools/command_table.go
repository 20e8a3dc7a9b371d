package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools/admin"
)

// IndexCmd represents the index command
type IndexCmd struct {
	Tables               []string `arg:"" help:"Tables to work on"`
	Columns              []string `help:"Index each of these columns"`
	Unique               string   `help:"Create a unique index with this name over --columns"`
	Suffix               string   `help:"Index every column ending with this suffix"`
	Drop                 bool     `help:"Drop secondary indexes"`
	DropAll              bool     `help:"Drop every index including PRIMARY"`
	IncludePrimaryUnique bool     `help:"With --drop, also drop primary and unique indexes"`
}

// Run executes the index command
func (cmd *IndexCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	var outcomes []admin.Outcome

	switch {
	case cmd.DropAll:
		for _, table := range cmd.Tables {
			dropped, err := tools.DropAllIndices(runCtx, table)
			if err != nil {
				return err
			}

			if !ctx.Quiet {
				for _, name := range dropped {
					color.Green("%s: dropped %s", table, name)
				}
			}
		}

		return nil
	case cmd.Drop:
		outcomes, err = tools.DropIndices(runCtx, cmd.Tables, cmd.IncludePrimaryUnique)
	case cmd.Suffix != "":
		outcomes, err = tools.IndexColumnsEndingWith(runCtx, cmd.Tables, cmd.Suffix)
	case cmd.Unique != "":
		for _, table := range cmd.Tables {
			var o admin.Outcome

			o, err = tools.CreateUniqueIndex(runCtx, table, cmd.Unique, cmd.Columns...)
			if err != nil {
				break
			}

			outcomes = append(outcomes, o)
		}
	case len(cmd.Columns) > 0:
		for _, table := range cmd.Tables {
			var created []admin.Outcome

			created, err = tools.CreateIndex(runCtx, table, cmd.Columns...)
			outcomes = append(outcomes, created...)

			if err != nil {
				break
			}
		}
	default:
		for _, table := range cmd.Tables {
			if err := ctx.listIndexes(tools, table); err != nil {
				return err
			}
		}

		return nil
	}

	printOutcomes(os.Stdout, outcomes, ctx.Quiet)

	return err
}

func (c *Context) listIndexes(tools *admin.Tools, table string) error {
	indexes, err := tools.Indexes(c.runContext(), table)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(indexes))
	for _, idx := range indexes {
		unique := ""
		if idx.Unique {
			unique = "yes"
		}

		rows = append(rows, []string{table, idx.Name, unique, strings.Join(idx.Columns, ", ")})
	}

	fmt.Println(renderTable([]string{"Table", "Index", "Unique", "Columns"}, rows))

	return nil
}

// TableCmd groups structural table changes
type TableCmd struct {
	Copy        TableCopyCmd        `cmd:"" help:"Create a table with the structure of another"`
	Rename      TableRenameCmd      `cmd:"" help:"Rename a table"`
	Drop        TableDropCmd        `cmd:"" help:"Drop tables"`
	AddColumn   TableAddColumnCmd   `cmd:"" name:"add-column" help:"Add a column"`
	DropColumns TableDropColumnsCmd `cmd:"" name:"drop-columns" help:"Drop columns"`
	AddPK       TableAddPKCmd       `cmd:"" name:"add-pk" help:"Add an auto_increment primary key column"`
	NotNull     TableNotNullCmd     `cmd:"" name:"not-null" help:"Make columns without NULL values NOT NULL"`
	BlankToNull TableBlankToNullCmd `cmd:"" name:"blank-to-null" help:"Turn blank strings into NULL"`
	CreateDB    TableCreateDBCmd    `cmd:"" name:"create-db" help:"Create a database"`
	RecreateDB  TableRecreateDBCmd  `cmd:"" name:"recreate-db" help:"Drop and create a database again"`
}

// TableCopyCmd represents the table copy command
type TableCopyCmd struct {
	Source      string `arg:"" help:"Source table"`
	Destination string `arg:"" help:"New table"`
}

// Run executes the table copy command
func (cmd *TableCopyCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.CopyTableStructure(ctx.runContext(), cmd.Source, cmd.Destination); err != nil {
		return fmt.Errorf("failed to copy %s: %w", cmd.Source, err)
	}

	ctx.done("Created %s like %s", cmd.Destination, cmd.Source)

	return nil
}

// TableRenameCmd represents the table rename command
type TableRenameCmd struct {
	From string `arg:"" help:"Current name"`
	To   string `arg:"" help:"New name"`
}

// Run executes the table rename command
func (cmd *TableRenameCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.RenameTable(ctx.runContext(), cmd.From, cmd.To); err != nil {
		return err
	}

	ctx.done("Renamed %s to %s", cmd.From, cmd.To)

	return nil
}

// TableDropCmd represents the table drop command
type TableDropCmd struct {
	Tables []string `arg:"" help:"Tables to drop"`
	Yes    bool     `help:"Confirm the destructive operation"`
}

// Run executes the table drop command
func (cmd *TableDropCmd) Run(ctx *Context) error {
	if !cmd.Yes {
		return fmt.Errorf("%w: table drop", ErrConfirmationRequired)
	}

	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	dropped, err := tools.DropTables(ctx.runContext(), cmd.Tables...)
	for _, table := range dropped {
		ctx.done("Dropped %s", table)
	}

	return err
}

// TableAddColumnCmd represents the table add-column command
type TableAddColumnCmd struct {
	Table  string `arg:"" help:"Table"`
	Column string `arg:"" help:"New column"`
	Type   string `arg:"" help:"Column type clause, e.g. 'varchar(20) NOT NULL'"`
}

// Run executes the table add-column command
func (cmd *TableAddColumnCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	o, err := tools.AddColumn(ctx.runContext(), cmd.Table, cmd.Column, cmd.Type)
	if err != nil {
		return err
	}

	printOutcomes(os.Stdout, []admin.Outcome{o}, ctx.Quiet)

	return nil
}

// TableDropColumnsCmd represents the table drop-columns command
type TableDropColumnsCmd struct {
	Table   string   `arg:"" help:"Table"`
	Columns []string `arg:"" help:"Columns to drop"`
}

// Run executes the table drop-columns command
func (cmd *TableDropColumnsCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.DropColumns(ctx.runContext(), cmd.Table, cmd.Columns...); err != nil {
		return err
	}

	ctx.done("Dropped %s from %s", strings.Join(cmd.Columns, ", "), cmd.Table)

	return nil
}

// TableAddPKCmd represents the table add-pk command
type TableAddPKCmd struct {
	Table  string `arg:"" help:"Table"`
	Column string `help:"Name of the key column" default:"id"`
}

// Run executes the table add-pk command
func (cmd *TableAddPKCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.AddPrimaryKey(ctx.runContext(), cmd.Table, cmd.Column); err != nil {
		return fmt.Errorf("failed to add primary key to %s: %w", cmd.Table, err)
	}

	ctx.done("Added primary key %s.%s", cmd.Table, cmd.Column)

	return nil
}

// TableCreateDBCmd represents the table create-db command
type TableCreateDBCmd struct {
	Database string `arg:"" help:"Database name"`
}

// Run executes the table create-db command
func (cmd *TableCreateDBCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.CreateDatabase(ctx.runContext(), cmd.Database); err != nil {
		return err
	}

	ctx.done("Created database %s", cmd.Database)

	return nil
}

// TableRecreateDBCmd represents the table recreate-db command
type TableRecreateDBCmd struct {
	Database string `arg:"" help:"Database name"`
	Yes      bool   `help:"Confirm that every table of the database is lost"`
}

// Run executes the table recreate-db command
func (cmd *TableRecreateDBCmd) Run(ctx *Context) error {
	if !cmd.Yes {
		return fmt.Errorf("%w: recreate-db %s", ErrConfirmationRequired, cmd.Database)
	}

	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	if err := tools.DropCreateDatabase(ctx.runContext(), cmd.Database); err != nil {
		return err
	}

	ctx.done("Recreated database %s", cmd.Database)

	return nil
}

// TableNotNullCmd represents the table not-null command
type TableNotNullCmd struct {
	Table   string   `arg:"" help:"Table"`
	Columns []string `arg:"" optional:"" help:"Columns (default: all)"`
}

// Run executes the table not-null command
func (cmd *TableNotNullCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	changed, err := tools.ChangeColumnsToNotNull(ctx.runContext(), cmd.Table, cmd.Columns...)
	for _, column := range changed {
		ctx.done("%s.%s: now NOT NULL", cmd.Table, column)
	}

	return err
}

// TableBlankToNullCmd represents the table blank-to-null command
type TableBlankToNullCmd struct {
	Table   string   `arg:"" help:"Table"`
	Columns []string `arg:"" optional:"" help:"Columns (default: all nullable columns)"`
}

// Run executes the table blank-to-null command
func (cmd *TableBlankToNullCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	counts, err := tools.EmptyStringsToNull(ctx.runContext(), cmd.Table, cmd.Columns...)
	if err != nil {
		return err
	}

	ctx.printCounts("set to NULL", counts)

	return nil
}

func (c *Context) done(format string, args ...any) {
	if !c.Quiet {
		color.Green(format, args...)
	}
}
