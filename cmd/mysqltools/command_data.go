package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools/admin"
)

// LoadCmd represents the load command
type LoadCmd struct {
	Path      string   `arg:"" help:"Delimited text file" type:"existingfile"`
	Table     string   `help:"Target table (default: file name without extension)"`
	Delimiter string   `help:"Field delimiter (default: load.delimiter of the config); \\t means tab"`
	Columns   []string `help:"Column names"`
	Header    bool     `help:"Take column names from the first line"`
	Database  string   `help:"Create the table in this database"`
}

// Run executes the load command
func (cmd *LoadCmd) Run(ctx *Context) error {
	delimiter, err := parseDelimiter(cmd.Delimiter)
	if err != nil {
		return err
	}

	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	n, err := tools.LoadDelimitedFile(ctx.runContext(), cmd.Path, admin.LoadOptions{
		Table:            cmd.Table,
		Delimiter:        delimiter,
		Columns:          cmd.Columns,
		FirstLineColumns: cmd.Header,
		Database:         cmd.Database,
	})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cmd.Path, err)
	}

	if !ctx.Quiet {
		color.Green("Loaded %d row(s) from %s", n, cmd.Path)
	}

	return nil
}

// parseDelimiter accepts a single character or the escape \t. Empty means the
// configured default.
func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}

	if s == `\t` {
		return '\t', nil
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}

	return runes[0], nil
}

// TruncateCmd represents the truncate command
type TruncateCmd struct {
	Tables            []string `arg:"" optional:"" help:"Tables to truncate"`
	Prefix            string   `help:"Truncate every table starting with this prefix"`
	All               bool     `help:"Truncate every table of the database"`
	KeepAutoIncrement bool     `help:"Do not reset auto_increment counters"`
}

// Run executes the truncate command
func (cmd *TruncateCmd) Run(ctx *Context) error {
	if len(cmd.Tables) == 0 && cmd.Prefix == "" && !cmd.All {
		return ErrNothingToTruncate
	}

	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	var truncated []string

	switch {
	case len(cmd.Tables) > 0:
		for _, table := range cmd.Tables {
			if err := tools.TruncateTable(runCtx, table, !cmd.KeepAutoIncrement); err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}

			truncated = append(truncated, table)
		}
	default:
		truncated, err = tools.TruncateAllTables(runCtx, cmd.Prefix)
		if err != nil {
			return err
		}
	}

	if !ctx.Quiet {
		for _, table := range truncated {
			color.Green("Truncated %s", table)
		}
	}

	return nil
}

// DedupeCmd represents the dedupe command
type DedupeCmd struct {
	Tables []string `arg:"" optional:"" help:"Tables to deduplicate (default: all tables)"`
}

// Run executes the dedupe command
func (cmd *DedupeCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	tables, err := tablesOrAll(runCtx, cmd.Tables, tools.TableNames)
	if err != nil {
		return err
	}

	outcomes, err := tools.MakeUnique(runCtx, tables...)
	printOutcomes(os.Stdout, outcomes, ctx.Quiet)

	return err
}

// DuplicatesCmd represents the duplicates command
type DuplicatesCmd struct {
	Tables []string `arg:"" optional:"" help:"Tables to inspect (default: all tables)"`
}

// Run executes the duplicates command
func (cmd *DuplicatesCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	tables, err := tablesOrAll(runCtx, cmd.Tables, tools.TableNames)
	if err != nil {
		return err
	}

	found, err := tools.FindDuplicates(runCtx, tables...)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		if !ctx.Quiet {
			color.Green("No duplicate rows found")
		}

		return nil
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		color.Yellow("%s: %d duplicate row(s)", name, found[name])
	}

	return nil
}

// tablesOrAll returns tables, or every table of the database when none are given.
func tablesOrAll(ctx context.Context, tables []string, all func(context.Context) ([]string, error)) ([]string, error) {
	if len(tables) > 0 {
		return tables, nil
	}

	names, err := all(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	return names, nil
}

// CleanCmd represents the clean command
type CleanCmd struct {
	Table   string   `arg:"" help:"Table to clean"`
	Columns []string `help:"Only clean these columns"`
	NoTrim  bool     `help:"Do not trim whitespace"`
	NotNull bool     `help:"Afterwards make columns without NULL values NOT NULL"`
}

// Run executes the clean command
func (cmd *CleanCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	if !cmd.NoTrim {
		trimmed, err := tools.TrimAll(runCtx, cmd.Table, cmd.Columns...)
		if err != nil {
			return fmt.Errorf("failed to trim %s: %w", cmd.Table, err)
		}

		ctx.printCounts("trimmed", trimmed)
	}

	nulled, err := tools.EmptyStringsToNull(runCtx, cmd.Table, cmd.Columns...)
	if err != nil {
		return fmt.Errorf("failed to convert blanks in %s: %w", cmd.Table, err)
	}

	ctx.printCounts("set to NULL", nulled)

	if cmd.NotNull {
		changed, err := tools.ChangeColumnsToNotNull(runCtx, cmd.Table, cmd.Columns...)
		if err != nil {
			return err
		}

		if !ctx.Quiet {
			for _, column := range changed {
				color.Green("%s.%s: now NOT NULL", cmd.Table, column)
			}
		}
	}

	return nil
}

func (c *Context) printCounts(action string, counts map[string]int64) {
	if c.Quiet {
		return
	}

	columns := make([]string, 0, len(counts))
	for column := range counts {
		columns = append(columns, column)
	}

	slices.Sort(columns)

	for _, column := range columns {
		if counts[column] > 0 {
			color.Green("%s: %d row(s) %s", column, counts[column], action)
		} else if c.Verbose {
			color.Blue("%s: nothing %s", column, action)
		}
	}
}
