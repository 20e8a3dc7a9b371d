package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/admin"
)

// AnalyseCmd represents the analyse command
type AnalyseCmd struct {
	Table string   `arg:"" help:"Table to analyse"`
	Enums []string `help:"Only treat these columns as enumerations (overrides optimize.enums)"`
	Mode  string   `help:"Analysis mode (auto, procedure, emulate); defaults to analysis.mode"`
}

// Run executes the analyse command
func (cmd *AnalyseCmd) Run(ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	switch cmd.Mode {
	case "":
	case mysqltools.AnalysisAuto, mysqltools.AnalysisProcedure, mysqltools.AnalysisEmulate:
		config.Analysis.Mode = cmd.Mode
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAnalysisMode, cmd.Mode)
	}

	tools, err := ctx.openWith(config)
	if err != nil {
		return err
	}
	defer tools.Close()

	records, err := tools.AnalyseTable(ctx.runContext(), cmd.Table, admin.AnalyseOptions{Enums: cmd.Enums})
	if err != nil {
		return fmt.Errorf("failed to analyse %s: %w", cmd.Table, err)
	}

	columns, err := tools.ColumnNames(ctx.runContext(), cmd.Table)
	if err != nil {
		return err
	}

	fmt.Println(analysisTable(columns, records))

	return nil
}

func analysisTable(columns []string, records map[string]mysqltools.AnalysisRecord) string {
	rows := make([][]string, 0, len(records))

	for _, column := range columns {
		rec, ok := records[column]
		if !ok {
			continue
		}

		rows = append(rows, []string{
			rec.Field,
			nullString(rec.MinValue.String, rec.MinValue.Valid),
			nullString(rec.MaxValue.String, rec.MaxValue.Valid),
			strconv.FormatInt(rec.MinLength, 10),
			strconv.FormatInt(rec.MaxLength, 10),
			strconv.FormatInt(rec.EmptiesOrZeros, 10),
			strconv.FormatInt(rec.Nulls, 10),
			formatDecimal(rec.Average),
			formatDecimal(rec.Std),
			rec.OptimalFieldType,
		})
	}

	return renderTable([]string{"Field", "Min", "Max", "MinLen", "MaxLen", "Empty/0", "Nulls", "Avg", "Std", "Optimal type"}, rows)
}

func nullString(s string, valid bool) string {
	if !valid {
		return "NULL"
	}

	return s
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "NULL"
	}

	return d.Decimal.StringFixed(4)
}

// OptimizeCmd represents the optimize command
type OptimizeCmd struct {
	Tables  []string `arg:"" optional:"" help:"Tables to optimize (default: all tables)"`
	Execute bool     `help:"Apply the changes instead of printing them"`
	Enums   []string `help:"Only treat these columns as enumerations (overrides optimize.enums)"`
}

// Run executes the optimize command
func (cmd *OptimizeCmd) Run(ctx *Context) error {
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

	changes, err := tools.OptimizeDataTypes(runCtx, tables, admin.OptimizeOptions{Execute: cmd.Execute, Enums: cmd.Enums})

	for _, change := range changes {
		switch {
		case change.Applied && !ctx.Quiet:
			color.Green("%s;", change.Statement)
		case !change.Applied:
			fmt.Printf("%s;\n", change.Statement)
		}
	}

	if err != nil {
		return fmt.Errorf("optimization stopped: %w", err)
	}

	if !ctx.Quiet {
		applied := slices.ContainsFunc(changes, func(c admin.ColumnChange) bool { return c.Applied })
		if !applied && len(changes) > 0 {
			color.Cyan("%d change(s) planned; rerun with --execute to apply", len(changes))
		}
	}

	return nil
}
