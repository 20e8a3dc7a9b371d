package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Ctx     context.Context
	Config  string
	Env     string
	DB      string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" default:"mysqltools.yaml"`
	Env     string `help:"Database environment to use from config" default:"development"`
	DB      string `help:"Database connection (mysql:// URL or DSN); overrides --env"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Info       InfoCmd       `cmd:"" help:"Show server, user and current database"`
	Tables     TablesCmd     `cmd:"" help:"List tables or views"`
	Describe   DescribeCmd   `cmd:"" help:"Describe the columns of a table"`
	Create     CreateCmd     `cmd:"" help:"Print the CREATE TABLE statement of a table"`
	Snapshot   SnapshotCmd   `cmd:"" help:"Save a schema snapshot"`
	Diff       DiffCmd       `cmd:"" help:"Compare the schema with a snapshot, another environment or a prefix"`
	TblsDiff   TblsDiffCmd   `cmd:"" name:"tbls-diff" help:"Compare the schema with a tbls schema.json"`
	Analyse    AnalyseCmd    `cmd:"" help:"Analyse column statistics and optimal types"`
	Optimize   OptimizeCmd   `cmd:"" help:"Change column types to their optimal types"`
	Load       LoadCmd       `cmd:"" help:"Load a delimited text file into a new table"`
	Truncate   TruncateCmd   `cmd:"" help:"Truncate tables"`
	Dedupe     DedupeCmd     `cmd:"" help:"Remove duplicate rows by rebuilding tables"`
	Duplicates DuplicatesCmd `cmd:"" help:"Count duplicate rows"`
	Clean      CleanCmd      `cmd:"" help:"Turn blank strings into NULL and trim text columns"`
	Index      IndexCmd      `cmd:"" help:"Create or drop indexes"`
	Table      TableCmd      `cmd:"" help:"Structural table changes"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("mysqltools v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("mysqltools"),
		kong.Description("MySQL schema and data administration tools"),
		kong.UsageOnError(),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx := &Context{
		Ctx:     runCtx,
		Config:  CLI.Config,
		Env:     CLI.Env,
		DB:      CLI.DB,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
