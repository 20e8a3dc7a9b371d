package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools"
)

// InfoCmd represents the info command
type InfoCmd struct{}

// Run executes the info command
func (cmd *InfoCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	host, err := tools.Hostname(runCtx)
	if err != nil {
		return fmt.Errorf("failed to read hostname: %w", err)
	}

	user, err := tools.User(runCtx)
	if err != nil {
		return fmt.Errorf("failed to read user: %w", err)
	}

	database, err := tools.DatabaseName(runCtx)
	if err != nil {
		return fmt.Errorf("failed to read database name: %w", err)
	}

	version, err := tools.ServerVersion(runCtx)
	if err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}

	label := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("%s %s\n", label("Host:    "), host)
	fmt.Printf("%s %s\n", label("User:    "), user)
	fmt.Printf("%s %s\n", label("Database:"), database)
	fmt.Printf("%s %s\n", label("Version: "), version.Raw)

	return nil
}

// TablesCmd represents the tables command
type TablesCmd struct {
	Prefix string `help:"Only list names starting with this prefix"`
	Views  bool   `help:"List views instead of base tables"`
}

// Run executes the tables command
func (cmd *TablesCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	list := tools.TableNames
	if cmd.Views {
		list = tools.ViewNames
	}

	names, err := list(ctx.runContext())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	for _, name := range names {
		if strings.HasPrefix(name, cmd.Prefix) {
			fmt.Println(name)
		}
	}

	return nil
}

// DescribeCmd represents the describe command
type DescribeCmd struct {
	Table string `arg:"" help:"Table to describe"`
}

// Run executes the describe command
func (cmd *DescribeCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	descriptors, err := tools.Describe(ctx.runContext(), cmd.Table)
	if err != nil {
		return err
	}

	fmt.Println(describeTable(descriptors))

	return nil
}

func describeTable(descriptors []mysqltools.ColumnDescriptor) string {
	rows := make([][]string, 0, len(descriptors))

	for _, d := range descriptors {
		def := "NULL"
		if d.Default != nil {
			def = *d.Default
		}

		rows = append(rows, []string{
			strconv.Itoa(d.Position), d.Name, d.Type, d.Null, string(d.Key), def, d.Extra,
		})
	}

	return renderTable([]string{"#", "Field", "Type", "Null", "Key", "Default", "Extra"}, rows)
}

// CreateCmd represents the create command
type CreateCmd struct {
	Table string `arg:"" help:"Table whose CREATE statement is printed"`
}

// Run executes the create command
func (cmd *CreateCmd) Run(ctx *Context) error {
	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	create, err := tools.ShowCreateTable(ctx.runContext(), cmd.Table)
	if err != nil {
		return err
	}

	return highlightSQL(os.Stdout, create+";")
}
