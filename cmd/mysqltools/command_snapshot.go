package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools/schemadiff"
	"github.com/shibukawa/mysqltools/snapshot"
)

// SnapshotCmd represents the snapshot command
type SnapshotCmd struct {
	Dir string `help:"Output directory (defaults to snapshot.dir of the config)" type:"path"`
}

// Run executes the snapshot command
func (cmd *SnapshotCmd) Run(ctx *Context) error {
	tools, config, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	dir := cmd.Dir
	if dir == "" {
		dir = config.Snapshot.Dir
	}

	path, err := tools.SaveSnapshot(ctx.runContext(), dir, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if !ctx.Quiet {
		color.Green("Snapshot written to %s", path)
	}

	return nil
}

// DiffCmd represents the diff command
type DiffCmd struct {
	Snapshot      string `arg:"" optional:"" help:"Snapshot file to compare with" type:"existingfile"`
	Against       string `help:"Environment from the config to compare with"`
	Prefix        string `help:"Only compare tables with this prefix (stripped before comparing)"`
	AgainstPrefix string `help:"Table prefix on the other side"`
}

// Run executes the diff command
func (cmd *DiffCmd) Run(ctx *Context) error {
	tools, config, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	runCtx := ctx.runContext()

	if cmd.Snapshot != "" {
		report, _, err := tools.CompareWithSnapshotFile(runCtx, cmd.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to compare with snapshot: %w", err)
		}

		fmt.Print(report)

		return nil
	}

	if cmd.Against == "" && cmd.Prefix == "" && cmd.AgainstPrefix == "" {
		return ErrNothingToCompare
	}

	other := tools
	otherName := ctx.Env

	if cmd.Against != "" {
		otherCtx := *ctx
		otherCtx.DB = ""
		otherCtx.Env = cmd.Against

		other, err = otherCtx.openWith(config)
		if err != nil {
			return err
		}
		defer other.Close()

		otherName = cmd.Against
	}

	diff, err := tools.CompareWith(runCtx, other, cmd.Prefix, cmd.AgainstPrefix)
	if err != nil {
		return fmt.Errorf("failed to compare schemas: %w", err)
	}

	fmt.Print(schemadiff.Report(diff, sideName(ctx.Env, cmd.Prefix), sideName(otherName, cmd.AgainstPrefix)))

	return nil
}

func sideName(env, prefix string) string {
	if env == "" {
		env = "database"
	}

	if prefix == "" {
		return env
	}

	return env + " (" + prefix + "*)"
}

// TblsDiffCmd represents the tbls-diff command
type TblsDiffCmd struct {
	Path string `arg:"" help:"tbls schema.json file" type:"existingfile"`
}

// Run executes the tbls-diff command
func (cmd *TblsDiffCmd) Run(ctx *Context) error {
	file, err := snapshot.ImportTbls(cmd.Path)
	if err != nil {
		return err
	}

	tools, _, err := ctx.open()
	if err != nil {
		return err
	}
	defer tools.Close()

	report, _, err := tools.CompareWithFile(ctx.runContext(), cmd.Path, file)
	if err != nil {
		return fmt.Errorf("failed to compare with tbls schema: %w", err)
	}

	fmt.Print(report)

	return nil
}
