package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/admin"
)

func (c *Context) runContext() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}

	return c.Ctx
}

func (c *Context) loadConfig() (*mysqltools.Config, error) {
	config, err := mysqltools.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if c.Verbose {
		color.Blue("Configuration loaded from: %s", c.Config)
	}

	return config, nil
}

// resolveDatabaseConnection determines the connection string and the database
// to select. Priority: --db > environment config > error.
func resolveDatabaseConnection(c *Context, config *mysqltools.Config) (string, string, error) {
	if c.DB != "" {
		return c.DB, "", nil
	}

	if c.Env == "" {
		return "", "", ErrMissingDBOrEnv
	}

	if len(config.Databases) == 0 {
		return "", "", ErrNoDatabasesConfigured
	}

	envConfig, exists := config.Databases[c.Env]
	if !exists {
		return "", "", fmt.Errorf("%w: '%s'", mysqltools.ErrEnvironmentNotFound, c.Env)
	}

	if envConfig.Connection == "" {
		return "", "", ErrEmptyConnectionString
	}

	return envConfig.Connection, envConfig.Database, nil
}

// open loads the configuration and connects to the selected database.
func (c *Context) open() (*admin.Tools, *mysqltools.Config, error) {
	config, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	tools, err := c.openWith(config)
	if err != nil {
		return nil, nil, err
	}

	return tools, config, nil
}

func (c *Context) openWith(config *mysqltools.Config) (*admin.Tools, error) {
	conn, database, err := resolveDatabaseConnection(c, config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database connection: %w", err)
	}

	dsn, err := admin.ResolveDSN(conn)
	if err != nil {
		return nil, err
	}

	if database != "" {
		dsn, err = admin.WithDatabase(dsn, database)
		if err != nil {
			return nil, err
		}
	}

	tools, err := admin.OpenDSN(c.runContext(), dsn, admin.OptionsFromConfig(config, c.logger(os.Stderr)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if c.Verbose {
		if name, err := tools.DatabaseName(c.runContext()); err == nil {
			color.Blue("Connected to database: %s", name)
		}
	}

	return tools, nil
}

// logger routes diagnostics of the admin package to w. Failures are always
// shown, skips unless --quiet, everything else only with --verbose.
func (c *Context) logger(w io.Writer) func(format string, args ...any) {
	failed := color.New(color.FgRed)
	skipped := color.New(color.FgYellow)
	info := color.New(color.FgBlue)

	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)

		switch {
		case strings.Contains(msg, ": failed"):
			failed.Fprintln(w, msg)
		case strings.Contains(msg, ": skipped"):
			if !c.Quiet {
				skipped.Fprintln(w, msg)
			}
		default:
			if c.Verbose {
				info.Fprintln(w, msg)
			}
		}
	}
}
