// Package admin provides Tools, a set of named schema and data administration
// operations over a single MySQL connection.
//
// A Tools value is not safe for concurrent use. Create one per goroutine, each
// with its own connection, when parallel work is needed.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/fieldtype"
)

// Conn is the connection handle used by Tools. *sql.DB, *sql.Conn and *sql.Tx
// satisfy it. Statements such as USE change session state, so a *sql.Conn is
// the natural choice when the caller owns the connection.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options tune the behaviour of Tools.
type Options struct {
	// Logger receives diagnostics about skipped and failed steps. May be nil.
	Logger func(format string, args ...any)
	// AnalysisMode is one of mysqltools.AnalysisAuto, AnalysisProcedure or AnalysisEmulate.
	AnalysisMode string
	// Rules configure how enumeration suggestions are classified.
	Rules fieldtype.Rules
	// IDSuffix names the identifier column ("<table><IDSuffix>") ignored by FindDuplicates.
	IDSuffix string
	// ExcludeColumns are further columns ignored by FindDuplicates.
	ExcludeColumns []string
	// Delimiter is the default field separator of LoadDelimitedFile.
	Delimiter rune
}

// DefaultOptions returns the options matching mysqltools.DefaultConfig.
func DefaultOptions() Options {
	return OptionsFromConfig(mysqltools.DefaultConfig(), nil)
}

// OptionsFromConfig maps configuration sections onto Options.
func OptionsFromConfig(cfg *mysqltools.Config, logger func(format string, args ...any)) Options {
	opts := Options{
		Logger:       logger,
		AnalysisMode: cfg.Analysis.Mode,
		Rules: fieldtype.Rules{
			Enums:              cfg.Optimize.Enums,
			MaxEnumValues:      cfg.Optimize.MaxEnumValues,
			MaxEnumValueLength: cfg.Optimize.MaxEnumValueLength,
		},
		IDSuffix:       cfg.Duplicates.IDSuffix,
		ExcludeColumns: cfg.Duplicates.ExcludeColumns,
		Delimiter:      '\t',
	}

	if d := []rune(cfg.Load.Delimiter); len(d) == 1 {
		opts.Delimiter = d[0]
	}

	return opts
}

// Tools runs administration operations on one connection.
type Tools struct {
	conn    Conn
	opts    Options
	closers []io.Closer
}

// New wraps an existing connection. The caller keeps ownership of conn.
func New(conn Conn, opts Options) *Tools {
	if opts.AnalysisMode == "" {
		opts.AnalysisMode = mysqltools.AnalysisAuto
	}

	if opts.Rules.MaxEnumValues == 0 && opts.Rules.MaxEnumValueLength == 0 {
		rules := fieldtype.DefaultRules()
		rules.Enums = opts.Rules.Enums
		opts.Rules = rules
	}

	if opts.IDSuffix == "" {
		opts.IDSuffix = "_id"
	}

	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}

	return &Tools{conn: conn, opts: opts}
}

// Conn returns the underlying connection handle.
func (t *Tools) Conn() Conn {
	return t.conn
}

// Close releases the connection when it was opened by Open, OpenDSN or OpenURL.
// It is a no-op for tools created with New.
func (t *Tools) Close() error {
	var errs []error

	for _, c := range t.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	t.closers = nil

	return errors.Join(errs...)
}

func (t *Tools) logf(format string, args ...any) {
	if t.opts.Logger != nil {
		t.opts.Logger(format, args...)
	}
}
