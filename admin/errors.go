package admin

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/shibukawa/mysqltools"
)

// Sentinel errors
var (
	// Connection errors
	ErrConnection        = errors.New("connection error")
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// Schema errors
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrDuplicateKey    = errors.New("duplicate key name")

	ErrUnexpectedDefinition = errors.New("unexpected table definition")

	// Bulk load errors
	ErrEmptyInput  = errors.New("input file is empty")
	ErrRowTooLong  = errors.New("row has more fields than columns")
	ErrNoTableName = errors.New("table name cannot be derived")
)

// MySQL server error numbers
const (
	erBadDB         = 1049
	erBadFieldError = 1054
	erDupFieldName  = 1060
	erDupKeyName    = 1061
	erNoSuchTable   = 1146
)

// StatementError carries the statement that failed.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement failed: %s: %v", e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// classify adds a sentinel to well-known server errors so callers can use errors.Is.
func classify(err error) error {
	switch serverErrorNumber(err) {
	case erDupFieldName:
		return fmt.Errorf("%w: %w", ErrDuplicateColumn, err)
	case erDupKeyName:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case erNoSuchTable:
		return fmt.Errorf("%w: %w", mysqltools.ErrTableNotFound, err)
	case erBadFieldError:
		return fmt.Errorf("%w: %w", mysqltools.ErrColumnNotFound, err)
	case erBadDB:
		return fmt.Errorf("%w: %w", mysqltools.ErrDatabaseNotFound, err)
	default:
		return err
	}
}

// serverErrorNumber returns the MySQL error number carried by err, or 0.
func serverErrorNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}

	return 0
}
