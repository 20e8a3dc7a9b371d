package mysqltools

import "errors"

// Errors shared by the mysqltools packages
var (
	// ErrTableNotFound is returned when an operation targets a table that does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound is returned when an operation targets a column that does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrDatabaseNotFound is returned when the server does not know the database.
	ErrDatabaseNotFound = errors.New("database not found")
	// ErrEnvironmentNotFound indicates the requested databases entry is missing from the config.
	ErrEnvironmentNotFound = errors.New("environment not found")
)
