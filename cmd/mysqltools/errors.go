package main

import "errors"

// Sentinel errors for command operations
var (
	ErrNoDatabasesConfigured = errors.New("no databases configured")
	ErrMissingDBOrEnv        = errors.New("either --db or --env must be specified")
	ErrEmptyConnectionString = errors.New("empty connection string")
	ErrInvalidDelimiter      = errors.New("delimiter must be a single character")
	ErrNothingToCompare      = errors.New("give a snapshot file, --against or a prefix")
	ErrNothingToTruncate     = errors.New("give table names, --prefix or --all")
	ErrConfirmationRequired  = errors.New("destructive command requires --yes")
	ErrInvalidAnalysisMode   = errors.New("analysis mode must be auto, procedure or emulate")
)
