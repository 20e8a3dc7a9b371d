// Package sqlbuild assembles MySQL statements from validated identifiers and
// bound parameters.
package sqlbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidTypeClause = errors.New("invalid column type clause")
)

// MySQL limits identifiers to 64 characters.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// ValidIdent checks a table, column, index or database name against the allow-list.
func ValidIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}

	return nil
}

// Ident validates name and returns it backtick-quoted.
func Ident(name string) (string, error) {
	if err := ValidIdent(name); err != nil {
		return "", err
	}

	return "`" + name + "`", nil
}

// QualifiedIdent validates and quotes each part and joins them with dots.
// Empty parts are skipped so that an empty database name yields a bare table.
func QualifiedIdent(parts ...string) (string, error) {
	quoted := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		q, err := Ident(part)
		if err != nil {
			return "", err
		}

		quoted = append(quoted, q)
	}

	if len(quoted) == 0 {
		return "", fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}

	return strings.Join(quoted, "."), nil
}

var forbiddenInTypeClause = []struct {
	token string
	desc  string
}{
	{";", "statement separator"},
	{"--", "comment"},
	{"#", "comment"},
	{"/*", "comment"},
	{"`", "quoted identifier"},
}

// TypeClause checks a column definition such as "varchar(20) NOT NULL DEFAULT ''".
// Type clauses cannot be bound, so quoted literals are allowed but nothing outside
// them may end the statement or open a comment.
func TypeClause(clause string) error {
	if strings.TrimSpace(clause) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTypeClause)
	}

	cleaned, err := removeStrings(clause)
	if err != nil {
		return err
	}

	for _, f := range forbiddenInTypeClause {
		if strings.Contains(cleaned, f.token) {
			return fmt.Errorf("%w: contains %s in %q", ErrInvalidTypeClause, f.desc, clause)
		}
	}

	return nil
}

// removeStrings drops single and double quoted literals, honouring doubled
// quotes and backslash escapes.
func removeStrings(s string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\'' && c != '"' {
			b.WriteByte(c)
			continue
		}

		quote := c
		closed := false

		for i++; i < len(s); i++ {
			switch {
			case s[i] == '\\':
				i++
			case s[i] == quote && i+1 < len(s) && s[i+1] == quote:
				i++
			case s[i] == quote:
				closed = true
			}

			if closed {
				break
			}
		}

		if !closed {
			return "", fmt.Errorf("%w: unterminated string literal in %q", ErrInvalidTypeClause, s)
		}

		b.WriteString("''")
	}

	return b.String(), nil
}
