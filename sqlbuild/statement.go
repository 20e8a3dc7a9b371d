package sqlbuild

import "strings"

// Statement accumulates SQL text and bound arguments. The first validation
// error is kept and reported by Build.
type Statement struct {
	sql  strings.Builder
	args []any
	err  error
}

// New starts a statement with a fixed SQL fragment.
func New(sql string) *Statement {
	s := &Statement{}
	s.sql.WriteString(sql)

	return s
}

// Raw appends a fixed SQL fragment. Never pass caller input here.
func (s *Statement) Raw(sql string) *Statement {
	s.sql.WriteString(sql)
	return s
}

// Ident appends a quoted identifier.
func (s *Statement) Ident(name string) *Statement {
	if s.err != nil {
		return s
	}

	q, err := Ident(name)
	if err != nil {
		s.err = err
		return s
	}

	s.sql.WriteString(q)

	return s
}

// Qualified appends a dotted, quoted identifier such as `db`.`table`.
func (s *Statement) Qualified(parts ...string) *Statement {
	if s.err != nil {
		return s
	}

	q, err := QualifiedIdent(parts...)
	if err != nil {
		s.err = err
		return s
	}

	s.sql.WriteString(q)

	return s
}

// Idents appends a comma separated list of quoted identifiers.
func (s *Statement) Idents(names ...string) *Statement {
	for i, name := range names {
		if i > 0 {
			s.sql.WriteString(", ")
		}

		s.Ident(name)
	}

	return s
}

// Type appends a validated column type clause.
func (s *Statement) Type(clause string) *Statement {
	if s.err != nil {
		return s
	}

	if err := TypeClause(clause); err != nil {
		s.err = err
		return s
	}

	s.sql.WriteString(strings.TrimSpace(clause))

	return s
}

// Bind appends a placeholder for value.
func (s *Statement) Bind(value any) *Statement {
	s.sql.WriteByte('?')
	s.args = append(s.args, value)

	return s
}

// Binds appends a comma separated placeholder list.
func (s *Statement) Binds(values ...any) *Statement {
	for i, v := range values {
		if i > 0 {
			s.sql.WriteString(", ")
		}

		s.Bind(v)
	}

	return s
}

// Build returns the SQL text and its arguments.
func (s *Statement) Build() (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}

	return s.sql.String(), s.args, nil
}

// String returns the SQL text built so far. It is meant for diagnostics.
func (s *Statement) String() string {
	return s.sql.String()
}
