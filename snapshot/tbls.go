package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	tblsschema "github.com/k1LoW/tbls/schema"

	"github.com/shibukawa/mysqltools"
)

// ImportTbls reads a tbls schema.json document and converts its base tables
// into a snapshot so that it can be compared like one written by Write.
func ImportTbls(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotRead, err)
	}
	defer f.Close()

	return DecodeTbls(f)
}

// DecodeTbls converts a tbls schema.json stream.
func DecodeTbls(r io.Reader) (*File, error) {
	var schema tblsschema.Schema
	if err := json.NewDecoder(r).Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: decode tbls schema: %w", ErrSnapshotRead, err)
	}

	if schema.Driver != nil && schema.Driver.Name != "" && !strings.EqualFold(schema.Driver.Name, "mysql") {
		return nil, fmt.Errorf("%w: tbls schema was taken from %s, not mysql", ErrSnapshotRead, schema.Driver.Name)
	}

	file := &File{Database: schema.Name, Tables: mysqltools.Snapshot{}}

	for _, tbl := range schema.Tables {
		if tbl == nil || !strings.EqualFold(tbl.Type, "BASE TABLE") {
			continue
		}

		name := tbl.Name
		if _, rest, ok := strings.Cut(name, "."); ok {
			name = rest
		}

		file.Tables[name] = convertTable(tbl)
	}

	return file, nil
}

func convertTable(tbl *tblsschema.Table) mysqltools.TableSchema {
	keys := keyRoles(tbl)
	columns := make(mysqltools.TableSchema, len(tbl.Columns))

	for _, col := range tbl.Columns {
		if col == nil {
			continue
		}

		c := mysqltools.Column{
			Type:  col.Type,
			Null:  "NO",
			Key:   keys[strings.ToLower(col.Name)],
			Extra: strings.TrimSpace(col.ExtraDef),
		}

		if col.Nullable {
			c.Null = "YES"
		}

		if col.PK {
			c.Key = mysqltools.KeyPrimary
		}

		if col.Default.Valid {
			d := col.Default.String
			c.Default = &d
		}

		columns[col.Name] = c
	}

	return columns
}

// keyRoles derives the DESCRIBE Key value of each column from constraints and
// indexes. Like DESCRIBE, only the first column of an index gets a role.
func keyRoles(tbl *tblsschema.Table) map[string]mysqltools.KeyRole {
	roles := map[string]mysqltools.KeyRole{}

	assign := func(column string, role mysqltools.KeyRole) {
		column = strings.ToLower(column)
		if rank(role) > rank(roles[column]) {
			roles[column] = role
		}
	}

	for _, c := range tbl.Constraints {
		if c == nil || len(c.Columns) == 0 {
			continue
		}

		if strings.EqualFold(c.Type, "PRIMARY KEY") {
			for _, col := range c.Columns {
				assign(col, mysqltools.KeyPrimary)
			}
		}
	}

	for _, idx := range tbl.Indexes {
		if idx == nil || len(idx.Columns) == 0 {
			continue
		}

		def := strings.ToUpper(idx.Def)

		switch {
		case strings.Contains(def, "PRIMARY"):
			assign(idx.Columns[0], mysqltools.KeyPrimary)
		case strings.Contains(def, "UNIQUE") && len(idx.Columns) == 1:
			assign(idx.Columns[0], mysqltools.KeyUnique)
		default:
			assign(idx.Columns[0], mysqltools.KeyIndex)
		}
	}

	return roles
}

func rank(role mysqltools.KeyRole) int {
	switch role {
	case mysqltools.KeyPrimary:
		return 3
	case mysqltools.KeyUnique:
		return 2
	case mysqltools.KeyIndex:
		return 1
	default:
		return 0
	}
}
