package mysqltools

import (
	"database/sql"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// KeyRole is the Key column reported by DESCRIBE.
type KeyRole string

const (
	KeyNone    KeyRole = ""
	KeyPrimary KeyRole = "PRI"
	KeyUnique  KeyRole = "UNI"
	KeyIndex   KeyRole = "MUL"
)

// Column is the fixed-key column description stored in schema snapshots.
type Column struct {
	Type    string  `json:"type" yaml:"type"`       // Declared type, e.g. varchar(20)
	Null    string  `json:"null" yaml:"null"`       // YES or NO
	Key     KeyRole `json:"key" yaml:"key"`         // PRI, UNI, MUL or empty
	Default *string `json:"default" yaml:"default"` // nil means SQL NULL
	Extra   string  `json:"extra" yaml:"extra"`     // e.g. auto_increment
}

// Nullable reports whether the column accepts NULL.
func (c Column) Nullable() bool {
	return strings.EqualFold(c.Null, "YES")
}

// IsPrimary reports whether the column belongs to the primary key.
func (c Column) IsPrimary() bool {
	return c.Key == KeyPrimary
}

// HasKey reports whether any index covers the column.
func (c Column) HasKey() bool {
	return c.Key != KeyNone
}

// AutoIncrement reports whether the column is an auto_increment column.
func (c Column) AutoIncrement() bool {
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}

// Equal compares two column descriptions including their defaults.
func (c Column) Equal(other Column) bool {
	if c.Type != other.Type || c.Null != other.Null || c.Key != other.Key || c.Extra != other.Extra {
		return false
	}

	if c.Default == nil || other.Default == nil {
		return c.Default == nil && other.Default == nil
	}

	return *c.Default == *other.Default
}

var typeSize = regexp.MustCompile(`^\s*([A-Za-z ]+?)\s*\(\s*([^)]*)\)`)

// TypeName returns the declared type without its size qualifier ("varchar(20)" gives "varchar").
func (c Column) TypeName() string {
	if m := typeSize.FindStringSubmatch(c.Type); m != nil {
		return strings.ToLower(m[1])
	}

	name, _, _ := strings.Cut(strings.TrimSpace(c.Type), " ")

	return strings.ToLower(name)
}

// TypeSize returns the leading numeric size qualifier of the declared type, or 0.
func (c Column) TypeSize() int {
	m := typeSize.FindStringSubmatch(c.Type)
	if m == nil {
		return 0
	}

	first, _, _ := strings.Cut(m[2], ",")

	size, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0
	}

	return size
}

// ColumnDescriptor is one row of DESCRIBE together with its ordinal position.
type ColumnDescriptor struct {
	Name     string `json:"name" yaml:"name"`
	Position int    `json:"position" yaml:"position"` // 1-based
	Column   `yaml:",inline"`
}

// TableSchema maps column names to their descriptions.
type TableSchema map[string]Column

// ColumnNames returns the column names in lexical order.
func (t TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Snapshot maps table names to their column descriptions for one database.
type Snapshot map[string]TableSchema

// TableNames returns the table names in lexical order.
func (s Snapshot) TableNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// InformationSchemaColumn is a row of information_schema.COLUMNS.
type InformationSchemaColumn struct {
	TableCatalog           string         `json:"tableCatalog"`
	TableSchema            string         `json:"tableSchema"`
	TableName              string         `json:"tableName"`
	ColumnName             string         `json:"columnName"`
	OrdinalPosition        int            `json:"ordinalPosition"`
	ColumnDefault          sql.NullString `json:"columnDefault"`
	IsNullable             string         `json:"isNullable"`
	DataType               string         `json:"dataType"`
	CharacterMaximumLength sql.NullInt64  `json:"characterMaximumLength"`
	CharacterOctetLength   sql.NullInt64  `json:"characterOctetLength"`
	NumericPrecision       sql.NullInt64  `json:"numericPrecision"`
	NumericScale           sql.NullInt64  `json:"numericScale"`
	DatetimePrecision      sql.NullInt64  `json:"datetimePrecision"`
	CharacterSetName       sql.NullString `json:"characterSetName"`
	CollationName          sql.NullString `json:"collationName"`
	ColumnType             string         `json:"columnType"`
	ColumnKey              KeyRole        `json:"columnKey"`
	Extra                  string         `json:"extra"`
	Privileges             string         `json:"privileges"`
	ColumnComment          string         `json:"columnComment"`
}

// AnalysisRecord holds the per-column statistics of a table analysis.
type AnalysisRecord struct {
	Field            string
	MinValue         sql.NullString
	MaxValue         sql.NullString
	MinLength        int64
	MaxLength        int64
	EmptiesOrZeros   int64
	Nulls            int64
	Average          decimal.NullDecimal
	Std              decimal.NullDecimal
	OptimalFieldType string
}
