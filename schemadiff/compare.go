// Package schemadiff compares schema snapshots table by table and column by column.
package schemadiff

import (
	"slices"
	"strings"

	"github.com/shibukawa/mysqltools"
)

// ColumnChange is a column present on both sides with different descriptions.
type ColumnChange struct {
	Column string
	First  mysqltools.Column
	Second mysqltools.Column
}

// Diff is the result of Compare. Table names are reported without their prefix.
type Diff struct {
	TablesOnlyInFirst   []string
	TablesOnlyInSecond  []string
	ColumnsOnlyInFirst  map[string][]string
	ColumnsOnlyInSecond map[string][]string
	Changed             map[string][]ColumnChange
}

// Empty reports whether both sides describe the same tables and columns.
func (d Diff) Empty() bool {
	return d.Count() == 0
}

// Count returns the number of reported differences.
func (d Diff) Count() int {
	n := len(d.TablesOnlyInFirst) + len(d.TablesOnlyInSecond)

	for _, cols := range d.ColumnsOnlyInFirst {
		n += len(cols)
	}

	for _, cols := range d.ColumnsOnlyInSecond {
		n += len(cols)
	}

	for _, changes := range d.Changed {
		n += len(changes)
	}

	return n
}

// Compare strips prefixFirst from the table names of first and prefixSecond
// from those of second, then compares the results. Tables that do not carry
// the prefix are ignored.
func Compare(first, second mysqltools.Snapshot, prefixFirst, prefixSecond string) Diff {
	a := StripPrefix(first, prefixFirst)
	b := StripPrefix(second, prefixSecond)

	diff := Diff{
		ColumnsOnlyInFirst:  map[string][]string{},
		ColumnsOnlyInSecond: map[string][]string{},
		Changed:             map[string][]ColumnChange{},
	}

	for _, table := range a.TableNames() {
		other, ok := b[table]
		if !ok {
			diff.TablesOnlyInFirst = append(diff.TablesOnlyInFirst, table)
			continue
		}

		columns := a[table]
		for _, name := range columns.ColumnNames() {
			col := columns[name]

			otherCol, ok := other[name]
			if !ok {
				diff.ColumnsOnlyInFirst[table] = append(diff.ColumnsOnlyInFirst[table], name)
				continue
			}

			if !col.Equal(otherCol) {
				diff.Changed[table] = append(diff.Changed[table], ColumnChange{Column: name, First: col, Second: otherCol})
			}
		}

		for _, name := range other.ColumnNames() {
			if _, ok := columns[name]; !ok {
				diff.ColumnsOnlyInSecond[table] = append(diff.ColumnsOnlyInSecond[table], name)
			}
		}
	}

	for _, table := range b.TableNames() {
		if _, ok := a[table]; !ok {
			diff.TablesOnlyInSecond = append(diff.TablesOnlyInSecond, table)
		}
	}

	return diff
}

// StripPrefix returns the tables of snap whose names start with prefix, keyed
// by the remainder of their names.
func StripPrefix(snap mysqltools.Snapshot, prefix string) mysqltools.Snapshot {
	if prefix == "" {
		return snap
	}

	stripped := make(mysqltools.Snapshot, len(snap))

	for name, table := range snap {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}

		stripped[rest] = table
	}

	return stripped
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
