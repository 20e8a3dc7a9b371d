package schemadiff

import (
	"fmt"
	"strings"

	"github.com/shibukawa/mysqltools"
)

// Report renders diff as indented plain text. The header shows the
// comparison as a two level tree, first source on top.
func Report(diff Diff, firstName, secondName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n└── %s\n\n", firstName, secondName)

	if diff.Empty() {
		b.WriteString("No differences found.\n")
		return b.String()
	}

	writeList(&b, fmt.Sprintf("Tables only in %s:", firstName), diff.TablesOnlyInFirst)
	writeList(&b, fmt.Sprintf("Tables only in %s:", secondName), diff.TablesOnlyInSecond)
	writeColumns(&b, fmt.Sprintf("Columns only in %s:", firstName), diff.ColumnsOnlyInFirst)
	writeColumns(&b, fmt.Sprintf("Columns only in %s:", secondName), diff.ColumnsOnlyInSecond)

	if len(diff.Changed) > 0 {
		b.WriteString("Changed columns:\n")

		for _, table := range sortedKeys(diff.Changed) {
			fmt.Fprintf(&b, "  %s\n", table)

			for _, change := range diff.Changed[table] {
				fmt.Fprintf(&b, "    - %s: %s -> %s\n", change.Column, describe(change.First), describe(change.Second))
			}
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d difference(s) found.\n", diff.Count())

	return b.String()
}

func writeList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}

	b.WriteString(title + "\n")

	for _, name := range names {
		fmt.Fprintf(b, "  - %s\n", name)
	}

	b.WriteString("\n")
}

func writeColumns(b *strings.Builder, title string, columns map[string][]string) {
	if len(columns) == 0 {
		return
	}

	b.WriteString(title + "\n")

	for _, table := range sortedKeys(columns) {
		fmt.Fprintf(b, "  %s: %s\n", table, strings.Join(columns[table], ", "))
	}

	b.WriteString("\n")
}

func describe(c mysqltools.Column) string {
	parts := []string{c.Type}

	if !c.Nullable() {
		parts = append(parts, "NOT NULL")
	}

	if c.Key != mysqltools.KeyNone {
		parts = append(parts, string(c.Key))
	}

	if c.Default != nil {
		parts = append(parts, "DEFAULT "+*c.Default)
	}

	if c.Extra != "" {
		parts = append(parts, c.Extra)
	}

	return strings.Join(parts, " ")
}
