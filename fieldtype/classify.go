// Package fieldtype refines the optimal field types suggested by a table analysis.
package fieldtype

import (
	"regexp"
	"slices"
	"strings"
)

// Kind tells how a suggestion was rewritten.
type Kind int

const (
	KindUnchanged Kind = iota
	KindInteger
	KindFloat
	KindTimestamp
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	default:
		return "unchanged"
	}
}

// Rules configures the enumeration handling of Classify.
type Rules struct {
	// Enums restricts enumeration handling to these columns. Empty means all columns.
	Enums []string
	// MaxEnumValues is the exclusive upper bound on the number of enumeration values.
	MaxEnumValues int
	// MaxEnumValueLength is the exclusive upper bound on the length of each value.
	MaxEnumValueLength int
}

// DefaultRules returns the thresholds used by the command line tool.
func DefaultRules() Rules {
	return Rules{MaxEnumValues: 30, MaxEnumValueLength: 100}
}

// Suggestion is a refined optimal field type.
type Suggestion struct {
	Type string
	Kind Kind
}

var (
	integerValue   = regexp.MustCompile(`^-?\d+(e\+\d{2})?$`)
	decimalValue   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	timestampValue = regexp.MustCompile(`^[12]\d{3}-[01]\d-[0-3]\d +[012]\d:[0-5]\d:[0-5]\d(\.\d+)?$`)
	floatWidth     = regexp.MustCompile(`\(\d+,\d+\)`)
)

// Classify rewrites the server suggestion for column. Enumerations of integers,
// decimals and timestamps become INT, FLOAT and DATETIME. The second result is
// false when the column must be left out because its enumeration is too large.
func Classify(column, suggested string, rules Rules) (Suggestion, bool) {
	suggested = strings.TrimSpace(suggested)
	result := Suggestion{Type: suggested, Kind: KindUnchanged}

	if isEnum(suggested) && enumAllowed(column, rules) {
		values, rest, ok := ParseEnum(suggested)
		if !ok {
			return result, true
		}

		if !withinLimits(values, rules) {
			return Suggestion{}, false
		}

		result.Kind = KindEnum

		switch {
		case allMatch(values, integerValue):
			result = Suggestion{Type: join("INT", rest), Kind: KindInteger}
		case allMatch(values, decimalValue) && anyContains(values, "."):
			result = Suggestion{Type: join("FLOAT", rest), Kind: KindFloat}
		case allMatch(values, timestampValue):
			result = Suggestion{Type: join("DATETIME", rest), Kind: KindTimestamp}
		}
	}

	if strings.HasPrefix(strings.ToUpper(result.Type), "FLOAT") {
		result.Type = floatWidth.ReplaceAllString(result.Type, "")
	}

	return result, true
}

func isEnum(suggested string) bool {
	return strings.HasPrefix(strings.ToUpper(suggested), "ENUM(")
}

func enumAllowed(column string, rules Rules) bool {
	return len(rules.Enums) == 0 || slices.Contains(rules.Enums, column)
}

func withinLimits(values []string, rules Rules) bool {
	if rules.MaxEnumValues > 0 && len(values) >= rules.MaxEnumValues {
		return false
	}

	if rules.MaxEnumValueLength > 0 {
		for _, v := range values {
			if len(v) >= rules.MaxEnumValueLength {
				return false
			}
		}
	}

	return true
}

func allMatch(values []string, re *regexp.Regexp) bool {
	if len(values) == 0 {
		return false
	}

	for _, v := range values {
		if !re.MatchString(v) {
			return false
		}
	}

	return true
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(v, sub) {
			return true
		}
	}

	return false
}

func join(typ, rest string) string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return typ
	}

	return typ + " " + rest
}
