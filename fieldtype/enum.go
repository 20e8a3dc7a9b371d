package fieldtype

import (
	"strings"
)

// ParseEnum splits "ENUM('a','b') NOT NULL" into its values and the trailing
// text after the closing parenthesis. Quotes may be doubled or backslash escaped.
func ParseEnum(s string) (values []string, rest string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.EqualFold(strings.TrimSpace(s[:open]), "ENUM") {
		return nil, "", false
	}

	i := open + 1
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}

		if i >= len(s) {
			return nil, "", false
		}

		if s[i] == ')' && len(values) == 0 {
			return values, s[i+1:], true
		}

		if s[i] != '\'' {
			return nil, "", false
		}

		var b strings.Builder

		i++

		closed := false
		for i < len(s) && !closed {
			switch {
			case s[i] == '\\' && i+1 < len(s):
				b.WriteByte(s[i+1])
				i += 2
			case s[i] == '\'' && i+1 < len(s) && s[i+1] == '\'':
				b.WriteByte('\'')
				i += 2
			case s[i] == '\'':
				closed = true
				i++
			default:
				b.WriteByte(s[i])
				i++
			}
		}

		if !closed {
			return nil, "", false
		}

		values = append(values, b.String())

		for i < len(s) && s[i] == ' ' {
			i++
		}

		if i >= len(s) {
			return nil, "", false
		}

		switch s[i] {
		case ',':
			i++
		case ')':
			return values, s[i+1:], true
		default:
			return nil, "", false
		}
	}
}

var enumEscaper = strings.NewReplacer(`\`, `\\`, "'", "''")

// FormatEnum renders values as an ENUM type. Backslashes are escaped and
// single quotes doubled, so ParseEnum gives the values back.
func FormatEnum(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + enumEscaper.Replace(v) + "'"
	}

	return "ENUM(" + strings.Join(quoted, ",") + ")"
}
