package fieldtype

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxEnumElements is the number of distinct values up to which Suggest
// proposes an enumeration.
const MaxEnumElements = 256

// Stats are the aggregate figures of one column, collected when the server has
// no analysis procedure of its own.
type Stats struct {
	DataType   string // information_schema DATA_TYPE
	ColumnType string // information_schema COLUMN_TYPE
	Rows       int64
	Nulls      int64
	Distinct   int64
	MinLength  int64
	MaxLength  int64
	// NumericMin and NumericMax are the extremes after a DECIMAL cast.
	NumericMin decimal.NullDecimal
	NumericMax decimal.NullDecimal
	// IntegerValues and DecimalValues count the non-null values that look like numbers.
	IntegerValues int64
	DecimalValues int64
	// Values holds the distinct values when Distinct <= MaxEnumElements.
	Values []string
}

type intRange struct {
	name     string
	min, max int64
	umax     int64
}

var intRanges = []intRange{
	{"TINYINT", -128, 127, 255},
	{"SMALLINT", -32768, 32767, 65535},
	{"MEDIUMINT", -8388608, 8388607, 16777215},
	{"INT", -2147483648, 2147483647, 4294967295},
}

// Suggest derives an optimal field type in the same notation the server's
// analysis procedure uses, e.g. "ENUM('a','b') NOT NULL" or "TINYINT UNSIGNED".
func Suggest(st Stats) string {
	suffix := ""
	if st.Nulls == 0 && st.Rows > 0 {
		suffix = " NOT NULL"
	}

	nonNull := st.Rows - st.Nulls
	if nonNull <= 0 {
		return "CHAR(0)" + suffix
	}

	dataType := strings.ToLower(st.DataType)

	switch dataType {
	case "date", "datetime", "timestamp", "time", "year",
		"json", "geometry", "point", "linestring", "polygon", "set", "enum":
		return strings.ToUpper(st.ColumnType) + suffix
	}

	if strings.Contains(dataType, "blob") || strings.Contains(dataType, "binary") {
		return strings.ToUpper(st.ColumnType) + suffix
	}

	if len(st.Values) > 0 && st.Distinct <= MaxEnumElements {
		return FormatEnum(st.Values) + suffix
	}

	if st.IntegerValues == nonNull && st.NumericMin.Valid && st.NumericMax.Valid {
		return integerType(st.NumericMin.Decimal, st.NumericMax.Decimal) + suffix
	}

	if st.DecimalValues == nonNull {
		return "FLOAT" + suffix
	}

	return stringType(st.MinLength, st.MaxLength) + suffix
}

func integerType(lo, hi decimal.Decimal) string {
	if !lo.IsNegative() {
		for _, r := range intRanges {
			if hi.LessThanOrEqual(decimal.NewFromInt(r.umax)) {
				return r.name + " UNSIGNED"
			}
		}

		return "BIGINT UNSIGNED"
	}

	for _, r := range intRanges {
		if lo.GreaterThanOrEqual(decimal.NewFromInt(r.min)) && hi.LessThanOrEqual(decimal.NewFromInt(r.max)) {
			return r.name
		}
	}

	return "BIGINT"
}

func stringType(minLength, maxLength int64) string {
	switch {
	case maxLength <= 255 && minLength == maxLength:
		return "CHAR(" + strconv.FormatInt(max(maxLength, 1), 10) + ")"
	case maxLength <= 255:
		return "VARCHAR(" + strconv.FormatInt(maxLength, 10) + ")"
	case maxLength <= 65535:
		return "TEXT"
	case maxLength <= 16777215:
		return "MEDIUMTEXT"
	default:
		return "LONGTEXT"
	}
}
