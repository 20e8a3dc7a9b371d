package admin

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/fieldtype"
	"github.com/shibukawa/mysqltools/sqlbuild"
)

// AnalyseOptions tune a single AnalyseTable call.
type AnalyseOptions struct {
	// Enums overrides Options.Rules.Enums when not nil.
	Enums []string
}

// AnalyseTable collects per-column statistics of table together with a
// refined optimal field type. Columns whose suggested enumeration exceeds the
// configured limits are left out of the result.
func (t *Tools) AnalyseTable(ctx context.Context, table string, opts AnalyseOptions) (map[string]mysqltools.AnalysisRecord, error) {
	mode, err := t.analysisMode(ctx)
	if err != nil {
		return nil, err
	}

	var records []mysqltools.AnalysisRecord

	switch mode {
	case mysqltools.AnalysisProcedure:
		records, err = t.analyseByProcedure(ctx, table)
	default:
		records, err = t.analyseByAggregates(ctx, table)
	}

	if err != nil {
		return nil, err
	}

	rules := t.opts.Rules
	if opts.Enums != nil {
		rules.Enums = opts.Enums
	}

	result := make(map[string]mysqltools.AnalysisRecord, len(records))

	for _, rec := range records {
		suggestion, ok := fieldtype.Classify(rec.Field, rec.OptimalFieldType, rules)
		if !ok {
			t.logf("%s.%s: skipped: enumeration exceeds limits", table, rec.Field)
			continue
		}

		rec.OptimalFieldType = suggestion.Type
		result[rec.Field] = rec
	}

	return result, nil
}

func (t *Tools) analysisMode(ctx context.Context) (string, error) {
	if t.opts.AnalysisMode != mysqltools.AnalysisAuto {
		return t.opts.AnalysisMode, nil
	}

	version, err := t.ServerVersion(ctx)
	if err != nil {
		return "", err
	}

	if version.HasProcedureAnalyse() {
		return mysqltools.AnalysisProcedure, nil
	}

	return mysqltools.AnalysisEmulate, nil
}

func (t *Tools) analyseByProcedure(ctx context.Context, table string) ([]mysqltools.AnalysisRecord, error) {
	query, _, err := sqlbuild.New("SELECT * FROM ").Ident(table).Raw(" PROCEDURE ANALYSE()").Build()
	if err != nil {
		return nil, err
	}

	rows, err := t.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []mysqltools.AnalysisRecord

	for rows.Next() {
		var (
			rec                mysqltools.AnalysisRecord
			field, optimal     string
			minLen, maxLen     sql.NullInt64
			empties, nulls     sql.NullInt64
			average, deviation sql.NullString
		)

		if err := rows.Scan(&field, &rec.MinValue, &rec.MaxValue, &minLen, &maxLen,
			&empties, &nulls, &average, &deviation, &optimal); err != nil {
			return nil, fmt.Errorf("scan analysis of %s: %w", table, err)
		}

		rec.Field = analysedColumn(field)
		rec.MinLength = minLen.Int64
		rec.MaxLength = maxLen.Int64
		rec.EmptiesOrZeros = empties.Int64
		rec.Nulls = nulls.Int64
		rec.Average = parseNullDecimal(average)
		rec.Std = parseNullDecimal(deviation)
		rec.OptimalFieldType = optimal

		records = append(records, rec)
	}

	return records, rows.Err()
}

// analysedColumn strips the "db.table." qualifier PROCEDURE ANALYSE puts in
// front of each field name.
func analysedColumn(field string) string {
	return field[strings.LastIndexByte(field, '.')+1:]
}

func parseNullDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s.String))
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

const (
	integerPattern = `^-?[0-9]+$`
	decimalPattern = `^-?[0-9]+(\.[0-9]+)?$`
)

type columnCategory int

const (
	categoryString columnCategory = iota
	categoryNumeric
	categoryOpaque
)

var numericTypes = []string{
	"tinyint", "smallint", "mediumint", "int", "integer", "bigint",
	"decimal", "numeric", "float", "double", "real", "bit",
}

var opaqueTypes = []string{
	"json", "geometry", "point", "linestring", "polygon",
	"multipoint", "multilinestring", "multipolygon", "geometrycollection",
}

func categorize(dataType string) columnCategory {
	dataType = strings.ToLower(dataType)

	switch {
	case slices.Contains(numericTypes, dataType):
		return categoryNumeric
	case slices.Contains(opaqueTypes, dataType):
		return categoryOpaque
	default:
		return categoryString
	}
}

func (t *Tools) analyseByAggregates(ctx context.Context, table string) ([]mysqltools.AnalysisRecord, error) {
	infos, err := t.ColumnsInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	records := make([]mysqltools.AnalysisRecord, 0, len(infos))

	for _, info := range infos {
		rec, stats, err := t.columnStats(ctx, table, info)
		if err != nil {
			return nil, err
		}

		rec.OptimalFieldType = fieldtype.Suggest(stats)
		records = append(records, rec)
	}

	return records, nil
}

// columnStats gathers the figures of one column with a single aggregate query
// plus, for columns with few distinct values, the list of those values.
func (t *Tools) columnStats(ctx context.Context, table string, info mysqltools.InformationSchemaColumn) (mysqltools.AnalysisRecord, fieldtype.Stats, error) {
	column := info.ColumnName
	category := categorize(info.DataType)

	rec := mysqltools.AnalysisRecord{Field: column}
	stats := fieldtype.Stats{DataType: info.DataType, ColumnType: info.ColumnType}

	st := sqlbuild.New("SELECT COUNT(*), COALESCE(SUM(").Ident(column).Raw(" IS NULL), 0), COUNT(DISTINCT ").Ident(column).Raw(")")

	if category == categoryOpaque {
		st.Raw(", NULL, NULL")
	} else {
		st.Raw(", CAST(MIN(").Ident(column).Raw(") AS CHAR), CAST(MAX(").Ident(column).Raw(") AS CHAR)")
	}

	st.Raw(", COALESCE(MIN(CHAR_LENGTH(").Ident(column).Raw(")), 0), COALESCE(MAX(CHAR_LENGTH(").Ident(column).Raw(")), 0)")
	st.Raw(", COALESCE(SUM(CAST(").Ident(column).Raw(" AS CHAR) IN ('', '0')), 0)")

	if category == categoryNumeric {
		st.Raw(", AVG(").Ident(column).Raw("), STD(").Ident(column).Raw(")")
	} else {
		st.Raw(", AVG(CHAR_LENGTH(").Ident(column).Raw(")), STD(CHAR_LENGTH(").Ident(column).Raw("))")
	}

	st.Raw(", COALESCE(SUM(CAST(").Ident(column).Raw(" AS CHAR) REGEXP ").Bind(integerPattern).Raw("), 0)")
	st.Raw(", COALESCE(SUM(CAST(").Ident(column).Raw(" AS CHAR) REGEXP ").Bind(decimalPattern).Raw("), 0)")

	switch category {
	case categoryNumeric:
		st.Raw(", MIN(CAST(").Ident(column).Raw(" AS DECIMAL(65,10))), MAX(CAST(").Ident(column).Raw(" AS DECIMAL(65,10)))")
	case categoryString:
		st.Raw(", MIN(CASE WHEN CAST(").Ident(column).Raw(" AS CHAR) REGEXP ").Bind(decimalPattern).
			Raw(" THEN CAST(").Ident(column).Raw(" AS DECIMAL(65,10)) END)")
		st.Raw(", MAX(CASE WHEN CAST(").Ident(column).Raw(" AS CHAR) REGEXP ").Bind(decimalPattern).
			Raw(" THEN CAST(").Ident(column).Raw(" AS DECIMAL(65,10)) END)")
	default:
		st.Raw(", NULL, NULL")
	}

	st.Raw(" FROM ").Ident(table)

	query, args, err := st.Build()
	if err != nil {
		return rec, stats, err
	}

	var average, deviation decimal.NullDecimal

	err = t.conn.QueryRowContext(ctx, query, args...).Scan(
		&stats.Rows, &stats.Nulls, &stats.Distinct,
		&rec.MinValue, &rec.MaxValue,
		&stats.MinLength, &stats.MaxLength, &rec.EmptiesOrZeros,
		&average, &deviation,
		&stats.IntegerValues, &stats.DecimalValues,
		&stats.NumericMin, &stats.NumericMax)
	if err != nil {
		return rec, stats, &StatementError{Statement: query, Err: classify(err)}
	}

	rec.Nulls = stats.Nulls
	rec.MinLength = stats.MinLength
	rec.MaxLength = stats.MaxLength
	rec.Average = average
	rec.Std = deviation

	if category != categoryOpaque && stats.Distinct > 0 && stats.Distinct <= fieldtype.MaxEnumElements {
		values, err := t.distinctValues(ctx, table, column)
		if err != nil {
			return rec, stats, err
		}

		stats.Values = values
	}

	return rec, stats, nil
}

func (t *Tools) distinctValues(ctx context.Context, table, column string) ([]string, error) {
	query, args, err := sqlbuild.New("SELECT DISTINCT CAST(").Ident(column).Raw(" AS CHAR) FROM ").Ident(table).
		Raw(" WHERE ").Ident(column).Raw(" IS NOT NULL ORDER BY 1 LIMIT ").Bind(fieldtype.MaxEnumElements + 1).Build()
	if err != nil {
		return nil, err
	}

	return t.queryStrings(ctx, query, args...)
}
