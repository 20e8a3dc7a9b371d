package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// MakeUnique removes duplicate rows from each table by rebuilding it.
// Tables with a primary key cannot hold duplicates and are skipped, as are
// tables whose rows are already distinct.
//
// The rebuild renames the table to a temporary name, recreates the original
// definition and copies back the distinct rows. DDL statements commit
// implicitly, so the steps are not atomic. When a step after the rename
// fails, the Failed outcome names the temporary table that still holds the
// original rows.
func (t *Tools) MakeUnique(ctx context.Context, tables ...string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(tables))

	for _, table := range tables {
		hasPK, err := t.hasPrimaryKey(ctx, table)
		if err != nil {
			return outcomes, err
		}

		if hasPK {
			outcomes = append(outcomes, t.skipped(table, "table has a primary key"))
			continue
		}

		total, err := t.count(ctx, sqlbuild.New("SELECT COUNT(*) FROM ").Ident(table))
		if err != nil {
			return outcomes, err
		}

		distinct, err := t.count(ctx, sqlbuild.New("SELECT COUNT(*) FROM (SELECT DISTINCT * FROM ").
			Ident(table).Raw(") AS d"))
		if err != nil {
			return outcomes, err
		}

		if total == distinct {
			outcomes = append(outcomes, t.skipped(table, "rows are already unique"))
			continue
		}

		outcomes = append(outcomes, t.rebuildDistinct(ctx, table))
	}

	return outcomes, nil
}

func (t *Tools) rebuildDistinct(ctx context.Context, table string) Outcome {
	create, err := t.ShowCreateTable(ctx, table)
	if err != nil {
		return t.failed(table, "SHOW CREATE TABLE", err)
	}

	tmp := temporaryName()

	if _, query, err := t.exec(ctx, sqlbuild.New("RENAME TABLE ").Ident(table).Raw(" TO ").Ident(tmp)); err != nil {
		return t.failed(table, query, err)
	}

	if _, err := t.conn.ExecContext(ctx, create); err != nil {
		return t.failedRebuild(table, tmp, create, classify(err))
	}

	steps := []*sqlbuild.Statement{
		sqlbuild.New("INSERT INTO ").Ident(table).Raw(" SELECT DISTINCT * FROM ").Ident(tmp),
		sqlbuild.New("DROP TABLE ").Ident(tmp),
	}

	for _, st := range steps {
		if _, query, err := t.exec(ctx, st); err != nil {
			return t.failedRebuild(table, tmp, query, err)
		}
	}

	outcome := t.applied(table, "SELECT DISTINCT * FROM "+tmp)
	outcome.Reason = "rebuilt through " + tmp

	return outcome
}

func (t *Tools) failedRebuild(table, tmp, statement string, err error) Outcome {
	outcome := t.failed(table, statement, err)
	outcome.Reason = fmt.Sprintf("original rows remain in %s", tmp)
	t.logf("%s: failed: %s", table, outcome.Reason)

	return outcome
}

func temporaryName() string {
	return "tmp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
