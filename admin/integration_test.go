package admin

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/mysqltools"
	"github.com/shibukawa/mysqltools/testhelper"
)

const testDatabase = "test_pymysql_tools"

func openTestTools(t *testing.T) *Tools {
	t.Helper()

	dsn := testhelper.StartMySQL(t, testDatabase)

	tools, err := OpenURL(t.Context(), dsn, Options{
		AnalysisMode: mysqltools.AnalysisEmulate,
		Logger:       t.Logf,
	})
	assert.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, tools.Close())
	})

	return tools
}

func mustExec(t *testing.T, tools *Tools, statements ...string) {
	t.Helper()

	for _, stmt := range statements {
		_, err := tools.Conn().ExecContext(t.Context(), stmt)
		assert.NoError(t, err, stmt)
	}
}

func TestToolsIntegration(t *testing.T) {
	tools := openTestTools(t)

	t.Run("Identity", func(t *testing.T) {
		ctx := t.Context()

		name, err := tools.DatabaseName(ctx)
		assert.NoError(t, err)
		assert.Equal(t, testDatabase, name)

		user, err := tools.User(ctx)
		assert.NoError(t, err)
		assert.Equal(t, testhelper.MySQLUser, user)

		host, err := tools.Hostname(ctx)
		assert.NoError(t, err)
		assert.NotEqual(t, "", host)

		exists, err := tools.DatabaseExists(ctx, "TEST_PYMYSQL_TOOLS")
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = tools.DatabaseExists(ctx, "no_such_database")
		assert.NoError(t, err)
		assert.False(t, exists)

		version, err := tools.ServerVersion(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 8, version.Major)
		assert.False(t, version.HasProcedureAnalyse())
	})

	t.Run("TableLifecycle", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools, "CREATE TABLE lifecycle (id INT)")

		exists, err := tools.TableExists(ctx, "lifecycle")
		assert.NoError(t, err)
		assert.True(t, exists)

		dropped, err := tools.DropTable(ctx, "lifecycle")
		assert.NoError(t, err)
		assert.True(t, dropped)

		exists, err = tools.TableExists(ctx, "lifecycle")
		assert.NoError(t, err)
		assert.False(t, exists)

		dropped, err = tools.DropTable(ctx, "lifecycle")
		assert.NoError(t, err)
		assert.False(t, dropped)

		mustExec(t, tools, "CREATE TABLE lifecycle_a (id INT)", "CREATE TABLE lifecycle_b (id INT)")

		names, err := tools.DropTables(ctx, "lifecycle_a", "lifecycle_missing", "lifecycle_b")
		assert.NoError(t, err)
		assert.Equal(t, []string{"lifecycle_a", "lifecycle_b"}, names)

		_, err = tools.Describe(ctx, "lifecycle_a")
		assert.IsError(t, err, mysqltools.ErrTableNotFound)
	})

	t.Run("Enumeration", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools,
			`CREATE TABLE members (
				id INT AUTO_INCREMENT PRIMARY KEY,
				email VARCHAR(100) NOT NULL,
				nickname VARCHAR(30) NULL DEFAULT 'anon'
			)`,
			"CREATE VIEW active_members AS SELECT id, email FROM members",
		)

		tables, err := tools.TableNames(ctx)
		assert.NoError(t, err)
		assert.True(t, slices.Contains(tables, "members"))
		assert.False(t, slices.Contains(tables, "active_members"))

		views, err := tools.ViewNames(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"active_members"}, views)

		isView, err := tools.ViewExists(ctx, "active_members")
		assert.NoError(t, err)
		assert.True(t, isView)

		columns, err := tools.ColumnNames(ctx, "members")
		assert.NoError(t, err)
		assert.Equal(t, []string{"id", "email", "nickname"}, columns)

		nullable, err := tools.NullableColumns(ctx, "members")
		assert.NoError(t, err)
		assert.Equal(t, []string{"nickname"}, nullable)

		schema, err := tools.TableSchema(ctx, "members")
		assert.NoError(t, err)
		assert.Equal(t, mysqltools.KeyPrimary, schema["id"].Key)
		assert.True(t, schema["id"].AutoIncrement())
		assert.Equal(t, "varchar(30)", schema["nickname"].Type)
		assert.Equal(t, "anon", *schema["nickname"].Default)

		pk, ok, err := tools.PrimaryKey(ctx, "members")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "id", pk)

		dataType, err := tools.ColumnType(ctx, "members", "email")
		assert.NoError(t, err)
		assert.Equal(t, "varchar", dataType)

		info, err := tools.ColumnInfo(ctx, "members", "email")
		assert.NoError(t, err)
		assert.Equal(t, testDatabase, info.TableSchema)
		assert.Equal(t, int64(100), info.CharacterMaximumLength.Int64)

		_, err = tools.ColumnInfo(ctx, "members", "missing")
		assert.IsError(t, err, mysqltools.ErrColumnNotFound)

		exists, err := tools.ColumnExists(ctx, "members", "nickname")
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = tools.ColumnExists(ctx, "no_such_table", "nickname")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("UniqueIndexTwice", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools, `CREATE TABLE accounts (
			id INT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(100),
			name VARCHAR(50),
			team_id INT,
			bio TEXT
		)`)

		first, err := tools.CreateUniqueIndex(ctx, "accounts", "email")
		assert.NoError(t, err)
		assert.Equal(t, Applied, first.Status)

		second, err := tools.CreateUniqueIndex(ctx, "accounts", "email")
		assert.NoError(t, err)
		assert.Equal(t, Skipped, second.Status)
		assert.Contains(t, second.Reason, "already exists")

		indexes, err := tools.Indexes(ctx, "accounts")
		assert.NoError(t, err)

		count := 0

		for _, idx := range indexes {
			if idx.Name == "email" {
				count++

				assert.True(t, idx.Unique)
				assert.Equal(t, []string{"email"}, idx.Columns)
			}
		}

		assert.Equal(t, 1, count)
	})

	t.Run("IndexManagement", func(t *testing.T) {
		ctx := t.Context()

		outcomes, err := tools.CreateIndex(ctx, "accounts", "email", "name", "missing", "bio")
		assert.NoError(t, err)
		assert.Equal(t, 4, len(outcomes))
		assert.Equal(t, Skipped, outcomes[0].Status)
		assert.Equal(t, Applied, outcomes[1].Status)
		assert.Equal(t, Skipped, outcomes[2].Status)
		assert.Equal(t, Applied, outcomes[3].Status)
		assert.Contains(t, outcomes[3].Statement, "FULLTEXT")

		suffixed, err := tools.IndexColumnsEndingWith(ctx, []string{"accounts"}, "_id")
		assert.NoError(t, err)
		assert.Equal(t, 1, len(suffixed))
		assert.Equal(t, "accounts.team_id", suffixed[0].Target)
		assert.Equal(t, Applied, suffixed[0].Status)

		dropped, err := tools.DropAllIndices(ctx, "accounts")
		assert.NoError(t, err)
		slices.Sort(dropped)
		assert.Equal(t, []string{"bio", "email", "name", "team_id"}, dropped)

		indexes, err := tools.Indexes(ctx, "accounts")
		assert.NoError(t, err)
		assert.Equal(t, 1, len(indexes))
		assert.True(t, indexes[0].Primary())

		_, err = tools.CreateIndex(ctx, "accounts", "name")
		assert.NoError(t, err)

		outcomes, err = tools.DropIndices(ctx, []string{"accounts"}, false)
		assert.NoError(t, err)
		assert.Equal(t, Summary{Applied: 1, Skipped: 1}, Summarize(outcomes))

		outcomes, err = tools.DropIndices(ctx, []string{"accounts"}, true)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(outcomes))
		assert.Equal(t, "index on auto_increment column", outcomes[0].Reason)
	})

	t.Run("EmptyStringsToNull", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools,
			"CREATE TABLE notes (id INT, body VARCHAR(20) NULL, title VARCHAR(20) NOT NULL)",
			`INSERT INTO notes VALUES (1, '', 'a'), (2, '   ', 'b'), (3, 'x', '  c\r\n'), (4, NULL, 'd'), (5, 'y', 'e \r\n')`,
		)

		changed, err := tools.EmptyStringsToNull(ctx, "notes")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), changed["body"])
		assert.Equal(t, int64(0), changed["id"])

		_, ok := changed["title"]
		assert.False(t, ok)

		var nulls int

		err = tools.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE body IS NULL").Scan(&nulls)
		assert.NoError(t, err)
		assert.Equal(t, 3, nulls)

		trimmed, err := tools.TrimAll(ctx, "notes", "title")
		assert.NoError(t, err)
		assert.Equal(t, map[string]int64{"title": 2}, trimmed)

		for id, want := range map[int]string{3: "c", 5: "e"} {
			var title string

			err = tools.Conn().QueryRowContext(ctx, "SELECT title FROM notes WHERE id = ?", id).Scan(&title)
			assert.NoError(t, err)
			assert.Equal(t, want, title)
		}

		promoted, err := tools.ChangeColumnsToNotNull(ctx, "notes")
		assert.NoError(t, err)
		assert.Equal(t, []string{"id"}, promoted)

		nullable, err := tools.NullableColumns(ctx, "notes")
		assert.NoError(t, err)
		assert.Equal(t, []string{"body"}, nullable)
	})

	t.Run("SnapshotRoundTrip", func(t *testing.T) {
		ctx := t.Context()
		dir := t.TempDir()

		path, err := tools.SaveSnapshot(ctx, dir, time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, testDatabase+"_Mon_04_Mar_2024_05_06_07.yaml"), path)

		report, diff, err := tools.CompareWithSnapshotFile(ctx, path)
		assert.NoError(t, err)
		assert.True(t, diff.Empty())
		assert.Contains(t, report, "No differences found.")

		_, err = tools.AddColumn(ctx, "notes", "extra_note", "VARCHAR(10) NULL")
		assert.NoError(t, err)

		report, diff, err = tools.CompareWithSnapshotFile(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, []string{"extra_note"}, diff.ColumnsOnlyInFirst["notes"])
		assert.Contains(t, report, "1 difference(s) found.")

		assert.NoError(t, tools.DropColumns(ctx, "notes", "extra_note"))
	})

	t.Run("PrefixCompare", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools,
			"CREATE TABLE foo_users (id INT NOT NULL, name VARCHAR(10))",
			"CREATE TABLE bar_users (id INT NOT NULL, name VARCHAR(10))",
		)

		diff, err := tools.CompareWith(ctx, tools, "foo_", "bar_")
		assert.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("StructuralMutation", func(t *testing.T) {
		ctx := t.Context()

		outcome, err := tools.AddColumn(ctx, "foo_users", "name", "varchar(20)")
		assert.NoError(t, err)
		assert.Equal(t, Skipped, outcome.Status)
		assert.Equal(t, "column already exists", outcome.Reason)

		outcome, err = tools.AddColumn(ctx, "foo_users", "age", "INT NOT NULL DEFAULT 0")
		assert.NoError(t, err)
		assert.Equal(t, Applied, outcome.Status)

		_, err = tools.AddColumn(ctx, "foo_users", "evil", "INT; DROP TABLE foo_users")
		assert.Error(t, err)

		assert.NoError(t, tools.DropColumns(ctx, "foo_users", "age"))

		assert.NoError(t, tools.CopyTableStructure(ctx, "foo_users", "copy_users"))

		columns, err := tools.ColumnNames(ctx, "copy_users")
		assert.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, columns)

		assert.NoError(t, tools.AddPrimaryKey(ctx, "copy_users", "copy_id"))

		pk, ok, err := tools.PrimaryKey(ctx, "copy_users")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "copy_id", pk)

		err = tools.AddPrimaryKey(ctx, "copy_users", "copy_id")
		assert.IsError(t, err, ErrDuplicateColumn)

		assert.NoError(t, tools.RenameTable(ctx, "copy_users", "renamed_users"))

		exists, err := tools.TableExists(ctx, "renamed_users")
		assert.NoError(t, err)
		assert.True(t, exists)

		create, err := tools.ShowCreateTable(ctx, "renamed_users")
		assert.NoError(t, err)
		assert.Contains(t, create, "PRIMARY KEY (`copy_id`)")
	})

	t.Run("Duplicates", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools,
			"CREATE TABLE visits (visits_id INT, page VARCHAR(20), last_change TIMESTAMP NULL)",
			"INSERT INTO visits VALUES (1, 'a', NOW()), (2, 'a', NULL), (3, 'b', NULL)",
			"CREATE TABLE hits (page VARCHAR(20), n INT)",
			"INSERT INTO hits VALUES ('a', 1), ('a', 1), ('b', 2), ('a', 1)",
		)

		found, err := tools.FindDuplicates(ctx, "visits", "hits", "members")
		assert.NoError(t, err)
		assert.Equal(t, map[string]int64{"visits": 1, "hits": 2}, found)

		outcomes, err := tools.MakeUnique(ctx, "visits", "hits", "members")
		assert.NoError(t, err)
		assert.Equal(t, 3, len(outcomes))
		assert.Equal(t, "rows are already unique", outcomes[0].Reason)
		assert.Equal(t, Applied, outcomes[1].Status)
		assert.Equal(t, "table has a primary key", outcomes[2].Reason)

		var rows int

		err = tools.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM hits").Scan(&rows)
		assert.NoError(t, err)
		assert.Equal(t, 2, rows)

		tables, err := tools.TableNames(ctx)
		assert.NoError(t, err)

		for _, table := range tables {
			assert.False(t, strings.HasPrefix(table, "tmp_"), table)
		}
	})

	t.Run("AnalyseAndOptimize", func(t *testing.T) {
		ctx := t.Context()

		mustExec(t, tools,
			`CREATE TABLE metrics (
				id INT AUTO_INCREMENT PRIMARY KEY,
				code VARCHAR(20),
				amount VARCHAR(20),
				happened VARCHAR(30),
				label VARCHAR(40)
			)`,
			`INSERT INTO metrics (code, amount, happened, label) VALUES
				('1', '1.5', '2020-01-01 00:00:00', 'alpha'),
				('2', '2.5', '2021-06-30 12:34:56', 'beta'),
				('3', '1.5', '2020-01-01 00:00:00', 'alpha')`,
			"CREATE TABLE wide (v VARCHAR(10))",
			"CREATE TABLE empty_metrics (code VARCHAR(20))",
		)

		for i := range 40 {
			mustExec(t, tools, "INSERT INTO wide VALUES ('v"+strings.Repeat("x", i)+"')")
		}

		records, err := tools.AnalyseTable(ctx, "metrics", AnalyseOptions{})
		assert.NoError(t, err)
		assert.Equal(t, "INT NOT NULL", records["code"].OptimalFieldType)
		assert.Equal(t, "FLOAT NOT NULL", records["amount"].OptimalFieldType)
		assert.Equal(t, "DATETIME NOT NULL", records["happened"].OptimalFieldType)
		assert.Equal(t, "ENUM('alpha','beta') NOT NULL", records["label"].OptimalFieldType)
		assert.Equal(t, int64(0), records["code"].Nulls)
		assert.Equal(t, int64(1), records["code"].MinLength)
		assert.Equal(t, "1", records["code"].MinValue.String)
		assert.Equal(t, "3", records["code"].MaxValue.String)

		restricted, err := tools.AnalyseTable(ctx, "metrics", AnalyseOptions{Enums: []string{"code"}})
		assert.NoError(t, err)
		assert.Equal(t, "ENUM('1.5','2.5') NOT NULL", restricted["amount"].OptimalFieldType)

		wide, err := tools.AnalyseTable(ctx, "wide", AnalyseOptions{})
		assert.NoError(t, err)

		_, ok := wide["v"]
		assert.False(t, ok)

		changes, err := tools.OptimizeDataTypes(ctx, []string{"metrics", "empty_metrics"}, OptimizeOptions{Execute: true})
		assert.NoError(t, err)
		assert.Equal(t, 4, len(changes))

		for _, change := range changes {
			assert.Equal(t, "metrics", change.Table)
			assert.True(t, change.Applied)
			assert.NotEqual(t, "id", change.Column)
		}

		for column, want := range map[string]string{"code": "int", "amount": "float", "happened": "datetime", "label": "enum"} {
			got, err := tools.ColumnType(ctx, "metrics", column)
			assert.NoError(t, err)
			assert.Equal(t, want, got, column)
		}
	})

	t.Run("LoadDelimitedFile", func(t *testing.T) {
		ctx := t.Context()

		path := filepath.Join(t.TempDir(), "people.tsv")
		assert.NoError(t, os.WriteFile(path, []byte("alice\t30\nbob\n"), 0o600))

		n, err := tools.LoadDelimitedFile(ctx, path, LoadOptions{})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)

		columns, err := tools.ColumnNames(ctx, "people")
		assert.NoError(t, err)
		assert.Equal(t, []string{"column_0", "column_1"}, columns)

		var padded int

		err = tools.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM people WHERE column_1 = ''").Scan(&padded)
		assert.NoError(t, err)
		assert.Equal(t, 1, padded)

		csvPath := filepath.Join(t.TempDir(), "scores.csv")
		assert.NoError(t, os.WriteFile(csvPath, []byte("player,score\nann,10\nben,12\n"), 0o600))

		n, err = tools.LoadDelimitedFile(ctx, csvPath, LoadOptions{Delimiter: ',', FirstLineColumns: true, Table: "score_board"})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)

		schema, err := tools.TableSchema(ctx, "score_board")
		assert.NoError(t, err)
		assert.Equal(t, []string{"player", "score"}, schema.ColumnNames())
		assert.Equal(t, "text", schema["score"].Type)
		assert.False(t, schema["score"].Nullable())
	})

	t.Run("Truncate", func(t *testing.T) {
		ctx := t.Context()

		truncated, err := tools.TruncateAllTables(ctx, "score_")
		assert.NoError(t, err)
		assert.Equal(t, []string{"score_board"}, truncated)

		filled, err := tools.hasRows(ctx, "score_board")
		assert.NoError(t, err)
		assert.False(t, filled)

		assert.NoError(t, tools.TruncateTable(ctx, "people", false))

		_, err = tools.TruncateTables(ctx, "no_such_table")
		assert.IsError(t, err, mysqltools.ErrTableNotFound)
	})

	t.Run("DropCreateDatabase", func(t *testing.T) {
		ctx := t.Context()

		assert.NoError(t, tools.DropCreateDatabase(ctx, "scratch_db"))

		name, err := tools.DatabaseName(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "scratch_db", name)

		tables, err := tools.TableNames(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(tables))

		assert.NoError(t, tools.UseDatabase(ctx, testDatabase))

		err = tools.UseDatabase(ctx, "no_such_database")
		assert.IsError(t, err, mysqltools.ErrDatabaseNotFound)
	})
}

func TestAnalyseByProcedure(t *testing.T) {
	dsn := testhelper.StartMySQLImage(t, "mysql:5.7", testDatabase)

	tools, err := OpenURL(t.Context(), dsn, Options{
		AnalysisMode: mysqltools.AnalysisAuto,
		Logger:       t.Logf,
	})
	assert.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, tools.Close())
	})

	ctx := t.Context()

	mode, err := tools.analysisMode(ctx)
	assert.NoError(t, err)
	assert.Equal(t, mysqltools.AnalysisProcedure, mode)

	mustExec(t, tools,
		"CREATE TABLE metrics (code VARCHAR(10), amount VARCHAR(10), label VARCHAR(20))",
		"INSERT INTO metrics VALUES ('1', '1.5', 'alpha'), ('2', '2.5', 'beta'), ('3', '1.5', 'alpha')",
	)

	records, err := tools.AnalyseTable(ctx, "metrics", AnalyseOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(records))

	for column, rec := range records {
		assert.Equal(t, column, rec.Field)
		assert.False(t, strings.Contains(column, "."), column)
	}

	assert.Equal(t, "INT NOT NULL", records["code"].OptimalFieldType)
	assert.Equal(t, "FLOAT NOT NULL", records["amount"].OptimalFieldType)
	assert.Equal(t, "ENUM('alpha','beta') NOT NULL", records["label"].OptimalFieldType)
	assert.Equal(t, "1", records["code"].MinValue.String)
	assert.Equal(t, "3", records["code"].MaxValue.String)
	assert.Equal(t, int64(0), records["label"].Nulls)
}
