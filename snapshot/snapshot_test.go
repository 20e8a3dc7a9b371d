package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/mysqltools"
)

func sampleSnapshot() mysqltools.Snapshot {
	state := "new"
	empty := ""

	return mysqltools.Snapshot{
		"users": {
			"id":    {Type: "int", Null: "NO", Key: mysqltools.KeyPrimary, Extra: "auto_increment"},
			"email": {Type: "varchar(255)", Null: "NO", Key: mysqltools.KeyUnique},
			"state": {Type: "varchar(10)", Null: "NO", Default: &state},
			"note":  {Type: "text", Null: "YES", Default: &empty},
		},
		"orders": {
			"order_id": {Type: "bigint unsigned", Null: "NO", Key: mysqltools.KeyPrimary},
			"user_id":  {Type: "int", Null: "YES", Key: mysqltools.KeyIndex},
		},
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.FixedZone("JST", 9*60*60))
	assert.Equal(t, "shop_Mon_04_Mar_2024_22_08_09.yaml", FileName("shop", now))
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	now := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	path, err := Write(dir, File{Database: "shop", TakenAt: now, Tables: sampleSnapshot()})
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shop_Tue_02_Jan_2024_03_04_05.yaml"), path)

	file, err := Read(path)
	assert.NoError(t, err)
	assert.Equal(t, "shop", file.Database)
	assert.True(t, now.Equal(file.TakenAt))
	assert.Equal(t, sampleSnapshot(), file.Tables)
}

func TestWriteUsesFixedKeys(t *testing.T) {
	var b strings.Builder

	err := Encode(&b, File{Database: "shop", Tables: mysqltools.Snapshot{
		"users": {"id": {Type: "int", Null: "NO", Key: mysqltools.KeyPrimary}},
	}})
	assert.NoError(t, err)

	var doc struct {
		Tables map[string]map[string]map[string]any `yaml:"tables"`
	}

	assert.NoError(t, yaml.Unmarshal([]byte(b.String()), &doc))

	column := doc.Tables["users"]["id"]
	assert.Equal(t, map[string]any{
		"type":    "int",
		"null":    "NO",
		"key":     "PRI",
		"default": nil,
		"extra":   "",
	}, column)
}

func TestReadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.IsError(t, err, ErrSnapshotRead)
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		assert.NoError(t, os.WriteFile(path, []byte("tables: [unclosed"), 0o600))

		_, err := Read(path)
		assert.IsError(t, err, ErrSnapshotRead)
	})
}

func TestImportTbls(t *testing.T) {
	file, err := ImportTbls(filepath.Join("testdata", "shop_tbls.json"))
	assert.NoError(t, err)

	assert.Equal(t, "shop", file.Database)
	assert.Equal(t, []string{"users"}, file.Tables.TableNames())

	users := file.Tables["users"]
	assert.Equal(t, mysqltools.KeyPrimary, users["id"].Key)
	assert.Equal(t, "auto_increment", users["id"].Extra)
	assert.Equal(t, mysqltools.KeyUnique, users["email"].Key)
	assert.Equal(t, mysqltools.KeyIndex, users["team_id"].Key)
	assert.True(t, users["team_id"].Nullable())
	assert.Equal(t, "new", *users["state"].Default)
	assert.Zero(t, users["email"].Default)
}

func TestDecodeTblsRejectsOtherDrivers(t *testing.T) {
	_, err := DecodeTbls(strings.NewReader(`{"name":"app","tables":[],"driver":{"name":"postgres"}}`))
	assert.IsError(t, err, ErrSnapshotRead)
}
