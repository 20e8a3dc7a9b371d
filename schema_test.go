package mysqltools

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestColumnType(t *testing.T) {
	tests := []struct {
		typ  string
		name string
		size int
	}{
		{typ: "varchar(20)", name: "varchar", size: 20},
		{typ: "INT(10) UNSIGNED", name: "int", size: 10},
		{typ: "decimal(10,2)", name: "decimal", size: 10},
		{typ: "int unsigned", name: "int", size: 0},
		{typ: "longtext", name: "longtext", size: 0},
		{typ: "enum('a','b')", name: "enum", size: 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := Column{Type: tt.typ}
			assert.Equal(t, tt.name, c.TypeName())
			assert.Equal(t, tt.size, c.TypeSize())
		})
	}
}

func TestColumnEqual(t *testing.T) {
	zero := "0"
	otherZero := "0"
	one := "1"

	base := Column{Type: "int", Null: "YES", Default: &zero}

	assert.True(t, base.Equal(Column{Type: "int", Null: "YES", Default: &otherZero}))
	assert.False(t, base.Equal(Column{Type: "int", Null: "YES", Default: &one}))
	assert.False(t, base.Equal(Column{Type: "int", Null: "YES"}))
	assert.False(t, base.Equal(Column{Type: "bigint", Null: "YES", Default: &zero}))
	assert.True(t, Column{Type: "text"}.Equal(Column{Type: "text"}))
}

func TestColumnRoles(t *testing.T) {
	id := Column{Type: "int", Null: "NO", Key: KeyPrimary, Extra: "auto_increment"}
	assert.True(t, id.IsPrimary())
	assert.True(t, id.HasKey())
	assert.True(t, id.AutoIncrement())
	assert.False(t, id.Nullable())

	memo := Column{Type: "text", Null: "YES"}
	assert.False(t, memo.HasKey())
	assert.True(t, memo.Nullable())
}

func TestSortedNames(t *testing.T) {
	s := Snapshot{
		"users":  TableSchema{"name": {}, "id": {}},
		"orders": TableSchema{},
	}

	assert.Equal(t, []string{"orders", "users"}, s.TableNames())
	assert.Equal(t, []string{"id", "name"}, s["users"].ColumnNames())
}
