package sqlbuild

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestIdent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "users", "`users`", false},
		{"underscore and digits", "user_2024", "`user_2024`", false},
		{"leading digit", "2fa_codes", "`2fa_codes`", false},
		{"dollar", "tmp$1", "`tmp$1`", false},
		{"empty", "", "", true},
		{"space", "user table", "", true},
		{"backtick injection", "users`; DROP TABLE x; --", "", true},
		{"dot", "db.users", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ident(tt.input)
			if tt.wantErr {
				assert.IsError(t, err, ErrInvalidIdentifier)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQualifiedIdent(t *testing.T) {
	got, err := QualifiedIdent("shop", "orders")
	assert.NoError(t, err)
	assert.Equal(t, "`shop`.`orders`", got)

	got, err = QualifiedIdent("", "orders")
	assert.NoError(t, err)
	assert.Equal(t, "`orders`", got)

	_, err = QualifiedIdent("", "")
	assert.IsError(t, err, ErrInvalidIdentifier)

	_, err = QualifiedIdent("shop", "or ders")
	assert.IsError(t, err, ErrInvalidIdentifier)
}

func TestTypeClause(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		wantErr bool
	}{
		{"int", "INT(11) NOT NULL", false},
		{"varchar with default", "varchar(20) NOT NULL DEFAULT ''", false},
		{"enum", "ENUM('a','b;c') NOT NULL", false},
		{"escaped quote", `varchar(5) DEFAULT 'it''s'`, false},
		{"charset", "text CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", false},
		{"empty", "   ", true},
		{"separator", "INT; DROP TABLE users", true},
		{"line comment", "INT -- trailing", true},
		{"hash comment", "INT # trailing", true},
		{"block comment", "INT /* x */", true},
		{"backtick", "INT, ADD COLUMN `x` INT", true},
		{"unterminated", "varchar(5) DEFAULT 'abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TypeClause(tt.clause)
			if tt.wantErr {
				assert.IsError(t, err, ErrInvalidTypeClause)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatementBuild(t *testing.T) {
	t.Run("identifiers and binds", func(t *testing.T) {
		query, args, err := New("UPDATE ").Ident("users").
			Raw(" SET ").Ident("name").Raw(" = NULL WHERE ").Ident("name").Raw(" = ").Bind("").
			Build()

		assert.NoError(t, err)
		assert.Equal(t, "UPDATE `users` SET `name` = NULL WHERE `name` = ?", query)
		assert.Equal(t, []any{""}, args)
	})

	t.Run("lists", func(t *testing.T) {
		query, args, err := New("INSERT INTO ").Qualified("db", "t").
			Raw(" (").Idents("a", "b", "c").Raw(") VALUES (").Binds(1, "x", nil).Raw(")").
			Build()

		assert.NoError(t, err)
		assert.Equal(t, "INSERT INTO `db`.`t` (`a`, `b`, `c`) VALUES (?, ?, ?)", query)
		assert.Equal(t, []any{1, "x", nil}, args)
	})

	t.Run("type clause", func(t *testing.T) {
		query, _, err := New("ALTER TABLE ").Ident("t").Raw(" ADD COLUMN ").Ident("c").Raw(" ").Type(" INT NOT NULL ").Build()
		assert.NoError(t, err)
		assert.Equal(t, "ALTER TABLE `t` ADD COLUMN `c` INT NOT NULL", query)
	})

	t.Run("first error wins", func(t *testing.T) {
		_, _, err := New("DROP TABLE ").Ident("bad name").Raw(", ").Ident("ok").Type("INT;").Build()
		assert.IsError(t, err, ErrInvalidIdentifier)
	})
}
