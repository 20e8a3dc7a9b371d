package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/shibukawa/mysqltools/sqlbuild"
)

// Hostname returns the host name of the server.
func (t *Tools) Hostname(ctx context.Context) (string, error) {
	return t.queryString(ctx, "SELECT @@hostname")
}

// User returns the authenticated user name without the host part.
func (t *Tools) User(ctx context.Context) (string, error) {
	return t.queryString(ctx, "SELECT SUBSTRING_INDEX(USER(), '@', 1)")
}

// DatabaseName returns the current database, or "" when none is selected.
func (t *Tools) DatabaseName(ctx context.Context) (string, error) {
	return t.queryString(ctx, "SELECT DATABASE()")
}

// UseDatabase makes database the current one for the session.
func (t *Tools) UseDatabase(ctx context.Context, database string) error {
	_, _, err := t.exec(ctx, sqlbuild.New("USE ").Ident(database))
	return err
}

// ServerVersion describes the server software.
type ServerVersion struct {
	Raw     string
	Major   int
	Minor   int
	MariaDB bool
}

// HasProcedureAnalyse reports whether the server still ships PROCEDURE ANALYSE,
// which MySQL removed in 8.0.
func (v ServerVersion) HasProcedureAnalyse() bool {
	return v.MariaDB || v.Major < 8
}

// ServerVersion returns the parsed result of VERSION().
func (t *Tools) ServerVersion(ctx context.Context) (ServerVersion, error) {
	raw, err := t.queryString(ctx, "SELECT VERSION()")
	if err != nil {
		return ServerVersion{}, err
	}

	return ParseServerVersion(raw), nil
}

// ParseServerVersion parses strings such as "8.4.3" or "10.11.6-MariaDB-log".
func ParseServerVersion(raw string) ServerVersion {
	v := ServerVersion{Raw: raw, MariaDB: strings.Contains(strings.ToLower(raw), "mariadb")}

	numbers, _, _ := strings.Cut(raw, "-")
	parts := strings.Split(numbers, ".")

	if len(parts) > 0 {
		v.Major, _ = strconv.Atoi(parts[0])
	}

	if len(parts) > 1 {
		v.Minor, _ = strconv.Atoi(parts[1])
	}

	return v
}
