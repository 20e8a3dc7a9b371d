package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MySQL credentials of the containers started by StartMySQL. The root account
// is used because several tests create and drop databases.
const (
	MySQLUser     = "root"
	MySQLPassword = "testpass"
)

// StartMySQL starts a MySQL 8.4 container with database created and returns
// a go-sql-driver DSN for it. Integration tests are skipped in short mode.
func StartMySQL(t *testing.T, database string) string {
	t.Helper()

	return StartMySQLImage(t, "mysql:8.4", database)
}

// StartMySQLImage is StartMySQL for another server image, such as mysql:5.7
// which still has PROCEDURE ANALYSE.
func StartMySQLImage(t *testing.T, image, database string) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	container, err := mysql.Run(ctx,
		image,
		mysql.WithDatabase(database),
		mysql.WithUsername(MySQLUser),
		mysql.WithPassword(MySQLPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(90*time.Second)),
	)
	require.NoError(t, err, "start %s container", image)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate mysql: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx)
	require.NoError(t, err, "mysql connection string")

	return dsn
}
