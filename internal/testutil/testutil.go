// Package testutil runs SPBU Hub tests against a real PostgreSQL.
package testutil

import (
	"context"
	"net"
	"os/exec"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/nkiryanov/spbuhub/internal/db"
)

const postgresImage = "postgres:17-alpine"

// RandomPort returns a port free on 127.0.0.1 at the moment of the call
func RandomPort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:")
	if err != nil {
		return 0, err
	}
	defer ln.Close() // nolint:errcheck

	return ln.Addr().(*net.TCPAddr).Port, nil
}

// PostgresContainer is a migrated spbuhub database
type PostgresContainer struct {
	Pool      *pgxpool.Pool
	DSN       string
	Terminate func()
}

// StartPostgresContainer starts postgres in docker and applies spbuhub migrations.
// The test fails right away if docker is missing. Call Terminate when done.
func StartPostgresContainer(t *testing.T) PostgresContainer {
	t.Helper()

	if out, err := exec.Command("docker", "info", "--format", "{{.ServerVersion}}").CombinedOutput(); err != nil {
		t.Fatalf("spbuhub database tests need docker: %s", out)
	}

	container, err := postgres.Run(t.Context(),
		postgresImage,
		postgres.WithDatabase("spbuhub-test"),
		postgres.WithUsername("spbuhub"),
		postgres.WithPassword("pwd"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "can't start postgres container")

	dsn, err := container.ConnectionString(t.Context(), "sslmode=disable")
	require.NoError(t, err, "can't get postgres container DSN")
	t.Logf("spbuhub test database: %s", dsn)

	pool, err := db.ConnectAndMigrate(t.Context(), dsn)
	require.NoError(t, err, "can't migrate spbuhub schema")

	return PostgresContainer{
		Pool: pool,
		DSN:  dsn,
		Terminate: func() {
			pool.Close()
			testcontainers.CleanupContainer(t, container)
		},
	}
}

type beginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// InTx runs testFunc in a transaction that is rolled back afterwards, so tests never see each other's rows.
// On a pgx.Tx it opens a savepoint: calls nest, and an error inside the inner one leaves the outer usable.
func InTx(conn beginner, t *testing.T, testFunc func(tx pgx.Tx)) {
	tx, err := conn.Begin(t.Context())
	require.NoError(t, err)

	defer func() {
		require.NoError(t, tx.Rollback(t.Context()))
	}()

	testFunc(tx)
}
