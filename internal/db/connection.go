// Package db owns the SPBU Hub schema: embedded migrations and the pgx connection pool.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// The pgx/v5 migrate driver registers only the pgx5:// scheme
var migrateScheme = strings.NewReplacer(
	"postgres://", "pgx5://",
	"postgresql://", "pgx5://",
)

// Migrate applies pending schema migrations (users, catalog, reviews, transactions).
// Up to date schema is not an error.
func Migrate(dsn string) (err error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("can't read embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, migrateScheme.Replace(dsn))
	if err != nil {
		return fmt.Errorf("can't prepare spbuhub schema migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		err = errors.Join(err, srcErr, dbErr)
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("can't migrate spbuhub schema: %w", err)
	}
	return nil
}

// Connect opens the pool and checks the database answers
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}
	return pool, nil
}

func ConnectAndMigrate(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if err := Migrate(dsn); err != nil {
		return nil, err
	}
	return Connect(ctx, dsn)
}
