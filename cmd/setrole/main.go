// Command setrole grants a role to a registered user.
// It is the way to bootstrap the first admin, later admins may use PUT /user/{id}/role.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/spbuhub/internal/db"
	"github.com/nkiryanov/spbuhub/internal/models"
	"github.com/nkiryanov/spbuhub/internal/repository"
	"github.com/nkiryanov/spbuhub/internal/repository/postgres"
	"github.com/nkiryanov/spbuhub/internal/service/user"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Getenv, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "setrole: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, out io.Writer, args []string) error {
	dsn := getenv("DATABASE_URI")
	if dsn == "" {
		dsn = getenv("DATABASE_URL")
	}

	var email, role string
	fs := pflag.NewFlagSet("setrole", pflag.ContinueOnError)
	fs.StringVarP(&dsn, "database", "d", dsn, "Database connection string")
	fs.StringVarP(&email, "email", "u", "", "Email of the user to change")
	fs.StringVarP(&role, "role", "r", string(models.RoleAdmin), "Role to grant (user, operator, admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case dsn == "":
		return errors.New("database DSN is required")
	case email == "":
		return errors.New("email is required")
	}

	pool, err := db.ConnectAndMigrate(ctx, dsn)
	if err != nil {
		return fmt.Errorf("can't connect to db: %w", err)
	}
	defer pool.Close()

	var updated models.User
	err = postgres.NewStorage(pool).InTx(ctx, func(storage repository.Storage) error {
		u, err := storage.User().GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}

		updated, err = user.NewService(storage).SetRole(ctx, u.ID, models.Role(role))
		return err
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "user %s (%s) is now %s\n", updated.Email, updated.ID, updated.Role)
	return err
}
