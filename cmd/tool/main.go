// Command tool runs operator tasks against the user store: seeding
// privileged accounts and applying schema migrations.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
)

const usage = `usage: tool <command> [flags]

commands:
  create-admin   create an account with an explicit role (default admin)
  migrate        apply pending migrations (-status to only report)
`

type accountCreator interface {
	CreatePrivileged(ctx context.Context, actor domain.IdentityClaims, in auth.RegisterInput, role domain.Role) (domain.AccountView, error)
}

type env struct {
	stdout io.Writer
	stderr io.Writer

	openCreator func() (accountCreator, func(), error)
	openDB      func() (*sql.DB, error)
	migrate     func(ctx context.Context, db *sql.DB) error
	status      func(ctx context.Context, db *sql.DB) error
}

func defaultEnv() env {
	return env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		openCreator: func() (accountCreator, func(), error) {
			app, cleanup, err := bootstrap.Build(bootstrap.DefaultDeps())
			if err != nil {
				return nil, nil, err
			}
			return app.Auth, cleanup, nil
		},
		openDB: func() (*sql.DB, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return config.NewDB(cfg.DBAddr, cfg.DBDebug)
		},
		migrate: postgres.Migrate,
		status:  postgres.MigrationStatus,
	}
}

func run(args []string, e env) int {
	if len(args) == 0 {
		fmt.Fprint(e.stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "create-admin":
		err = createAdmin(args[1:], e)
	case "migrate":
		err = migrate(args[1:], e)
	case "-h", "--help", "help":
		fmt.Fprint(e.stdout, usage)
		return 0
	default:
		fmt.Fprintf(e.stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintln(e.stderr, err)
		return 2
	default:
		fmt.Fprintln(e.stderr, "error:", err)
		return 1
	}
}

type usageError struct{ msg string }

func (u usageError) Error() string { return u.msg }

func createAdmin(args []string, e env) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	email := fs.String("email", "", "account email (required)")
	password := fs.String("password", "", "account password (required)")
	first := fs.String("first-name", "", "first name (required)")
	last := fs.String("last-name", "", "last name (required)")
	middle := fs.String("middle-name", "", "middle name")
	birth := fs.String("birth-date", "", "birth date YYYY-MM-DD (required)")
	role := fs.String("role", string(domain.RoleAdmin), "user or admin")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}

	var missing []string
	for _, f := range []struct {
		name string
		v    string
	}{
		{"email", *email},
		{"password", *password},
		{"first-name", *first},
		{"last-name", *last},
		{"birth-date", *birth},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, "-"+f.name)
		}
	}
	if len(missing) > 0 {
		return usageError{"missing required flags: " + strings.Join(missing, ", ")}
	}
	if !domain.IsValidRole(*role) {
		return usageError{fmt.Sprintf("invalid -role %q", *role)}
	}
	bd, err := domain.ParseDate(*birth)
	if err != nil {
		return usageError{"invalid -birth-date, want YYYY-MM-DD"}
	}

	in := auth.RegisterInput{
		Email:     *email,
		Password:  *password,
		FirstName: *first,
		LastName:  *last,
		BirthDate: bd,
	}
	if *middle != "" {
		in.MiddleName = middle
	}

	svc, cleanup, err := e.openCreator()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	v, err := svc.CreatePrivileged(ctx, auth.SystemActor(), in, domain.Role(*role))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "created %s account id=%d email=%s\n", v.Role, v.ID, v.Email)
	return nil
}

func migrate(args []string, e env) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	statusOnly := fs.Bool("status", false, "report migration status without applying")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}

	db, err := e.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *statusOnly {
		return e.status(ctx, db)
	}
	if err := e.migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, "migrations applied")
	return nil
}

func main() {
	logger.Init()
	os.Exit(run(os.Args[1:], defaultEnv()))
}
