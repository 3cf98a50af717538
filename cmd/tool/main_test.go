package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

type fakeCreator struct {
	actor domain.IdentityClaims
	in    auth.RegisterInput
	role  domain.Role
	err   error
}

func (f *fakeCreator) CreatePrivileged(_ context.Context, actor domain.IdentityClaims, in auth.RegisterInput, role domain.Role) (domain.AccountView, error) {
	f.actor, f.in, f.role = actor, in, role
	if f.err != nil {
		return domain.AccountView{}, f.err
	}
	return domain.AccountView{ID: 7, Email: domain.NormalizeEmail(in.Email), Role: role}, nil
}

func newEnv(t *testing.T, fc *fakeCreator) (env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	cleaned := false
	t.Cleanup(func() {
		if fc != nil && fc.in.Email != "" && !cleaned {
			t.Errorf("expected cleanup after create-admin")
		}
	})
	return env{
		stdout: &out,
		stderr: &errOut,
		openCreator: func() (accountCreator, func(), error) {
			return fc, func() { cleaned = true }, nil
		},
	}, &out, &errOut
}

var adminFlags = []string{
	"create-admin",
	"-email", "Root@Example.com",
	"-password", "Str0ng!Passw0rd",
	"-first-name", "Ada",
	"-last-name", "Lovelace",
	"-birth-date", "1990-12-10",
}

func TestRun_NoArgs_PrintsUsage(t *testing.T) {
	e, _, errOut := newEnv(t, nil)
	assert.Equal(t, 2, run(nil, e))
	assert.Contains(t, errOut.String(), "usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	e, _, errOut := newEnv(t, nil)
	assert.Equal(t, 2, run([]string{"seed"}, e))
	assert.Contains(t, errOut.String(), `unknown command "seed"`)
}

func TestCreateAdmin_Success(t *testing.T) {
	fc := &fakeCreator{}
	e, out, _ := newEnv(t, fc)

	require.Equal(t, 0, run(adminFlags, e))

	assert.Equal(t, domain.RoleAdmin, fc.role)
	assert.Equal(t, domain.RoleAdmin, fc.actor.Role)
	assert.True(t, fc.actor.IsActive)
	assert.Nil(t, fc.in.MiddleName)
	assert.Equal(t, time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC), fc.in.BirthDate)
	assert.Contains(t, out.String(), "created admin account id=7 email=root@example.com")
}

func TestCreateAdmin_UserRoleAndMiddleName(t *testing.T) {
	fc := &fakeCreator{}
	e, _, _ := newEnv(t, fc)

	args := append(append([]string{}, adminFlags...), "-role", "user", "-middle-name", "King")
	require.Equal(t, 0, run(args, e))
	assert.Equal(t, domain.RoleUser, fc.role)
	require.NotNil(t, fc.in.MiddleName)
	assert.Equal(t, "King", *fc.in.MiddleName)
}

func TestCreateAdmin_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing flags": {"create-admin", "-email", "a@b.com"},
		"bad role":      append(append([]string{}, adminFlags...), "-role", "root"),
		"bad date":      append(append([]string{}, adminFlags[:len(adminFlags)-1]...), "10/12/1990"),
		"unknown flag":  {"create-admin", "-nope"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			e, _, _ := newEnv(t, nil)
			assert.Equal(t, 2, run(args, e))
		})
	}
}

func TestCreateAdmin_ServiceError(t *testing.T) {
	fc := &fakeCreator{err: domain.ErrEmailAlreadyExists()}
	e, _, errOut := newEnv(t, fc)

	assert.Equal(t, 1, run(adminFlags, e))
	assert.Contains(t, errOut.String(), domain.CodeDuplicateEmail)
}

func TestCreateAdmin_BootstrapError(t *testing.T) {
	e, _, errOut := newEnv(t, nil)
	e.openCreator = func() (accountCreator, func(), error) {
		return nil, nil, errors.New("DB_ADDR is required")
	}

	assert.Equal(t, 1, run(adminFlags, e))
	assert.Contains(t, errOut.String(), "DB_ADDR is required")
}

func newMigrateEnv(t *testing.T) (env, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	e, out, _ := newEnv(t, nil)
	e.openDB = func() (*sql.DB, error) { return db, nil }
	return e, mock, out
}

func TestMigrate_Applies(t *testing.T) {
	e, mock, out := newMigrateEnv(t)
	applied := false
	e.migrate = func(context.Context, *sql.DB) error { applied = true; return nil }
	e.status = func(context.Context, *sql.DB) error { t.Fatal("status should not run"); return nil }

	assert.Equal(t, 0, run([]string{"migrate"}, e))
	assert.True(t, applied)
	assert.Contains(t, out.String(), "migrations applied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StatusOnly(t *testing.T) {
	e, mock, _ := newMigrateEnv(t)
	reported := false
	e.status = func(context.Context, *sql.DB) error { reported = true; return nil }
	e.migrate = func(context.Context, *sql.DB) error { t.Fatal("migrate should not run"); return nil }

	assert.Equal(t, 0, run([]string{"migrate", "-status"}, e))
	assert.True(t, reported)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Failure(t *testing.T) {
	e, mock, _ := newMigrateEnv(t)
	e.migrate = func(context.Context, *sql.DB) error { return errors.New("dirty schema") }

	assert.Equal(t, 1, run([]string{"migrate"}, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdmin_MissingFlagsListedInOrder(t *testing.T) {
	for i := 0; i < 5; i++ {
		e, _, errOut := newEnv(t, &fakeCreator{})

		assert.Equal(t, 2, run([]string{"create-admin", "-role", "admin"}, e))
		assert.Contains(t, errOut.String(),
			"missing required flags: -email, -password, -first-name, -last-name, -birth-date")
	}
}
