package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/pgdbhelper"
)

// fakeLifecycle records the actions it is asked to run.
type fakeLifecycle struct {
	calls     []string
	createErr error
	dropErr   error
}

func (f *fakeLifecycle) Create(context.Context) (pgdbhelper.Result, error) {
	f.calls = append(f.calls, "create")
	return pgdbhelper.Result{}, f.createErr
}

func (f *fakeLifecycle) Drop(context.Context) (pgdbhelper.Result, error) {
	f.calls = append(f.calls, "drop")
	return pgdbhelper.Result{}, f.dropErr
}

func (f *fakeLifecycle) Migrate(context.Context) {
	f.calls = append(f.calls, "migrate")
}

func (f *fakeLifecycle) Seed(_ context.Context, seedFile string) {
	f.calls = append(f.calls, "seed:"+seedFile)
}

func runCmd(t *testing.T, ops lifecycle, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	if args == nil {
		args = []string{}
	}
	code = execute(context.Background(), newRootCmd(ops, "app", &out, &errOut), args, &errOut)
	return code, out.String(), errOut.String()
}

func TestCreateMigrateSeed(t *testing.T) {
	ops := &fakeLifecycle{}
	code, stdout, stderr := runCmd(t, ops, "--create", "--migrate", "--seed", "file.sql")

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"create", "migrate", "seed:file.sql"}, ops.calls)
	assert.Equal(t, "Database app created.\nDatabase app migrated.\nDatabase app seeded.\n", stdout)
	assert.Empty(t, stderr)
}

func TestFlagOrderDoesNotChangeExecutionOrder(t *testing.T) {
	ops := &fakeLifecycle{}
	code, _, _ := runCmd(t, ops, "-s", "seed.sql", "-m", "-c")

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"create", "migrate", "seed:seed.sql"}, ops.calls)
}

func TestSeedOnly(t *testing.T) {
	ops := &fakeLifecycle{}
	code, stdout, _ := runCmd(t, ops, "--seed=data.sql")

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"seed:data.sql"}, ops.calls)
	assert.Equal(t, "Database app seeded.\n", stdout)
}

func TestNoFlagsShowsHelp(t *testing.T) {
	ops := &fakeLifecycle{}
	code, stdout, stderr := runCmd(t, ops)

	assert.Equal(t, 1, code)
	assert.Empty(t, ops.calls)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage:")
	assert.Contains(t, stderr, "--seed string")
}

// --drop is the one action that runs without --seed.
func TestDropAlone(t *testing.T) {
	ops := &fakeLifecycle{}
	code, stdout, stderr := runCmd(t, ops, "--drop")

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"drop"}, ops.calls)
	assert.Equal(t, "Database app dropped.\n", stdout)
	assert.Empty(t, stderr)
}

func TestDropShortFlag(t *testing.T) {
	ops := &fakeLifecycle{}
	code, stdout, _ := runCmd(t, ops, "-d")

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"drop"}, ops.calls)
	assert.Equal(t, "Database app dropped.\n", stdout)
}

func TestDropFailureFromCommandLine(t *testing.T) {
	ops := &fakeLifecycle{dropErr: errors.New("permission denied to drop database")}
	code, stdout, stderr := runCmd(t, ops, "--drop")

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "permission denied to drop database\n", stderr)
}

func TestDropWithSeedConflicts(t *testing.T) {
	ops := &fakeLifecycle{}
	code, _, stderr := runCmd(t, ops, "-d", "-s", "seed.sql")

	assert.Equal(t, 1, code)
	assert.Empty(t, ops.calls)
	assert.Contains(t, stderr, "none of the others can be")
}

func TestConflicts(t *testing.T) {
	for _, args := range [][]string{
		{"--create", "--drop", "--seed", "f.sql"},
		{"--migrate", "--drop", "--seed", "f.sql"},
	} {
		ops := &fakeLifecycle{}
		code, _, stderr := runCmd(t, ops, args...)
		assert.Equal(t, 1, code, args)
		assert.Empty(t, ops.calls, args)
		assert.Contains(t, stderr, "none of the others can be", args)
	}
}

func TestCreateWithoutSeedFails(t *testing.T) {
	for _, args := range [][]string{
		{"--create"},
		{"--migrate"},
		{"--create", "--migrate"},
	} {
		ops := &fakeLifecycle{}
		code, _, stderr := runCmd(t, ops, args...)

		assert.Equal(t, 1, code, args)
		assert.Empty(t, ops.calls, args)
		assert.Contains(t, stderr, `required flag(s) "seed" not set`, args)
		assert.Contains(t, stderr, "Usage:", args)
	}
}

// Without a seed, drop still conflicts with create.
func TestCreateDropWithoutSeedConflicts(t *testing.T) {
	ops := &fakeLifecycle{}
	code, _, stderr := runCmd(t, ops, "--create", "--drop")

	assert.Equal(t, 1, code)
	assert.Empty(t, ops.calls)
	assert.Contains(t, stderr, "none of the others can be")
}

func TestSeedNeedsValue(t *testing.T) {
	ops := &fakeLifecycle{}
	code, _, stderr := runCmd(t, ops, "--seed")

	assert.Equal(t, 1, code)
	assert.Empty(t, ops.calls)
	assert.Contains(t, stderr, "flag needs an argument")
}

func TestUnexpectedArgument(t *testing.T) {
	ops := &fakeLifecycle{}
	code, _, stderr := runCmd(t, ops, "--seed", "f.sql", "extra")

	assert.Equal(t, 1, code)
	assert.Empty(t, ops.calls)
	assert.Contains(t, stderr, "unknown command")
}

func TestCreateFailureStopsTheRun(t *testing.T) {
	ops := &fakeLifecycle{
		createErr: &pgconn.PgError{Severity: "ERROR", Code: "42P04", Message: `database "app" already exists`},
	}
	code, stdout, stderr := runCmd(t, ops, "--create", "--migrate", "--seed", "f.sql")

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"create"}, ops.calls)
	assert.Empty(t, stdout)
	assert.Equal(t, "ERROR: database \"app\" already exists (SQLSTATE 42P04)\n", stderr)
}

func TestHelpAndVersion(t *testing.T) {
	code, stdout, _ := runCmd(t, &fakeLifecycle{}, "--help")
	assert.Equal(t, 0, code)
	for _, flag := range []string{"--create", "--drop", "--migrate", "--seed"} {
		assert.Contains(t, stdout, flag)
	}

	code, stdout, _ = runCmd(t, &fakeLifecycle{}, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, pgdbhelper.Version)
}

func TestDispatchOrderWithDrop(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ops := &fakeLifecycle{}
	req := request{Drop: true, Create: true, Migrate: true, Seed: true, SeedFile: "f.sql"}

	code := dispatch(context.Background(), ops, "app", req, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"drop", "create", "migrate", "seed:f.sql"}, ops.calls)
	assert.Equal(t, "Database app dropped.\nDatabase app created.\nDatabase app migrated.\nDatabase app seeded.\n", stdout.String())
}

func TestDispatchDropFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ops := &fakeLifecycle{dropErr: errors.New("permission denied to drop database")}

	code := dispatch(context.Background(), ops, "app", request{Drop: true, Create: true}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"drop"}, ops.calls)
	assert.Equal(t, "permission denied to drop database\n", stderr.String())
	assert.Empty(t, stdout.String())
}
