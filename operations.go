package pgdbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bcomnes/pgdbhelper/internal/logger"
	"github.com/bcomnes/pgdbhelper/migrations"
	"github.com/bcomnes/pgdbhelper/pkg/migrator"
)

// Result is the outcome of a successful Create or Drop.
type Result struct {
	RowsAffected int64
}

// OperationError is the recoverable failure of Create or Drop. Its message
// is the driver's message, unchanged.
type OperationError struct {
	Op       string
	Database string
	Err      error
}

func (e *OperationError) Error() string {
	return e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

var errNoDatabaseName = errors.New("database name cannot be empty")

// Operations runs the four lifecycle actions against one ConnectionConfig.
// Every call opens its own connection and closes it before returning.
//
// Create and Drop report failures through OperationError. Migrate and Seed
// treat any failure as fatal: they write the error to Stderr and call Exit(1).
type Operations struct {
	Config ConnectionConfig

	// Connector opens connections for Create, Drop and Seed.
	Connector Connector

	// OpenDB opens the database/sql handle Migrate hands to the runner.
	OpenDB func(connString string) (*sql.DB, error)

	// Migrations configures the runner; Migrations.FS is the bundle applied.
	Migrations migrator.Config

	Stderr io.Writer
	Exit   func(code int)
}

// NewOperations wires cfg to pgx, the embedded migration bundle and the
// real process exit.
func NewOperations(cfg ConnectionConfig) *Operations {
	m := migrator.DefaultConfig
	m.FS = migrations.FS
	return &Operations{
		Config:     cfg,
		Connector:  PgxConnector{},
		OpenDB:     OpenPgxDB,
		Migrations: m,
		Stderr:     os.Stderr,
		Exit:       os.Exit,
	}
}

// CreateStatement returns the CREATE DATABASE statement for cfg.
func CreateStatement(cfg ConnectionConfig) string {
	return fmt.Sprintf(
		"CREATE DATABASE %s WITH OWNER=%s LC_COLLATE='en_GB.utf8' LC_CTYPE='en_GB.utf8' TEMPLATE=template0 ENCODING=UTF8;",
		cfg.Name, cfg.Username,
	)
}

// DropStatement returns the DROP DATABASE statement for cfg.
func DropStatement(cfg ConnectionConfig) string {
	return fmt.Sprintf("DROP DATABASE IF EXISTS %s;", cfg.Name)
}

// Create creates the configured database. It fails if the database already exists.
func (o *Operations) Create(ctx context.Context) (Result, error) {
	return o.serverExec(ctx, "create", CreateStatement(o.Config))
}

// Drop drops the configured database if it exists.
func (o *Operations) Drop(ctx context.Context) (Result, error) {
	return o.serverExec(ctx, "drop", DropStatement(o.Config))
}

// serverExec runs one statement over a server-level connection.
func (o *Operations) serverExec(ctx context.Context, op, stmt string) (Result, error) {
	if isBlank(o.Config.Name) {
		return Result{}, &OperationError{Op: op, Err: errNoDatabaseName}
	}
	log := logger.With("op", op, "host", o.Config.Host, "user", o.Config.Username, "database", o.Config.Name)

	log.Debug("Connecting to server")
	conn, err := o.Connector.Connect(ctx, o.Config.ServerConnString())
	if err != nil {
		return Result{}, &OperationError{Op: op, Database: o.Config.Name, Err: err}
	}
	defer conn.Close(ctx)

	log.Debug("Executing statement", "sql", stmt)
	rows, err := conn.Exec(ctx, stmt)
	if err != nil {
		log.Debug("Statement failed", "error", err)
		return Result{}, &OperationError{Op: op, Database: o.Config.Name, Err: err}
	}
	return Result{RowsAffected: rows}, nil
}

// Migrate applies all pending migrations from the bundle. Any failure ends
// the process.
func (o *Operations) Migrate(ctx context.Context) {
	if err := o.migrate(ctx); err != nil {
		o.abort(err)
	}
}

func (o *Operations) migrate(ctx context.Context) error {
	if isBlank(o.Config.Name) {
		return errNoDatabaseName
	}
	log := logger.With("op", "migrate", "host", o.Config.Host, "database", o.Config.Name)

	log.Debug("Opening database")
	db, err := o.OpenDB(o.Config.DatabaseConnString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	m, err := migrator.New(o.Migrations, db)
	if err != nil {
		return err
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Info("Database is up to date")
	} else {
		versions := make([]int, len(pending))
		for i, mig := range pending {
			versions[i] = mig.Version
		}
		log.Debug("Pending migrations", "versions", versions)
	}

	// Migrate also verifies checksums, so it runs with nothing pending.
	applied, err := m.Migrate(ctx)
	for _, mig := range applied {
		log.Info("Applied migration", "version", mig.Version, "name", mig.Name)
	}
	return err
}

// Seed executes the SQL in seedFile against the database. The file is read
// before connecting. Any failure ends the process.
func (o *Operations) Seed(ctx context.Context, seedFile string) {
	if err := o.seed(ctx, seedFile); err != nil {
		o.abort(err)
	}
}

func (o *Operations) seed(ctx context.Context, seedFile string) error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("unable to read seed file: %w", err)
	}
	if isBlank(o.Config.Name) {
		return errNoDatabaseName
	}
	log := logger.With("op", "seed", "host", o.Config.Host, "database", o.Config.Name, "file", seedFile)

	log.Debug("Connecting to database")
	conn, err := o.Connector.Connect(ctx, o.Config.DatabaseConnString())
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	log.Debug("Executing seed file", "bytes", len(data))
	_, err = conn.Exec(ctx, string(data))
	return err
}

// abort is the fatal path for Migrate and Seed. Connections are already
// closed by the time it runs.
func (o *Operations) abort(err error) {
	logger.Debug("Aborting", "error", err)
	fmt.Fprintln(o.Stderr, err)
	o.Exit(1)
}
