// Package migrator applies an ordered bundle of SQL migrations to a database
// and records each applied version in a version table.
//
// Migrations live in an fs.FS (usually an embed.FS compiled into the binary)
// and are named
//
//	001.do.create-users.sql
//	001.undo.create-users.sql
//
// Only "do" files are applied; "undo" files are accepted so bundles can carry
// their rollbacks. Each migration runs in its own transaction together with
// its bookkeeping row.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
)

// Config holds settings for migrations.
type Config struct {
	// Driver is the dialect, "pg" or "sqlite3".
	Driver string

	// SchemaTable is the name of the version table, optionally "schema.table" for pg.
	SchemaTable string

	// FS holds the migration files.
	FS fs.FS

	// Pattern is the fs.Glob pattern selecting migration files inside FS.
	Pattern string

	// ValidateChecksums compares applied migrations with the bundle before
	// running new ones.
	ValidateChecksums bool
}

// DefaultConfig provides default values for configuration.
var DefaultConfig = Config{
	Driver:            "pg",
	SchemaTable:       "schemaversion",
	Pattern:           "*.sql",
	ValidateChecksums: true,
}

// ChecksumError reports an applied migration whose file has changed since it ran.
type ChecksumError struct {
	Version  int
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("MD5 checksum failed for migration [%d]: database has %s, bundle has %s", e.Version, e.Expected, e.Actual)
}

// Migrator moves a database forward through the migration bundle.
type Migrator struct {
	cfg    Config
	client *client
}

// New creates a Migrator for db. Empty SchemaTable and Pattern fall back to
// DefaultConfig.
func New(cfg Config, db *sql.DB) (*Migrator, error) {
	if cfg.SchemaTable == "" {
		cfg.SchemaTable = DefaultConfig.SchemaTable
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultConfig.Pattern
	}
	if cfg.FS == nil {
		return nil, fmt.Errorf("no migration bundle configured")
	}
	c, err := newClient(cfg, db)
	if err != nil {
		return nil, err
	}
	return &Migrator{cfg: cfg, client: c}, nil
}

// Migrations returns every migration in the bundle, sorted by version.
func (m *Migrator) Migrations() ([]Migration, error) {
	return LoadMigrations(m.cfg)
}

// DatabaseVersion returns the highest applied version, 0 for a fresh database.
func (m *Migrator) DatabaseVersion(ctx context.Context) (int, error) {
	return m.client.databaseVersion(ctx)
}

// Pending returns the "do" migrations newer than the database version, in
// the order they would be applied.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	migs, err := m.Migrations()
	if err != nil {
		return nil, err
	}
	dbVersion, err := m.DatabaseVersion(ctx)
	if err != nil {
		return nil, err
	}
	return pendingAfter(migs, dbVersion), nil
}

func pendingAfter(migs []Migration, dbVersion int) []Migration {
	var pending []Migration
	for _, mig := range migs {
		if mig.Action == "do" && mig.Version > dbVersion {
			pending = append(pending, mig)
		}
	}
	sortMigrationsAsc(pending)
	return pending
}

// validate checks that the applied migrations still match the bundle.
func (m *Migrator) validate(ctx context.Context, migs []Migration, dbVersion int) error {
	for _, mig := range migs {
		if mig.Action != "do" || mig.Version <= 0 || mig.Version > dbVersion {
			continue
		}
		applied, err := m.client.appliedMd5(ctx, mig.Version)
		if err != nil {
			return err
		}
		if applied.Valid && applied.String != "" && applied.String != mig.Md5 {
			return &ChecksumError{Version: mig.Version, Expected: applied.String, Actual: mig.Md5}
		}
	}
	return nil
}

// Migrate applies every pending migration in ascending version order and
// returns the ones that ran. On failure the returned slice holds the
// migrations applied before the failing one.
func (m *Migrator) Migrate(ctx context.Context) ([]Migration, error) {
	migs, err := m.Migrations()
	if err != nil {
		return nil, err
	}
	if err := m.client.ensureTable(ctx); err != nil {
		return nil, err
	}
	dbVersion, err := m.client.databaseVersion(ctx)
	if err != nil {
		return nil, err
	}
	if m.cfg.ValidateChecksums {
		if err := m.validate(ctx, migs, dbVersion); err != nil {
			return nil, err
		}
	}

	var applied []Migration
	for _, mig := range pendingAfter(migs, dbVersion) {
		script, err := mig.SQL(m.cfg.FS)
		if err != nil {
			return applied, err
		}
		if err := m.client.apply(ctx, mig, script); err != nil {
			return applied, fmt.Errorf("migration %d (%s) failed: %w", mig.Version, mig.Filename, err)
		}
		applied = append(applied, mig)
	}
	return applied, nil
}
