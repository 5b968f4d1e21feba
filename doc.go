// Package pgdbhelper creates, drops, migrates and seeds a single PostgreSQL
// database. It backs the pgdbhelper command but can be used on its own.
//
// # Configuration
//
// The connection target comes from four environment variables, read once
// with LoadConfig:
//
//	DB_HOST DB_NAME DB_USER DB_PASSWORD
//
// All four must be set and non-blank. An absent variable is reported with a
// single message naming all four; a blank one is reported by name.
//
// # Connection strings
//
// ConnectionConfig renders key/value connection strings:
//
//	cfg.ServerConnString()   // "host=h user=u password=p"
//	cfg.DatabaseConnString() // "host=h user=u password=p dbname=app"
//
// The server-level string is used for CREATE/DROP DATABASE, the
// database-scoped one for migrations and seeding.
//
// # Operations
//
//	ops := pgdbhelper.NewOperations(cfg)
//	ops.Create(ctx)           → Result, error
//	ops.Drop(ctx)             → Result, error
//	ops.Migrate(ctx)          // exits the process on failure
//	ops.Seed(ctx, "seed.sql") // exits the process on failure
//
// Create and Drop return *OperationError carrying the driver's error, so
// callers can inspect e.g. a *pgconn.PgError. Migrate and Seed leave the
// database in an unknown state when they fail part way, so they write the
// error to Stderr and call Exit(1) instead of returning.
//
// Migrations are the embedded bundle in package migrations, applied by
// pkg/migrator.
package pgdbhelper
