package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// dialect supplies the SQL that differs between database engines.
type dialect interface {
	// quotedTable returns the version table name ready to be put in a statement.
	quotedTable(table string) string
	// columnsSQL lists the column names of the version table; no rows means it does not exist.
	columnsSQL(table string) string
	// createSchemaSQL returns the statement creating the table's schema, or "".
	createSchemaSQL(table string) string
	versionType() string
	timestampType() string
	placeholder(n int) string
}

// newDialect picks the dialect for a driver name.
func newDialect(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "pg":
		return postgresDialect{}, nil
	case "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("db driver '%s' not supported. Must be one of: sqlite3 or pg", driver)
	}
}

// client runs the version-table bookkeeping against a database.
type client struct {
	cfg     Config
	db      *sql.DB
	dialect dialect
}

func newClient(cfg Config, db *sql.DB) (*client, error) {
	d, err := newDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return &client{cfg: cfg, db: db, dialect: d}, nil
}

func (c *client) table() string {
	return c.dialect.quotedTable(c.cfg.SchemaTable)
}

// columns returns the column names of the version table.
func (c *client) columns(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, c.dialect.columnsSQL(c.cfg.SchemaTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// hasVersionTable reports whether the version table exists.
func (c *client) hasVersionTable(ctx context.Context) (bool, error) {
	columns, err := c.columns(ctx)
	if err != nil {
		return false, err
	}
	return len(columns) > 0, nil
}

func hasColumn(columns []string, name string) bool {
	for _, col := range columns {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

// ensureTable creates the version table, or adds the columns an older
// table is missing.
func (c *client) ensureTable(ctx context.Context) error {
	columns, err := c.columns(ctx)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", c.cfg.SchemaTable, err)
	}

	var queries []string
	if len(columns) == 0 {
		if q := c.dialect.createSchemaSQL(c.cfg.SchemaTable); q != "" {
			queries = append(queries, q)
		}
		queries = append(queries,
			fmt.Sprintf(`CREATE TABLE %s (version %s PRIMARY KEY);`, c.table(), c.dialect.versionType()),
			fmt.Sprintf(`INSERT INTO %s (version) VALUES (0);`, c.table()),
		)
	}
	if !hasColumn(columns, "name") {
		queries = append(queries, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN name TEXT;`, c.table()))
	}
	if !hasColumn(columns, "md5") {
		queries = append(queries, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN md5 TEXT;`, c.table()))
	}
	if !hasColumn(columns, "run_at") {
		queries = append(queries, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN run_at %s;`, c.table(), c.dialect.timestampType()))
	}

	for _, q := range queries {
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prepare %s: %w", c.cfg.SchemaTable, err)
		}
	}
	return nil
}

// databaseVersion returns the highest recorded version, or 0 when the
// version table does not exist yet.
func (c *client) databaseVersion(ctx context.Context) (int, error) {
	initialized, err := c.hasVersionTable(ctx)
	if err != nil {
		return 0, err
	}
	if !initialized {
		return 0, nil
	}
	var version int
	err = c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT version FROM %s ORDER BY version DESC LIMIT 1;`, c.table())).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

// appliedMd5 returns the checksum recorded for version.
func (c *client) appliedMd5(ctx context.Context, version int) (sql.NullString, error) {
	var md5 sql.NullString
	query := fmt.Sprintf(`SELECT md5 FROM %s WHERE version = %s;`, c.table(), c.dialect.placeholder(1))
	err := c.db.QueryRowContext(ctx, query, version).Scan(&md5)
	if err == sql.ErrNoRows {
		return sql.NullString{}, nil
	}
	return md5, err
}

// apply runs script and records m in the version table inside one transaction.
func (c *client) apply(ctx context.Context, m Migration, script string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return err
	}
	insert := fmt.Sprintf(`INSERT INTO %s (version, name, md5, run_at) VALUES (%s, %s, %s, %s);`,
		c.table(), c.dialect.placeholder(1), c.dialect.placeholder(2), c.dialect.placeholder(3), c.dialect.placeholder(4))
	if _, err := tx.ExecContext(ctx, insert, m.Version, m.Name, m.Md5, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
