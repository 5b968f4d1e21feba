package pgdbhelper

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Conn is a single open database connection.
type Conn interface {
	// Exec runs sql with no arguments and returns the rows affected. The sql
	// may hold several statements.
	Exec(ctx context.Context, sql string) (int64, error)
	Close(ctx context.Context) error
}

// Connector opens a Conn from a key/value connection string.
type Connector interface {
	Connect(ctx context.Context, connString string) (Conn, error)
}

// PgxConnector opens connections with pgx.
type PgxConnector struct{}

// Connect dials PostgreSQL.
func (PgxConnector) Connect(ctx context.Context, connString string) (Conn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return pgxConn{conn: conn}, nil
}

type pgxConn struct {
	conn *pgx.Conn
}

// Exec sends sql without arguments, which pgx runs over the simple
// protocol so multi-statement scripts work.
func (c pgxConn) Exec(ctx context.Context, sql string) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// OpenPgxDB returns a database/sql handle over pgx limited to one
// connection, for the migration runner.
func OpenPgxDB(connString string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(1)
	return db, nil
}
