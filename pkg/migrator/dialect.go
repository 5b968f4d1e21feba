package migrator

import (
	"fmt"
	"strings"
)

// postgresDialect keeps the version table in the current schema unless the
// table name is qualified as "schema.table".
type postgresDialect struct{}

func splitSchemaTable(table string) (schema, name string) {
	if i := strings.Index(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (postgresDialect) quotedTable(table string) string {
	schema, name := splitSchemaTable(table)
	if schema == "" {
		return quoteIdent(name)
	}
	return quoteIdent(schema) + "." + quoteIdent(name)
}

func (postgresDialect) columnsSQL(table string) string {
	schema, name := splitSchemaTable(table)
	schemaExpr := "current_schema()"
	if schema != "" {
		schemaExpr = quoteLiteral(schema)
	}
	return fmt.Sprintf(`SELECT column_name FROM information_schema.columns WHERE table_schema = %s AND table_name = %s;`,
		schemaExpr, quoteLiteral(name))
}

func (postgresDialect) createSchemaSQL(table string) string {
	schema, _ := splitSchemaTable(table)
	if schema == "" {
		return ""
	}
	return fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s;`, quoteIdent(schema))
}

func (postgresDialect) versionType() string   { return "BIGINT" }
func (postgresDialect) timestampType() string { return "TIMESTAMP" }

func (postgresDialect) placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// sqliteDialect has no schemas; the table name is used as given.
// SQLite has no dedicated timestamp type so run_at is TEXT.
type sqliteDialect struct{}

func (sqliteDialect) quotedTable(table string) string { return quoteIdent(table) }

func (sqliteDialect) columnsSQL(table string) string {
	return fmt.Sprintf(`SELECT name FROM pragma_table_info(%s);`, quoteLiteral(table))
}

func (sqliteDialect) createSchemaSQL(string) string { return "" }

func (sqliteDialect) versionType() string   { return "INTEGER" }
func (sqliteDialect) timestampType() string { return "TEXT" }

func (sqliteDialect) placeholder(int) string { return "?" }
