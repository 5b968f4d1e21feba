// Package migrations bundles the schema migrations applied by --migrate.
// Files follow the <version>.do.<name>.sql / <version>.undo.<name>.sql layout;
// add a pair with `go run ./cmd/newmigration "<description>"`.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
