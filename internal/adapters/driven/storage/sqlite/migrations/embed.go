// Package migrations holds the schema migration scripts for the chat
// and suggestion store. The SQLite adapter applies them in filename
// order on startup.
package migrations

import "embed"

// FS is the embedded set of *.sql migration scripts.
//
//go:embed *.sql
var FS embed.FS
