// Package migrations embeds the SQL migrations of the local sqlite draft store.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
