// Package migrations embeds the SQLite schema of the message log.
package migrations

import "embed"

// FS holds the up/down migration pairs applied at startup.
//
//go:embed *.sql
var FS embed.FS
