// Package migrations embeds the SQL schema migrations for the catalog tables.
package migrations

import "embed"

// FS holds the numbered up/down migrations.
//
//go:embed *.sql
var FS embed.FS
