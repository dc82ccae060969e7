// Package migrations embeds the index catalogue schema, applied in
// version order when the store opens.
package migrations

import "embed"

// FS holds the numbered *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
