// Package migrations embeds the users schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
