// Package migrations embeds the chat client's local SQLite schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
