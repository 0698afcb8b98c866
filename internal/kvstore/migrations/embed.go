// Package migrations embeds the SQL schema for the key-value substrate.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
