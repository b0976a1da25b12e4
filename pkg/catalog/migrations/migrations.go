// Package migrations embeds the catalog SQL schema migrations.
package migrations

import "embed"

// FS contains the SQL migration files applied by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
