// Package migrations embeds the SQL schema for the optional Postgres record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
