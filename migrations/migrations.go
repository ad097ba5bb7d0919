// Package migrations embeds the goose SQL migration files so the server can
// apply them at startup without shipping the directory alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var Embed embed.FS
