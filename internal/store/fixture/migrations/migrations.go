// Package migrations embeds the archive schema used to build fixture
// databases.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
