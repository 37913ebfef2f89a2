// Package migrations embeds the schema files applied by "hospital-server migrate".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
