// Package migrations embeds the SQL schema files for the postgres-backed
// stores, for use in tests and provisioning tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
