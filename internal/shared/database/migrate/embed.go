package migrate

import "embed"

// migrationFS embeds the versioned SQL migration files.
// File naming: NNNN_name.up.sql / NNNN_name.down.sql.
//
//go:embed migrations/*.sql
var migrationFS embed.FS
