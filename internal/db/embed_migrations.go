package db

import "embed"

// MigrationFS holds the SQL files applied by cmd/migrate and by the API when
// DB_AUTO_MIGRATE is set.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
