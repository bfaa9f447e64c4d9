package medivault

import "embed"

// MigrationsFS holds the PostgreSQL schema for the key-value store backend.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
