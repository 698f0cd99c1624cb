package postgres

import "embed"

// Migrations holds the schema, applied on startup with golang-migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"
