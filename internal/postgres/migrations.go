package postgres

import "embed"

// Migrations holds the goose migration files applied at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations to run goose against.
const MigrationsDir = "migrations"
