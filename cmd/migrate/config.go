package main

import (
	"os"
)

// migrationsDir is relative to the working directory unless overridden.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
