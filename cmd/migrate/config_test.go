package main

import (
	"testing"
)

func TestMigrationsDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("MIGRATIONS_DIR", "/custom/migrations")
		if got := migrationsDir(); got != "/custom/migrations" {
			t.Fatalf("expected MIGRATIONS_DIR override, got %q", got)
		}
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("MIGRATIONS_DIR", "")
		if got := migrationsDir(); got != "db/migrations" {
			t.Fatalf("expected default migrations dir, got %q", got)
		}
	})
}
