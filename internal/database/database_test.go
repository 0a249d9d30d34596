package database

import (
	"testing"

	"github.com/docmgmt/document-qa/internal/config"
)

// TestMigrateURL — URL миграций отличается от DSN пула только схемой pgx5.
func TestMigrateURL(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.local",
		DBPort:     5432,
		DBName:     "documentqa",
		DBUser:     "app",
		DBPassword: "pw",
		DBSSLMode:  "disable",
	}

	want := "pgx5://app:pw@db.local:5432/documentqa?sslmode=disable"
	if got := migrateURL(cfg); got != want {
		t.Errorf("migrateURL() = %q, ожидалось %q", got, want)
	}
}
