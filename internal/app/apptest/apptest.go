// Package apptest builds Applications for tests of the packages above app.
package apptest

import (
	"testing"

	"github.com/retouchshop/shopapi/config"
	"github.com/retouchshop/shopapi/internal/app"
)

// NewApp returns an Application backed by a fresh in-memory SQLite
// database with the schema applied. It is released when the test ends.
func NewApp(t testing.TB) *app.Application {
	t.Helper()

	cfg := *config.DefaultAppConfig
	// a single connection keeps every query on the same in-memory database
	cfg.Database = config.DBConfig{Type: "sqlite", URL: "file::memory:", MaxConn: 1}

	db, err := app.OpenDatabase(cfg.Database)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	a := app.NewApplication(&cfg)
	a.OverrideDB(db)
	if err := a.MigrateDB(false); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}
	t.Cleanup(a.Release)

	return a
}
