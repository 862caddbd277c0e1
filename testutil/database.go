// Package testutil holds helpers shared by database-backed tests.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hairizuanbinnoorazman/design-testgen/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database. The pool is pinned to one
// connection so every query sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// MigrationsPath returns the absolute path of the repository's SQL migrations.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "database", "migrations")
}

// SetupMigratedDB returns an in-memory SQLite database with the SQL
// migrations applied, so tests run against the production schema.
func SetupMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := SetupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	if err := database.RunMigrations(sqlDB, database.DriverSQLite, MigrationsPath()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return db
}

// CreateFixtures inserts rows directly, skipping any store-level validation.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()
	for _, model := range models {
		if err := db.Create(model).Error; err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
	}
}
