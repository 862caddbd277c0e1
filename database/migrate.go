package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func newMigrator(sqlDB *sql.DB, driver, migrationsPath string) (*migrate.Migrate, error) {
	var (
		instance database.Driver
		name     string
		err      error
	)

	switch driver {
	case DriverSQLite:
		name = "sqlite3"
		instance, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	case "", DriverMySQL:
		name = "mysql"
		instance, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, name, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations found in migrationsPath.
func RunMigrations(sqlDB *sql.DB, driver, migrationsPath string) error {
	m, err := newMigrator(sqlDB, driver, migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(sqlDB *sql.DB, driver, migrationsPath string) error {
	m, err := newMigrator(sqlDB, driver, migrationsPath)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}
