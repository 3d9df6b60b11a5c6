// Package db opens the application database, applies schema migrations and
// runs background maintenance.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported values for the driver argument of Init.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Init opens a database for driver and migrates it to the latest schema.
func Init(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		return InitPostgres(dsn)
	case DriverSQLite:
		return InitSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := MigrateUp(db, DriverPostgres); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSQLite opens the database file at path, creating its directory, or an
// in-memory database for ":memory:".
func InitSQLite(path string) (*sql.DB, error) {
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !inMemory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if inMemory {
		// every new connection would see an empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := MigrateUp(db, DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
