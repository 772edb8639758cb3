package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/atharvakonge/paper-trader/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) { log.L().Sugar().Infof(format, v...) }
func (gooseLogger) Fatalf(format string, v ...interface{}) { log.L().Sugar().Fatalf(format, v...) }

func prepareGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending embedded migration.
func Migrate(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to up migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to down migrations: %w", err)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Status(db, migrationsDir)
}
