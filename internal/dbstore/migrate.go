package dbstore

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrateConfig describes where migrations live and which database they
// target.
type MigrateConfig struct {
	MigrationsPath string
	DatabaseURL    string
}

// Migrate applies every pending forward-only migration. It is idempotent:
// running it against an already-current schema is a no-op.
func Migrate(sqlDB *sql.DB, cfg MigrateConfig, logger *zap.Logger) error {
	absPath, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	var driver migrate.Driver
	if strings.HasPrefix(cfg.DatabaseURL, "sqlite://") {
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	} else {
		driver, err = mysql.WithInstance(sqlDB, &mysql.Config{NoLock: true})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	dbName := "weatherops"
	if strings.HasPrefix(cfg.DatabaseURL, "sqlite://") {
		dbName = "sqlite"
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", absPath), dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		logger.Warn("database is in dirty migration state, forcing version", zap.Uint("version", version))
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending migrations")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("migrations applied", zap.Uint("from_version", version), zap.Uint("to_version", newVersion))
	return nil
}
