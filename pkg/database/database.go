package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kpi-dashboard/pkg/config"
)

// Open connects to the configured backend and returns the handle.
// The driver is selected once at startup; everything downstream depends
// only on the returned *gorm.DB.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	}

	var db *gorm.DB
	var err error

	switch cfg.DB.Driver {
	case "postgres":
		pgConfig := postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}
		db, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	case "sqlite":
		if dir := filepath.Dir(cfg.DB.SQLitePath); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create sqlite data dir: %w", mkErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.DB.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	return db, nil
}

// Migrate runs migrations for the provided models
func Migrate(db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}
