// Package gormstore is a gorm-backed chat store. It runs on sqlite for local
// development and tests, and on postgres when pgx is not wanted.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Drivers accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "gorm-postgres"
)

// Open connects to the database and migrates the chats table named
// prefix + "chats".
func Open(ctx context.Context, driver, dsn, prefix string, logger *zap.Logger) (*gorm.DB, string, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, "", fmt.Errorf("unknown gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}

	if err := configureConnectionPool(db, driver); err != nil {
		return nil, "", err
	}

	table := prefix + "chats"
	if err := Migrate(ctx, db, table); err != nil {
		return nil, "", err
	}

	logger.Info("gorm chat store ready", zap.String("driver", driver), zap.String("table", table))
	return db, table, nil
}

func configureConnectionPool(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection serializes writes
		// instead of failing with "database is locked".
		sqlDB.SetMaxOpenConns(1)
		return nil
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// Migrate creates or updates table and its listing index
func Migrate(ctx context.Context, db *gorm.DB, table string) error {
	db = db.WithContext(ctx)
	if err := db.Table(table).AutoMigrate(&chatRecord{}); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_updated_idx ON %s (user_id, updated_at DESC)`, table, table)
	if err := db.Exec(index).Error; err != nil {
		return fmt.Errorf("index %s: %w", table, err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
