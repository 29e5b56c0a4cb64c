package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB 内存 sqlite，单连接保证同一个库
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := Open(sqlite.Open(":memory:"), gormlogger.Silent)
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
