package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/im-delivery/config"
	"github.com/d60-Lab/im-delivery/internal/model"
)

// InitDB 按配置打开数据库并自动迁移
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	level := gormlogger.Warn
	if cfg.Log.Development {
		level = gormlogger.Info
	}
	db, err := Open(dialector, level)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver != "postgres" {
		// sqlite 单写者
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Open 统一的 gorm 配置：翻译唯一键冲突为 gorm.ErrDuplicatedKey，不建外键
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
