package utils

import (
	"fmt"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/config"
	"github.com/Koloda55SA/RaDev-sub001/backend/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB открывает базу из конфигурации и применяет миграции.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	db, err := OpenDB(cfg.DBType, cfg.DSN(), level)
	if err != nil {
		return nil, err
	}
	log.Info("database ready", zap.String("type", cfg.DBType))
	return db, nil
}

// OpenDB подключается к postgres или sqlite и выполняет AutoMigrate.
// Для sqlite используется одно соединение: так ":memory:" видна всем запросам.
func OpenDB(dbType, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	if dbType == "postgres" {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbType == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// CloseDB закрывает пул соединений.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
