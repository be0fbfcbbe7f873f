package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"deep-research/config"
	"deep-research/internal/database/model"
	"deep-research/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrNotConfigured = errors.New("database: not configured")

// Settings is the connection and pool configuration.
type Settings struct {
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
	MaxLifetime  time.Duration
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		DSN:          cfg.Dns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxLifetime:  time.Duration(cfg.Database.MaxLifetime) * time.Minute,
	}
}

var (
	mu       sync.Mutex
	DB       *gorm.DB
	settings *Settings
)

// connect opens the DB and applies pool configuration
func connect(s Settings) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(s.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(s.MaxIdleConns)
	sqlDB.SetMaxOpenConns(s.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(s.MaxLifetime)
	sqlDB.SetConnMaxLifetime(s.MaxLifetime)

	return db, nil
}

// Init connects with s and migrates the report table. Later GetDB calls
// reconnect with the same settings.
func Init(s Settings) (*gorm.DB, error) {
	if s.DSN == "" {
		return nil, ErrNotConfigured
	}
	mu.Lock()
	defer mu.Unlock()

	settings = &s
	db, err := connect(s)
	if err != nil {
		logger.Error(err, "database: failed to connect to database")
		return nil, err
	}
	if err := db.AutoMigrate(&model.Report{}); err != nil {
		logger.Error(err, "database: failed to migrate")
		return nil, err
	}
	DB = db
	return db, nil
}

// ensureConnection verifies DB connectivity and reconnects if needed
func ensureConnection() error {
	if settings == nil {
		return ErrNotConfigured
	}
	if DB == nil {
		newDB, err := connect(*settings)
		if err != nil {
			logger.Error(err, "database: failed to ensure connection")
			return err
		}
		DB = newDB
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		logger.Error(err, "database: failed to get database connection")
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		newDB, err := connect(*settings)
		if err != nil {
			logger.Error(err, "database: failed to connect to database")
			return err
		}
		DB = newDB
	}
	return nil
}

// GetDB returns a healthy *gorm.DB, attempting reconnect if necessary
func GetDB() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := ensureConnection(); err != nil {
		return nil, err
	}
	return DB, nil
}

// Ping checks that the configured database answers.
func Ping(ctx context.Context) error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
