package database

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/logger"
)

var DB *gorm.DB

// BuildDSN prefers DATABASE_URL and falls back to the DB_* variables.
func BuildDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	sslmode := configs.GetEnv("DB_SSLMODE", "disable")
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST", "localhost"),
		configs.GetEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		sslmode,
		configs.AppName,
	)
}

func ConnectDB() error {
	log := logger.GetLogger()
	log.Info("connecting to PostgreSQL")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  BuildDSN(),
		PreferSimpleProtocol: true, // cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(log),
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	DB = db
	log.Info("database connected")
	return nil
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.GetLogger().Warn("pool tune failed", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			logger.GetLogger().Warn("warm-up ping failed", zap.Error(err))
		}
	}()
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
