package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"queueroom/internal/config"
	"queueroom/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase открывает соединение с Postgres.
func ConnectDatabase(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	log.Info().Str("module", "storage").Str("host", cfg.Host).Str("db", cfg.Name).Msg("Подключение к базе данных успешно")
	return db, nil
}

// ConnectTestingDatabase подключается к базе из TEST_DB_*.
func ConnectTestingDatabase() (*gorm.DB, error) {
	return ConnectDatabase(config.DatabaseConfig{
		Host:     os.Getenv("TEST_DB_HOST"),
		Port:     os.Getenv("TEST_DB_PORT"),
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		Name:     os.Getenv("TEST_DB_NAME"),
		SSLMode:  "disable",
	}, false)
}

// Migrate creates or updates the users, queue_rooms and queue_entries tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.QueueRoom{}, &models.QueueEntry{}); err != nil {
		return fmt.Errorf("ошибка при миграции: %w", err)
	}
	return nil
}

// InitRedis returns nil when no address is configured.
func InitRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s недоступен: %w", cfg.Addr, err)
	}
	log.Info().Str("module", "storage").Str("addr", cfg.Addr).Msg("Подключение к Redis успешно")
	return rdb, nil
}

// Open builds the store selected by STORAGE_DRIVER. Postgres tables are
// migrated on open.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn().Str("module", "storage").Msg("using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	case config.DriverPostgres:
		db, err := ConnectDatabase(cfg.DB, cfg.Debug())
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
