// Command cmd применяет миграции схемы к базе Postgres и завершается.
package main

import (
	"os"

	"queueroom/internal/config"
	"queueroom/internal/storage"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Logger = cfg.Logger(os.Stderr)
	if cfg.StorageDriver != config.DriverPostgres {
		log.Fatal().Str("driver", cfg.StorageDriver).Msg("migrations only apply to the postgres driver")
	}

	db, err := storage.ConnectDatabase(cfg.DB, cfg.Debug())
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка подключения к базе данных")
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Ошибка при миграции")
	}
	log.Info().Str("db", cfg.DB.Name).Msg("Миграция завершена")
}
