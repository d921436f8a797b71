package db

import (
	"fmt"
	stdlog "log"
	"time"

	"gosshub/internal/config"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres store described by cfg. The handle is returned
// to the caller and threaded explicitly through every repository.
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Error
	}
	newLogger := logger.New(
		stdlog.New(log.Logger, "", 0), // io writer
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      level,       // Log level
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), Options(newLogger))
	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(20)

	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to db")
	return db, nil
}

// Options are the gorm settings shared by every dialect. TranslateError
// turns unique violations into gorm.ErrDuplicatedKey.
func Options(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Err(err).Msg("failed to get sql db")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close db")
		return
	}
	log.Info().Msg("closing db")
}
