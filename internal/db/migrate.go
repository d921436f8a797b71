package db

import (
	"fmt"

	"gosshub/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	log.Info().Msg("database schema migrated successfully")
	return nil
}
