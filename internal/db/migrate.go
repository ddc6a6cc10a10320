package db

import (
	"fmt"

	"github.com/riddleworks/dailyriddle/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all application tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.Riddle{},
		&models.User{},
		&models.PaymentIntent{},
		&models.Setting{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
