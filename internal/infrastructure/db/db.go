package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-ingest/internal/config"
	"catalog-ingest/internal/domain/entities"
)

// NewPostgresDB opens a connection pool against the configured database.
func NewPostgresDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	return database, nil
}

// AutoMigrate creates or updates every table this module owns. Goose
// migrations under migrations/ are the source of truth for production
// rollout; AutoMigrate exists for local development and tests where
// standing up a migration runner is unwarranted overhead.
func AutoMigrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&entities.Upload{},
		&entities.Image{},
		&entities.Product{},
		&entities.ImportLog{},
	)
}
