package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ledgerbridge/booksync/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.Connection{},
		&model.UnifiedCustomer{},
		&model.UnifiedVendor{},
		&model.UnifiedItem{},
		&model.UnifiedInvoice{},
		&model.UnifiedBill{},
		&model.ChartOfAccount{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	// uuid-ossp backs the uuid_generate_v4() default on connections
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
}
