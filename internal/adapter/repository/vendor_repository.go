package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	domainRepo "github.com/ledgerbridge/booksync/internal/domain/repository"
)

type vendorRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new unified vendor repository
func NewVendorRepository(db *gorm.DB, logger *zap.Logger) domainRepo.VendorRepository {
	return &vendorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *vendorRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedVendor, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var vendors []*model.UnifiedVendor
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&vendors).Error
	if err != nil {
		r.logger.Error("Failed to list vendors by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, nil
}

func (r *vendorRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedVendor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert vendors: %w", err)
			}
		}
		for _, v := range updates {
			if err := tx.Save(v).Error; err != nil {
				return fmt.Errorf("failed to update vendor %d: %w", v.ID, err)
			}
		}
		return nil
	})
}

func (r *vendorRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedVendor, error) {
	var vendor model.UnifiedVendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &vendor, nil
}

func (r *vendorRepository) Save(ctx context.Context, vendor *model.UnifiedVendor) error {
	if err := r.db.WithContext(ctx).Save(vendor).Error; err != nil {
		r.logger.Error("Failed to save vendor",
			zap.String("external_id", vendor.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to save vendor: %w", err)
	}
	return nil
}
