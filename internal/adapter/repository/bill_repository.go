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

type billRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBillRepository creates a new unified bill repository
func NewBillRepository(db *gorm.DB, logger *zap.Logger) domainRepo.BillRepository {
	return &billRepository{
		db:     db,
		logger: logger,
	}
}

func (r *billRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedBill, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var bills []*model.UnifiedBill
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&bills).Error
	if err != nil {
		r.logger.Error("Failed to list bills by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (r *billRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedBill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert bills: %w", err)
			}
		}
		for _, b := range updates {
			if err := tx.Save(b).Error; err != nil {
				return fmt.Errorf("failed to update bill %d: %w", b.ID, err)
			}
		}
		return nil
	})
}

func (r *billRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedBill, error) {
	var bill model.UnifiedBill
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

func (r *billRepository) Save(ctx context.Context, bill *model.UnifiedBill) error {
	if err := r.db.WithContext(ctx).Save(bill).Error; err != nil {
		r.logger.Error("Failed to save bill",
			zap.String("external_id", bill.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}
