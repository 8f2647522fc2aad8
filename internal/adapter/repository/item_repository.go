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

type itemRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewItemRepository creates a new unified item repository
func NewItemRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *itemRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedItem, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var items []*model.UnifiedItem
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&items).Error
	if err != nil {
		r.logger.Error("Failed to list items by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert items: %w", err)
			}
		}
		for _, it := range updates {
			if err := tx.Save(it).Error; err != nil {
				return fmt.Errorf("failed to update item %d: %w", it.ID, err)
			}
		}
		return nil
	})
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedItem, error) {
	var item model.UnifiedItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) Save(ctx context.Context, item *model.UnifiedItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		r.logger.Error("Failed to save item",
			zap.String("external_id", item.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}
