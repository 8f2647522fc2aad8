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

type invoiceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new unified invoice repository
func NewInvoiceRepository(db *gorm.DB, logger *zap.Logger) domainRepo.InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedInvoice, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var invoices []*model.UnifiedInvoice
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&invoices).Error
	if err != nil {
		r.logger.Error("Failed to list invoices by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert invoices: %w", err)
			}
		}
		for _, inv := range updates {
			if err := tx.Save(inv).Error; err != nil {
				return fmt.Errorf("failed to update invoice %d: %w", inv.ID, err)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedInvoice, error) {
	var invoice model.UnifiedInvoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Save(ctx context.Context, invoice *model.UnifiedInvoice) error {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		r.logger.Error("Failed to save invoice",
			zap.String("external_id", invoice.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UnifiedInvoice{})
	if res.Error != nil {
		r.logger.Error("Failed to delete invoice",
			zap.Int64("id", id),
			zap.Error(res.Error))
		return fmt.Errorf("failed to delete invoice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainErrors.ErrRecordNotFound
	}
	return nil
}
