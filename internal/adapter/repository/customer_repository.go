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

type customerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new unified customer repository
func NewCustomerRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedCustomer, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var customers []*model.UnifiedCustomer
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&customers).Error
	if err != nil {
		r.logger.Error("Failed to list customers by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedCustomer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert customers: %w", err)
			}
		}
		for _, c := range updates {
			if err := tx.Save(c).Error; err != nil {
				return fmt.Errorf("failed to update customer %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedCustomer, error) {
	var customer model.UnifiedCustomer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) Save(ctx context.Context, customer *model.UnifiedCustomer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		r.logger.Error("Failed to save customer",
			zap.String("external_id", customer.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}
