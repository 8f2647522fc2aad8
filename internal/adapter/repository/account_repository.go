package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	domainRepo "github.com/ledgerbridge/booksync/internal/domain/repository"
)

type accountRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new chart-of-accounts repository
func NewAccountRepository(db *gorm.DB, logger *zap.Logger) domainRepo.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.ChartOfAccount, error) {
	if len(externalIDs) == 0 {
		return nil, nil
	}
	var accounts []*model.ChartOfAccount
	err := r.db.WithContext(ctx).
		Where("source_system = ? AND external_id IN ?", source, externalIDs).
		Find(&accounts).Error
	if err != nil {
		r.logger.Error("Failed to list accounts by external ids",
			zap.String("source", string(source)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) SaveBatch(ctx context.Context, inserts, updates []*model.ChartOfAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(inserts) > 0 {
			if err := tx.Create(&inserts).Error; err != nil {
				return fmt.Errorf("failed to insert accounts: %w", err)
			}
		}
		for _, a := range updates {
			if err := tx.Save(a).Error; err != nil {
				return fmt.Errorf("failed to update account %d: %w", a.ID, err)
			}
		}
		return nil
	})
}
