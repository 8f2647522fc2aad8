package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// BillRepository stores unified bills.
type BillRepository interface {
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedBill, error)
	SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedBill) error
	GetByID(ctx context.Context, id int64) (*model.UnifiedBill, error)
	Save(ctx context.Context, bill *model.UnifiedBill) error
}
