package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// ItemRepository stores unified items.
type ItemRepository interface {
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedItem, error)
	SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedItem) error
	GetByID(ctx context.Context, id int64) (*model.UnifiedItem, error)
	Save(ctx context.Context, item *model.UnifiedItem) error
}
