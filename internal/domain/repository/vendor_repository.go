package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// VendorRepository stores unified vendors.
type VendorRepository interface {
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedVendor, error)
	SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedVendor) error
	GetByID(ctx context.Context, id int64) (*model.UnifiedVendor, error)
	Save(ctx context.Context, vendor *model.UnifiedVendor) error
}
