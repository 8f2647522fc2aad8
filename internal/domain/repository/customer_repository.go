package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// CustomerRepository stores unified customers.
type CustomerRepository interface {
	// ListByExternalIDs returns the local rows whose natural key
	// (external_id, source_system) is in the given key set.
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedCustomer, error)

	// SaveBatch inserts and updates rows atomically in one transaction.
	SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedCustomer) error

	GetByID(ctx context.Context, id int64) (*model.UnifiedCustomer, error)
	Save(ctx context.Context, customer *model.UnifiedCustomer) error
}
