package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// InvoiceRepository stores unified invoices. Invoices are the only entity
// with a hard local delete, taken after the external void/delete succeeds.
type InvoiceRepository interface {
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedInvoice, error)
	SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedInvoice) error
	GetByID(ctx context.Context, id int64) (*model.UnifiedInvoice, error)
	Save(ctx context.Context, invoice *model.UnifiedInvoice) error
	Delete(ctx context.Context, id int64) error
}
