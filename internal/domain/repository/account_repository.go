package repository

import (
	"context"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// AccountRepository stores chart-of-accounts rows. Accounts are sync-only;
// there is no local write path for them.
type AccountRepository interface {
	ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.ChartOfAccount, error)
	SaveBatch(ctx context.Context, inserts, updates []*model.ChartOfAccount) error
}
