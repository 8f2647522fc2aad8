package connector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// Connector is implemented once per platform. It is the single dispatch
// point for everything platform-specific: the OAuth flow, token refresh,
// incremental paginated reads, payload mapping and writes.
type Connector interface {
	Platform() platform.Platform

	// AuthorizeURL builds the user-facing OAuth authorization redirect URL.
	AuthorizeURL(state string) string

	// ExchangeCode trades an OAuth authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (platform.Token, error)

	// Identity resolves the realm/tenant id and display name for a freshly
	// authorized token. realmHint carries the realm id QuickBooks passes on
	// the callback; Xero ignores it and picks the first authorized tenant.
	Identity(ctx context.Context, token platform.Token, realmHint string) (realmID, displayName string, err error)

	// Refresh exchanges the stored refresh token for a new token pair.
	// The stored pair is left untouched on failure.
	Refresh(ctx context.Context, current platform.Token) (platform.Token, error)

	// FetchPage returns one page of raw platform records of the entity type
	// updated strictly after since. Pages are 1-based. A page holding fewer
	// records than Page.Limit is the last one.
	FetchPage(ctx context.Context, conn *model.Connection, entity platform.EntityType, since time.Time, page int) (*Page, error)

	// MapRecord converts one raw platform record into the matching Unified*
	// model. Absent optional fields map to zero values; an error is returned
	// only for structurally unusable records.
	MapRecord(entity platform.EntityType, raw json.RawMessage) (any, error)

	// CreateRecord creates the record on the platform and returns its
	// external id and concurrency stamp.
	CreateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*WriteResult, error)

	// UpdateRecord performs a full update of an existing platform record.
	UpdateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*WriteResult, error)

	// SetRecordStatus toggles a record between active and inactive via a
	// sparse update carrying the platform's current concurrency stamp.
	SetRecordStatus(ctx context.Context, conn *model.Connection, entity platform.EntityType, externalID string, active bool) error

	// DeleteInvoice voids or deletes an invoice on the platform. This is the
	// only hard-delete path in the system.
	DeleteInvoice(ctx context.Context, conn *model.Connection, externalID string, void bool) error
}

// Page is one page of raw records from a platform query endpoint.
type Page struct {
	Records []json.RawMessage
	// Limit is the platform page size used for the query. The pagination
	// loop terminates once a page returns fewer than Limit records.
	Limit int
}

// WriteResult reports the platform-side identity of a written record.
type WriteResult struct {
	ExternalID string
	SyncToken  string
}

// Batch holds unified records mapped from one sync pull. Exactly one of the
// slices is populated per pull, matching the entity type being synced.
type Batch struct {
	Source    platform.Platform
	Customers []*model.UnifiedCustomer
	Vendors   []*model.UnifiedVendor
	Items     []*model.UnifiedItem
	Invoices  []*model.UnifiedInvoice
	Bills     []*model.UnifiedBill
	Accounts  []*model.ChartOfAccount

	// Skipped counts records dropped by per-record mapping failures.
	Skipped int
}

// Add appends a mapped record to the matching slice.
func (b *Batch) Add(record any) {
	switch v := record.(type) {
	case *model.UnifiedCustomer:
		b.Customers = append(b.Customers, v)
	case *model.UnifiedVendor:
		b.Vendors = append(b.Vendors, v)
	case *model.UnifiedItem:
		b.Items = append(b.Items, v)
	case *model.UnifiedInvoice:
		b.Invoices = append(b.Invoices, v)
	case *model.UnifiedBill:
		b.Bills = append(b.Bills, v)
	case *model.ChartOfAccount:
		b.Accounts = append(b.Accounts, v)
	}
}

// Size returns the number of mapped records in the batch.
func (b *Batch) Size() int {
	return len(b.Customers) + len(b.Vendors) + len(b.Items) +
		len(b.Invoices) + len(b.Bills) + len(b.Accounts)
}

// Resolver selects the connector for a platform.
type Resolver interface {
	Resolve(p platform.Platform) (Connector, error)
}
