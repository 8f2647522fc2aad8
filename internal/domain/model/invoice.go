package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// Invoice/bill status values, normalized across platforms.
const (
	DocStatusDraft      = "draft"
	DocStatusOpen       = "open"
	DocStatusPaid       = "paid"
	DocStatusVoided     = "voided"
	DocStatusOverdue    = "overdue"
	DocStatusAuthorised = "authorised"
)

// UnifiedInvoice is the platform-agnostic representation of a sales invoice.
type UnifiedInvoice struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string            `gorm:"column:external_id;size:100;not null;uniqueIndex:idx_invoices_external_source,priority:1" json:"external_id"`
	SourceSystem platform.Platform `gorm:"column:source_system;size:20;not null;uniqueIndex:idx_invoices_external_source,priority:2" json:"source_system"`

	InvoiceNumber      string          `gorm:"size:100" json:"invoice_number"`
	CustomerExternalID string          `gorm:"column:customer_external_id;size:100;index" json:"customer_external_id"`
	CustomerName       string          `gorm:"size:255" json:"customer_name"`
	IssueDate          *time.Time      `json:"issue_date,omitempty"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	TaxTotal           decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"tax_total"`
	Total              decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total"`
	Balance            decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Currency           string          `gorm:"size:3" json:"currency"`
	Status             string          `gorm:"size:50" json:"status"`

	// SyncToken is the platform's optimistic-concurrency stamp, required on
	// update/delete calls against the platform.
	SyncToken string `gorm:"size:50" json:"sync_token"`

	LineItems datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"line_items"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UnifiedInvoice) TableName() string {
	return "unified_invoices"
}

// InvoiceLine is the normalized shape of one invoice/bill line, serialized
// into the LineItems JSONB column.
type InvoiceLine struct {
	Description    string          `json:"description"`
	ItemExternalID string          `json:"item_external_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitAmount     decimal.Decimal `json:"unit_amount"`
	Amount         decimal.Decimal `json:"amount"`
}
