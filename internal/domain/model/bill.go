package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// UnifiedBill is the platform-agnostic representation of a purchase bill.
type UnifiedBill struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string            `gorm:"column:external_id;size:100;not null;uniqueIndex:idx_bills_external_source,priority:1" json:"external_id"`
	SourceSystem platform.Platform `gorm:"column:source_system;size:20;not null;uniqueIndex:idx_bills_external_source,priority:2" json:"source_system"`

	VendorExternalID string          `gorm:"column:vendor_external_id;size:100;index" json:"vendor_external_id"`
	VendorName       string          `gorm:"size:255" json:"vendor_name"`
	IssueDate        *time.Time      `json:"issue_date,omitempty"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	TaxTotal         decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"tax_total"`
	Total            decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total"`
	Balance          decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Currency         string          `gorm:"size:3" json:"currency"`
	Status           string          `gorm:"size:50" json:"status"`
	SyncToken        string          `gorm:"size:50" json:"sync_token"`

	LineItems datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"line_items"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UnifiedBill) TableName() string {
	return "unified_bills"
}
