package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// UnifiedItem is the platform-agnostic representation of a product/service item.
type UnifiedItem struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string            `gorm:"column:external_id;size:100;not null;uniqueIndex:idx_items_external_source,priority:1" json:"external_id"`
	SourceSystem platform.Platform `gorm:"column:source_system;size:20;not null;uniqueIndex:idx_items_external_source,priority:2" json:"source_system"`

	Name           string          `gorm:"size:255;not null" json:"name"`
	SKU            string          `gorm:"column:sku;size:100" json:"sku"`
	Description    string          `gorm:"type:text" json:"description"`
	ItemType       string          `gorm:"size:50" json:"item_type"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"unit_price"`
	PurchaseCost   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"purchase_cost"`
	IncomeAccount  string          `gorm:"size:100" json:"income_account"`
	ExpenseAccount string          `gorm:"size:100" json:"expense_account"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"quantity_on_hand"`
	Active         bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UnifiedItem) TableName() string {
	return "unified_items"
}
