package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// UnifiedVendor is the platform-agnostic representation of a vendor/supplier.
type UnifiedVendor struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string            `gorm:"column:external_id;size:100;not null;uniqueIndex:idx_vendors_external_source,priority:1" json:"external_id"`
	SourceSystem platform.Platform `gorm:"column:source_system;size:20;not null;uniqueIndex:idx_vendors_external_source,priority:2" json:"source_system"`

	DisplayName   string          `gorm:"size:255;not null" json:"display_name"`
	GivenName     string          `gorm:"size:100" json:"given_name"`
	FamilyName    string          `gorm:"size:100" json:"family_name"`
	CompanyName   string          `gorm:"size:255" json:"company_name"`
	Email         string          `gorm:"size:255" json:"email"`
	Phone         string          `gorm:"size:50" json:"phone"`
	AddressLine1  string          `gorm:"size:255" json:"address_line1"`
	City          string          `gorm:"size:100" json:"city"`
	Region        string          `gorm:"size:100" json:"region"`
	PostalCode    string          `gorm:"size:20" json:"postal_code"`
	Country       string          `gorm:"size:100" json:"country"`
	AccountNumber string          `gorm:"size:100" json:"account_number"`
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Currency      string          `gorm:"size:3" json:"currency"`
	Active        bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UnifiedVendor) TableName() string {
	return "unified_vendors"
}
