package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// ChartOfAccount is the platform-agnostic representation of one ledger
// account from the platform's chart of accounts.
type ChartOfAccount struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string            `gorm:"column:external_id;size:100;not null;uniqueIndex:idx_accounts_external_source,priority:1" json:"external_id"`
	SourceSystem platform.Platform `gorm:"column:source_system;size:20;not null;uniqueIndex:idx_accounts_external_source,priority:2" json:"source_system"`

	Name           string          `gorm:"size:255;not null" json:"name"`
	Code           string          `gorm:"size:50" json:"code"`
	AccountType    string          `gorm:"size:100" json:"account_type"`
	AccountSubtype string          `gorm:"size:100" json:"account_subtype"`
	Classification string          `gorm:"size:50" json:"classification"`
	Currency       string          `gorm:"size:3" json:"currency"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"current_balance"`
	Active         bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ChartOfAccount) TableName() string {
	return "chart_of_accounts"
}
