package platform

import (
	"database/sql/driver"
	"fmt"
)

// Platform identifies an external accounting platform.
type Platform string

const (
	PlatformQuickBooks Platform = "quickbooks"
	PlatformXero       Platform = "xero"
)

// Parse converts a string into a known Platform.
func Parse(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformQuickBooks:
		return PlatformQuickBooks, nil
	case PlatformXero:
		return PlatformXero, nil
	default:
		return "", fmt.Errorf("unsupported platform: %q", s)
	}
}

// Scan implements sql.Scanner interface
func (p *Platform) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*p = Platform(v)
	case []byte:
		*p = Platform(v)
	default:
		return fmt.Errorf("cannot scan %T into Platform", src)
	}
	return nil
}

// Value implements driver.Valuer interface
func (p Platform) Value() (driver.Value, error) {
	return string(p), nil
}

// EntityType identifies a synchronized business entity type.
type EntityType string

const (
	EntityCustomers EntityType = "customers"
	EntityVendors   EntityType = "vendors"
	EntityItems     EntityType = "items"
	EntityInvoices  EntityType = "invoices"
	EntityBills     EntityType = "bills"
	EntityAccounts  EntityType = "accounts"
)

// EntityTypes lists every synchronized entity type.
var EntityTypes = []EntityType{
	EntityCustomers,
	EntityVendors,
	EntityItems,
	EntityInvoices,
	EntityBills,
	EntityAccounts,
}

// ParseEntityType converts a string into a known EntityType.
func ParseEntityType(s string) (EntityType, error) {
	for _, e := range EntityTypes {
		if EntityType(s) == e {
			return e, nil
		}
	}
	return "", fmt.Errorf("unsupported entity type: %q", s)
}
