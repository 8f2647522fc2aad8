package quickbooks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// MapRecord converts one raw QuickBooks record into the matching unified
// model. Optional fields default to zero values; only a record without an
// Id is rejected.
func (c *Connector) MapRecord(entity platform.EntityType, raw json.RawMessage) (any, error) {
	switch entity {
	case platform.EntityCustomers:
		return mapCustomer(raw)
	case platform.EntityVendors:
		return mapVendor(raw)
	case platform.EntityItems:
		return mapItem(raw)
	case platform.EntityInvoices:
		return mapInvoice(raw)
	case platform.EntityBills:
		return mapBill(raw)
	case platform.EntityAccounts:
		return mapAccount(raw)
	default:
		return nil, fmt.Errorf("quickbooks does not map entity type %q", entity)
	}
}

func mapCustomer(raw json.RawMessage) (*model.UnifiedCustomer, error) {
	var src qbCustomer
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed customer payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("customer record missing Id")
	}

	out := &model.UnifiedCustomer{
		ExternalID:   src.ID,
		SourceSystem: platform.PlatformQuickBooks,
		DisplayName:  src.DisplayName,
		GivenName:    src.GivenName,
		FamilyName:   src.FamilyName,
		CompanyName:  src.CompanyName,
		Balance:      src.Balance,
		Active:       activeFlag(src.Active),
	}
	if src.PrimaryEmailAddr != nil {
		out.Email = src.PrimaryEmailAddr.Address
	}
	if src.PrimaryPhone != nil {
		out.Phone = src.PrimaryPhone.FreeFormNumber
	}
	if src.BillAddr != nil {
		out.AddressLine1 = src.BillAddr.Line1
		out.City = src.BillAddr.City
		out.Region = src.BillAddr.CountrySubDivisionCode
		out.PostalCode = src.BillAddr.PostalCode
		out.Country = src.BillAddr.Country
	}
	if src.CurrencyRef != nil {
		out.Currency = src.CurrencyRef.Value
	}
	return out, nil
}

func mapVendor(raw json.RawMessage) (*model.UnifiedVendor, error) {
	var src qbVendor
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed vendor payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("vendor record missing Id")
	}

	out := &model.UnifiedVendor{
		ExternalID:    src.ID,
		SourceSystem:  platform.PlatformQuickBooks,
		DisplayName:   src.DisplayName,
		GivenName:     src.GivenName,
		FamilyName:    src.FamilyName,
		CompanyName:   src.CompanyName,
		AccountNumber: src.AcctNum,
		Balance:       src.Balance,
		Active:        activeFlag(src.Active),
	}
	if src.PrimaryEmailAddr != nil {
		out.Email = src.PrimaryEmailAddr.Address
	}
	if src.PrimaryPhone != nil {
		out.Phone = src.PrimaryPhone.FreeFormNumber
	}
	if src.BillAddr != nil {
		out.AddressLine1 = src.BillAddr.Line1
		out.City = src.BillAddr.City
		out.Region = src.BillAddr.CountrySubDivisionCode
		out.PostalCode = src.BillAddr.PostalCode
		out.Country = src.BillAddr.Country
	}
	if src.CurrencyRef != nil {
		out.Currency = src.CurrencyRef.Value
	}
	return out, nil
}

func mapItem(raw json.RawMessage) (*model.UnifiedItem, error) {
	var src qbItem
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed item payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("item record missing Id")
	}

	out := &model.UnifiedItem{
		ExternalID:     src.ID,
		SourceSystem:   platform.PlatformQuickBooks,
		Name:           src.Name,
		SKU:            src.Sku,
		Description:    src.Description,
		ItemType:       src.Type,
		UnitPrice:      src.UnitPrice,
		PurchaseCost:   src.PurchaseCost,
		QuantityOnHand: src.QtyOnHand,
		Active:         activeFlag(src.Active),
	}
	if src.IncomeAccountRef != nil {
		out.IncomeAccount = src.IncomeAccountRef.Value
	}
	if src.ExpenseAccountRef != nil {
		out.ExpenseAccount = src.ExpenseAccountRef.Value
	}
	return out, nil
}

func mapInvoice(raw json.RawMessage) (*model.UnifiedInvoice, error) {
	var src qbInvoice
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed invoice payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("invoice record missing Id")
	}

	out := &model.UnifiedInvoice{
		ExternalID:    src.ID,
		SourceSystem:  platform.PlatformQuickBooks,
		InvoiceNumber: src.DocNumber,
		IssueDate:     parseDate(src.TxnDate),
		DueDate:       parseDate(src.DueDate),
		Total:         src.TotalAmt,
		Balance:       src.Balance,
		SyncToken:     src.SyncToken,
		Status:        docStatus(src.Balance),
		LineItems:     mapLines(src.Line),
	}
	if src.CustomerRef != nil {
		out.CustomerExternalID = src.CustomerRef.Value
		out.CustomerName = src.CustomerRef.Name
	}
	if src.TxnTaxDetail != nil {
		out.TaxTotal = src.TxnTaxDetail.TotalTax
	}
	out.Subtotal = src.TotalAmt.Sub(out.TaxTotal)
	if src.CurrencyRef != nil {
		out.Currency = src.CurrencyRef.Value
	}
	return out, nil
}

func mapBill(raw json.RawMessage) (*model.UnifiedBill, error) {
	var src qbBill
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed bill payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("bill record missing Id")
	}

	out := &model.UnifiedBill{
		ExternalID:   src.ID,
		SourceSystem: platform.PlatformQuickBooks,
		IssueDate:    parseDate(src.TxnDate),
		DueDate:      parseDate(src.DueDate),
		Total:        src.TotalAmt,
		Balance:      src.Balance,
		SyncToken:    src.SyncToken,
		Status:       docStatus(src.Balance),
		LineItems:    mapLines(src.Line),
	}
	if src.VendorRef != nil {
		out.VendorExternalID = src.VendorRef.Value
		out.VendorName = src.VendorRef.Name
	}
	if src.TxnTaxDetail != nil {
		out.TaxTotal = src.TxnTaxDetail.TotalTax
	}
	out.Subtotal = src.TotalAmt.Sub(out.TaxTotal)
	if src.CurrencyRef != nil {
		out.Currency = src.CurrencyRef.Value
	}
	return out, nil
}

func mapAccount(raw json.RawMessage) (*model.ChartOfAccount, error) {
	var src qbAccount
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed account payload: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("account record missing Id")
	}

	out := &model.ChartOfAccount{
		ExternalID:     src.ID,
		SourceSystem:   platform.PlatformQuickBooks,
		Name:           src.Name,
		Code:           src.AcctNum,
		AccountType:    src.AccountType,
		AccountSubtype: src.AccountSubType,
		Classification: src.Classification,
		CurrentBalance: src.CurrentBalance,
		Active:         activeFlag(src.Active),
	}
	if src.CurrencyRef != nil {
		out.Currency = src.CurrencyRef.Value
	}
	return out, nil
}

func mapLines(lines []qbLine) datatypes.JSON {
	out := make([]model.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		line := model.InvoiceLine{
			Description: l.Description,
			Amount:      l.Amount,
		}
		if l.SalesItemLineDetail != nil {
			if l.SalesItemLineDetail.ItemRef != nil {
				line.ItemExternalID = l.SalesItemLineDetail.ItemRef.Value
			}
			line.Quantity = l.SalesItemLineDetail.Qty
			line.UnitAmount = l.SalesItemLineDetail.UnitPrice
		}
		if l.ItemBasedExpenseLineDtl != nil {
			if l.ItemBasedExpenseLineDtl.ItemRef != nil {
				line.ItemExternalID = l.ItemBasedExpenseLineDtl.ItemRef.Value
			}
			line.Quantity = l.ItemBasedExpenseLineDtl.Qty
			line.UnitAmount = l.ItemBasedExpenseLineDtl.UnitPrice
		}
		out = append(out, line)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

// parseDate handles the two timestamp encodings QuickBooks emits: plain
// dates for transaction fields and RFC3339 for metadata.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return &ts
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return &ts
	}
	return nil
}

func docStatus(balance decimal.Decimal) string {
	if balance.IsZero() {
		return model.DocStatusPaid
	}
	return model.DocStatusOpen
}

func activeFlag(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
