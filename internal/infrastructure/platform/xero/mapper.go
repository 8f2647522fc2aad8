package xero

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// MapRecord converts one raw Xero record into the matching unified model.
// The entity type decides which role of a shared endpoint applies: a
// contact becomes a customer or a vendor, an invoice an invoice or a bill.
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
		return nil, fmt.Errorf("xero does not map entity type %q", entity)
	}
}

func mapCustomer(raw json.RawMessage) (*model.UnifiedCustomer, error) {
	var src xContact
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed contact payload: %w", err)
	}
	if src.ContactID == "" {
		return nil, fmt.Errorf("contact record missing ContactID")
	}

	out := &model.UnifiedCustomer{
		ExternalID:   src.ContactID,
		SourceSystem: platform.PlatformXero,
		DisplayName:  src.Name,
		GivenName:    src.FirstName,
		FamilyName:   src.LastName,
		Email:        src.EmailAddress,
		Currency:     src.DefaultCurrency,
		Active:       src.ContactStatus != "ARCHIVED",
	}
	applyContactDetails(&src, &out.Phone, &out.AddressLine1, &out.City, &out.Region, &out.PostalCode, &out.Country)
	if src.Balances != nil && src.Balances.AccountsReceivable != nil {
		out.Balance = src.Balances.AccountsReceivable.Outstanding
	}
	return out, nil
}

func mapVendor(raw json.RawMessage) (*model.UnifiedVendor, error) {
	var src xContact
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed contact payload: %w", err)
	}
	if src.ContactID == "" {
		return nil, fmt.Errorf("contact record missing ContactID")
	}

	out := &model.UnifiedVendor{
		ExternalID:    src.ContactID,
		SourceSystem:  platform.PlatformXero,
		DisplayName:   src.Name,
		GivenName:     src.FirstName,
		FamilyName:    src.LastName,
		Email:         src.EmailAddress,
		AccountNumber: src.AccountNumber,
		Currency:      src.DefaultCurrency,
		Active:        src.ContactStatus != "ARCHIVED",
	}
	applyContactDetails(&src, &out.Phone, &out.AddressLine1, &out.City, &out.Region, &out.PostalCode, &out.Country)
	if src.Balances != nil && src.Balances.AccountsPayable != nil {
		out.Balance = src.Balances.AccountsPayable.Outstanding
	}
	return out, nil
}

// applyContactDetails copies the default phone and the first street
// address off a contact. Xero keys both by type; POBOX is the default
// address role for contacts.
func applyContactDetails(src *xContact, phone, line1, city, region, postalCode, country *string) {
	for _, p := range src.Phones {
		if p.PhoneNumber == "" {
			continue
		}
		if p.PhoneType == "DEFAULT" || *phone == "" {
			*phone = p.PhoneNumber
		}
	}
	for _, a := range src.Addresses {
		if a.AddressLine1 == "" && a.City == "" {
			continue
		}
		if a.AddressType == "STREET" || *line1 == "" {
			*line1 = a.AddressLine1
			*city = a.City
			*region = a.Region
			*postalCode = a.PostalCode
			*country = a.Country
		}
	}
}

func mapItem(raw json.RawMessage) (*model.UnifiedItem, error) {
	var src xItem
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed item payload: %w", err)
	}
	if src.ItemID == "" {
		return nil, fmt.Errorf("item record missing ItemID")
	}

	itemType := "Service"
	if src.IsTracked {
		itemType = "Inventory"
	}
	out := &model.UnifiedItem{
		ExternalID:     src.ItemID,
		SourceSystem:   platform.PlatformXero,
		Name:           src.Name,
		SKU:            src.Code,
		Description:    src.Description,
		ItemType:       itemType,
		QuantityOnHand: src.QuantityOnHand,
		Active:         true,
	}
	if src.SalesDetails != nil {
		out.UnitPrice = src.SalesDetails.UnitPrice
		out.IncomeAccount = src.SalesDetails.AccountCode
	}
	if src.PurchaseDetail != nil {
		out.PurchaseCost = src.PurchaseDetail.UnitPrice
		out.ExpenseAccount = src.PurchaseDetail.AccountCode
	}
	return out, nil
}

func mapInvoice(raw json.RawMessage) (*model.UnifiedInvoice, error) {
	var src xInvoice
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed invoice payload: %w", err)
	}
	if src.InvoiceID == "" {
		return nil, fmt.Errorf("invoice record missing InvoiceID")
	}

	out := &model.UnifiedInvoice{
		ExternalID:    src.InvoiceID,
		SourceSystem:  platform.PlatformXero,
		InvoiceNumber: src.InvoiceNumber,
		IssueDate:     parseXeroDate(src.Date),
		DueDate:       parseXeroDate(src.DueDate),
		Subtotal:      src.SubTotal,
		TaxTotal:      src.TotalTax,
		Total:         src.Total,
		Balance:       src.AmountDue,
		Currency:      src.CurrencyCode,
		Status:        docStatus(src.Status),
		LineItems:     mapLines(src.LineItems),
	}
	if src.Contact != nil {
		out.CustomerExternalID = src.Contact.ContactID
		out.CustomerName = src.Contact.Name
	}
	return out, nil
}

func mapBill(raw json.RawMessage) (*model.UnifiedBill, error) {
	var src xInvoice
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed bill payload: %w", err)
	}
	if src.InvoiceID == "" {
		return nil, fmt.Errorf("bill record missing InvoiceID")
	}

	out := &model.UnifiedBill{
		ExternalID:   src.InvoiceID,
		SourceSystem: platform.PlatformXero,
		IssueDate:    parseXeroDate(src.Date),
		DueDate:      parseXeroDate(src.DueDate),
		Subtotal:     src.SubTotal,
		TaxTotal:     src.TotalTax,
		Total:        src.Total,
		Balance:      src.AmountDue,
		Currency:     src.CurrencyCode,
		Status:       docStatus(src.Status),
		LineItems:    mapLines(src.LineItems),
	}
	if src.Contact != nil {
		out.VendorExternalID = src.Contact.ContactID
		out.VendorName = src.Contact.Name
	}
	return out, nil
}

func mapAccount(raw json.RawMessage) (*model.ChartOfAccount, error) {
	var src xAccount
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("malformed account payload: %w", err)
	}
	if src.AccountID == "" {
		return nil, fmt.Errorf("account record missing AccountID")
	}

	return &model.ChartOfAccount{
		ExternalID:     src.AccountID,
		SourceSystem:   platform.PlatformXero,
		Name:           src.Name,
		Code:           src.Code,
		AccountType:    src.Type,
		Classification: src.Class,
		Currency:       src.CurrencyCode,
		Active:         src.Status != "ARCHIVED",
	}, nil
}

func docStatus(status string) string {
	switch status {
	case "DRAFT", "SUBMITTED":
		return model.DocStatusDraft
	case "AUTHORISED":
		return model.DocStatusAuthorised
	case "PAID":
		return model.DocStatusPaid
	case "VOIDED", "DELETED":
		return model.DocStatusVoided
	default:
		return model.DocStatusOpen
	}
}

func mapLines(lines []xLineItem) datatypes.JSON {
	out := make([]model.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.InvoiceLine{
			Description:    l.Description,
			ItemExternalID: l.ItemCode,
			Quantity:       l.Quantity,
			UnitAmount:     l.UnitAmount,
			Amount:         l.LineAmount,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}
