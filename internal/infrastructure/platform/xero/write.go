package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// CreateRecord pushes a new record and returns the platform-assigned id.
func (c *Connector) CreateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	endpoint, _, err := endpointFor(entity)
	if err != nil {
		return nil, err
	}
	payload, err := c.buildPayload(entity, record)
	if err != nil {
		return nil, err
	}
	return c.postWrite(ctx, conn, entity, endpointURL(endpoint), payload)
}

// UpdateRecord posts the record to its item endpoint. Xero has no
// platform-side concurrency stamp; last write wins.
func (c *Connector) UpdateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	endpoint, _, err := endpointFor(entity)
	if err != nil {
		return nil, err
	}
	payload, err := c.buildPayload(entity, record)
	if err != nil {
		return nil, err
	}
	externalID := externalIDOf(payload, endpoint)
	if externalID == "" {
		return nil, fmt.Errorf("update requires an external id")
	}
	return c.postWrite(ctx, conn, entity, endpointURL(endpoint+"/"+externalID), payload)
}

// SetRecordStatus archives or restores a record. Xero models this as a
// status field on contacts and accounts; items cannot be archived through
// the API.
func (c *Connector) SetRecordStatus(ctx context.Context, conn *model.Connection, entity platform.EntityType, externalID string, active bool) error {
	endpoint, _, err := endpointFor(entity)
	if err != nil {
		return err
	}

	status := "ARCHIVED"
	if active {
		status = "ACTIVE"
	}

	var payload map[string]any
	switch endpoint {
	case "Contacts":
		payload = map[string]any{"ContactID": externalID, "ContactStatus": status}
	case "Accounts":
		payload = map[string]any{"AccountID": externalID, "Status": status}
	default:
		return fmt.Errorf("xero cannot toggle %s status: %w", entity, domainerrors.ErrUnsupportedOperation)
	}

	_, err = c.postWrite(ctx, conn, entity, endpointURL(endpoint+"/"+externalID), payload)
	return err
}

// DeleteInvoice voids an authorised invoice or deletes a draft one.
func (c *Connector) DeleteInvoice(ctx context.Context, conn *model.Connection, externalID string, void bool) error {
	status := "DELETED"
	if void {
		status = "VOIDED"
	}
	payload := map[string]any{"InvoiceID": externalID, "Status": status}
	_, err := c.postWrite(ctx, conn, platform.EntityInvoices, endpointURL("Invoices/"+externalID), payload)
	return err
}

func (c *Connector) postWrite(ctx context.Context, conn *model.Connection, entity platform.EntityType, writeURL string, payload map[string]any) (*connector.WriteResult, error) {
	var envelope xWriteEnvelope
	if err := c.doJSON(ctx, http.MethodPost, writeURL, conn.AccessToken, conn.RealmID, payload, &envelope); err != nil {
		return nil, err
	}

	var externalID string
	switch {
	case len(envelope.Contacts) > 0:
		externalID = envelope.Contacts[0].ContactID
	case len(envelope.Items) > 0:
		externalID = envelope.Items[0].ItemID
	case len(envelope.Invoices) > 0:
		externalID = envelope.Invoices[0].InvoiceID
	case len(envelope.Accounts) > 0:
		externalID = envelope.Accounts[0].AccountID
	}
	if externalID == "" {
		return nil, fmt.Errorf("xero write response missing %s body", entity)
	}
	return &connector.WriteResult{ExternalID: externalID}, nil
}

func externalIDOf(payload map[string]any, endpoint string) string {
	key := map[string]string{
		"Contacts": "ContactID",
		"Items":    "ItemID",
		"Invoices": "InvoiceID",
		"Accounts": "AccountID",
	}[endpoint]
	id, _ := payload[key].(string)
	return id
}

// buildPayload converts a unified record into the Xero request body.
func (c *Connector) buildPayload(entity platform.EntityType, record any) (map[string]any, error) {
	switch r := record.(type) {
	case *model.UnifiedCustomer:
		return contactPayload(r.ExternalID, r.DisplayName, r.GivenName, r.FamilyName,
			r.Email, r.Phone, r.AddressLine1, r.City, r.Region, r.PostalCode, r.Country, ""), nil
	case *model.UnifiedVendor:
		return contactPayload(r.ExternalID, r.DisplayName, r.GivenName, r.FamilyName,
			r.Email, r.Phone, r.AddressLine1, r.City, r.Region, r.PostalCode, r.Country, r.AccountNumber), nil
	case *model.UnifiedItem:
		return itemPayload(r), nil
	case *model.UnifiedInvoice:
		return invoicePayload(r)
	case *model.UnifiedBill:
		return billPayload(r)
	default:
		return nil, fmt.Errorf("xero cannot build a %s payload from %T", entity, record)
	}
}

func contactPayload(externalID, name, firstName, lastName, email, phone, line1, city, region, postalCode, country, accountNumber string) map[string]any {
	payload := map[string]any{
		"Name": name,
	}
	if externalID != "" {
		payload["ContactID"] = externalID
	}
	if firstName != "" {
		payload["FirstName"] = firstName
	}
	if lastName != "" {
		payload["LastName"] = lastName
	}
	if email != "" {
		payload["EmailAddress"] = email
	}
	if accountNumber != "" {
		payload["AccountNumber"] = accountNumber
	}
	if phone != "" {
		payload["Phones"] = []map[string]any{{
			"PhoneType":   "DEFAULT",
			"PhoneNumber": phone,
		}}
	}
	if line1 != "" || city != "" {
		payload["Addresses"] = []map[string]any{{
			"AddressType":  "STREET",
			"AddressLine1": line1,
			"City":         city,
			"Region":       region,
			"PostalCode":   postalCode,
			"Country":      country,
		}}
	}
	return payload
}

func itemPayload(r *model.UnifiedItem) map[string]any {
	code := r.SKU
	if code == "" {
		code = r.Name
	}
	payload := map[string]any{
		"Code": code,
		"Name": r.Name,
	}
	if r.ExternalID != "" {
		payload["ItemID"] = r.ExternalID
	}
	if r.Description != "" {
		payload["Description"] = r.Description
	}
	if !r.UnitPrice.IsZero() || r.IncomeAccount != "" {
		details := map[string]any{"UnitPrice": r.UnitPrice}
		if r.IncomeAccount != "" {
			details["AccountCode"] = r.IncomeAccount
		}
		payload["SalesDetails"] = details
	}
	if !r.PurchaseCost.IsZero() || r.ExpenseAccount != "" {
		details := map[string]any{"UnitPrice": r.PurchaseCost}
		if r.ExpenseAccount != "" {
			details["AccountCode"] = r.ExpenseAccount
		}
		payload["PurchaseDetails"] = details
	}
	return payload
}

func invoicePayload(r *model.UnifiedInvoice) (map[string]any, error) {
	if r.CustomerExternalID == "" {
		return nil, fmt.Errorf("invoice requires a customer reference")
	}
	lines, err := linePayload(r.LineItems)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"Type":      "ACCREC",
		"Contact":   map[string]any{"ContactID": r.CustomerExternalID},
		"LineItems": lines,
		"Status":    "AUTHORISED",
	}
	if r.ExternalID != "" {
		payload["InvoiceID"] = r.ExternalID
	}
	if r.InvoiceNumber != "" {
		payload["InvoiceNumber"] = r.InvoiceNumber
	}
	if r.IssueDate != nil {
		payload["Date"] = r.IssueDate.Format("2006-01-02")
	}
	if r.DueDate != nil {
		payload["DueDate"] = r.DueDate.Format("2006-01-02")
	}
	return payload, nil
}

func billPayload(r *model.UnifiedBill) (map[string]any, error) {
	if r.VendorExternalID == "" {
		return nil, fmt.Errorf("bill requires a vendor reference")
	}
	lines, err := linePayload(r.LineItems)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"Type":      "ACCPAY",
		"Contact":   map[string]any{"ContactID": r.VendorExternalID},
		"LineItems": lines,
		"Status":    "AUTHORISED",
	}
	if r.ExternalID != "" {
		payload["InvoiceID"] = r.ExternalID
	}
	if r.IssueDate != nil {
		payload["Date"] = r.IssueDate.Format("2006-01-02")
	}
	if r.DueDate != nil {
		payload["DueDate"] = r.DueDate.Format("2006-01-02")
	}
	return payload, nil
}

func linePayload(stored []byte) ([]map[string]any, error) {
	var lines []model.InvoiceLine
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &lines); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("document requires at least one line item")
	}

	out := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		line := map[string]any{
			"Description": l.Description,
			"Quantity":    l.Quantity,
			"UnitAmount":  l.UnitAmount,
			"LineAmount":  l.Amount,
		}
		if l.ItemExternalID != "" {
			line["ItemCode"] = l.ItemExternalID
		}
		out = append(out, line)
	}
	return out, nil
}
