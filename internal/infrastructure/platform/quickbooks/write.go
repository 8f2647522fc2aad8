package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// writePaths maps unified entity types to the write endpoint path segment.
var writePaths = map[platform.EntityType]string{
	platform.EntityCustomers: "customer",
	platform.EntityVendors:   "vendor",
	platform.EntityItems:     "item",
	platform.EntityInvoices:  "invoice",
	platform.EntityBills:     "bill",
	platform.EntityAccounts:  "account",
}

// qbWriteEnvelope wraps a write response, keyed by the entity name.
type qbWriteEnvelope struct {
	Customer *qbWriteResult `json:"Customer"`
	Vendor   *qbWriteResult `json:"Vendor"`
	Item     *qbWriteResult `json:"Item"`
	Invoice  *qbWriteResult `json:"Invoice"`
	Bill     *qbWriteResult `json:"Bill"`
	Account  *qbWriteResult `json:"Account"`
}

type qbWriteResult struct {
	ID        string `json:"Id"`
	SyncToken string `json:"SyncToken"`
}

func (e *qbWriteEnvelope) result(entity platform.EntityType) (*qbWriteResult, error) {
	var r *qbWriteResult
	switch entity {
	case platform.EntityCustomers:
		r = e.Customer
	case platform.EntityVendors:
		r = e.Vendor
	case platform.EntityItems:
		r = e.Item
	case platform.EntityInvoices:
		r = e.Invoice
	case platform.EntityBills:
		r = e.Bill
	case platform.EntityAccounts:
		r = e.Account
	}
	if r == nil || r.ID == "" {
		return nil, fmt.Errorf("quickbooks write response missing %s body", entity)
	}
	return r, nil
}

// CreateRecord pushes a new record and returns the platform-assigned id.
func (c *Connector) CreateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	payload, err := c.buildPayload(entity, record)
	if err != nil {
		return nil, err
	}
	return c.postWrite(ctx, conn, entity, payload, "")
}

// UpdateRecord performs a full update. QuickBooks requires the current
// SyncToken on every update, so the live record is read first.
func (c *Connector) UpdateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	payload, err := c.buildPayload(entity, record)
	if err != nil {
		return nil, err
	}

	externalID, _ := payload["Id"].(string)
	if externalID == "" {
		return nil, fmt.Errorf("update requires an external id")
	}
	syncToken, err := c.currentSyncToken(ctx, conn, entity, externalID)
	if err != nil {
		return nil, err
	}
	payload["SyncToken"] = syncToken

	return c.postWrite(ctx, conn, entity, payload, "")
}

// SetRecordStatus toggles a record active or inactive with a sparse update.
func (c *Connector) SetRecordStatus(ctx context.Context, conn *model.Connection, entity platform.EntityType, externalID string, active bool) error {
	syncToken, err := c.currentSyncToken(ctx, conn, entity, externalID)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"Id":        externalID,
		"SyncToken": syncToken,
		"Active":    active,
		"sparse":    true,
	}
	_, err = c.postWrite(ctx, conn, entity, payload, "")
	return err
}

// DeleteInvoice voids or deletes an invoice on the platform.
func (c *Connector) DeleteInvoice(ctx context.Context, conn *model.Connection, externalID string, void bool) error {
	syncToken, err := c.currentSyncToken(ctx, conn, platform.EntityInvoices, externalID)
	if err != nil {
		return err
	}
	operation := "delete"
	if void {
		operation = "void"
	}
	payload := map[string]any{
		"Id":        externalID,
		"SyncToken": syncToken,
	}
	_, err = c.postWrite(ctx, conn, platform.EntityInvoices, payload, operation)
	return err
}

func (c *Connector) postWrite(ctx context.Context, conn *model.Connection, entity platform.EntityType, payload map[string]any, operation string) (*connector.WriteResult, error) {
	path, ok := writePaths[entity]
	if !ok {
		return nil, fmt.Errorf("quickbooks does not write entity type %q", entity)
	}

	writeURL := c.companyURL(conn.RealmID, path) + "?minorversion=" + minorVersion
	if operation != "" {
		writeURL += "&operation=" + operation
	}

	var envelope qbWriteEnvelope
	if err := c.doJSON(ctx, http.MethodPost, writeURL, conn.AccessToken, payload, &envelope); err != nil {
		return nil, err
	}
	result, err := envelope.result(entity)
	if err != nil {
		return nil, err
	}
	return &connector.WriteResult{ExternalID: result.ID, SyncToken: result.SyncToken}, nil
}

// currentSyncToken reads the live record to get the SyncToken a write must
// carry. A stale token surfaces as a conflict from the platform.
func (c *Connector) currentSyncToken(ctx context.Context, conn *model.Connection, entity platform.EntityType, externalID string) (string, error) {
	path, ok := writePaths[entity]
	if !ok {
		return "", fmt.Errorf("quickbooks does not write entity type %q", entity)
	}

	readURL := c.companyURL(conn.RealmID, path+"/"+externalID) + "?minorversion=" + minorVersion
	var envelope qbWriteEnvelope
	if err := c.doJSON(ctx, http.MethodGet, readURL, conn.AccessToken, nil, &envelope); err != nil {
		return "", err
	}
	result, err := envelope.result(entity)
	if err != nil {
		return "", err
	}
	return result.SyncToken, nil
}

// buildPayload converts a unified record into the QuickBooks request body.
// Records created locally carry no external id yet; updates include it.
func (c *Connector) buildPayload(entity platform.EntityType, record any) (map[string]any, error) {
	switch r := record.(type) {
	case *model.UnifiedCustomer:
		return customerPayload(r), nil
	case *model.UnifiedVendor:
		return vendorPayload(r), nil
	case *model.UnifiedItem:
		return itemPayload(r), nil
	case *model.UnifiedInvoice:
		return invoicePayload(r)
	case *model.UnifiedBill:
		return billPayload(r)
	default:
		return nil, fmt.Errorf("quickbooks cannot build a %s payload from %T", entity, record)
	}
}

func customerPayload(r *model.UnifiedCustomer) map[string]any {
	payload := map[string]any{
		"DisplayName": r.DisplayName,
	}
	if r.ExternalID != "" {
		payload["Id"] = r.ExternalID
	}
	if r.GivenName != "" {
		payload["GivenName"] = r.GivenName
	}
	if r.FamilyName != "" {
		payload["FamilyName"] = r.FamilyName
	}
	if r.CompanyName != "" {
		payload["CompanyName"] = r.CompanyName
	}
	if r.Email != "" {
		payload["PrimaryEmailAddr"] = map[string]any{"Address": r.Email}
	}
	if r.Phone != "" {
		payload["PrimaryPhone"] = map[string]any{"FreeFormNumber": r.Phone}
	}
	if addr := addressPayload(r.AddressLine1, r.City, r.Region, r.PostalCode, r.Country); addr != nil {
		payload["BillAddr"] = addr
	}
	return payload
}

func vendorPayload(r *model.UnifiedVendor) map[string]any {
	payload := map[string]any{
		"DisplayName": r.DisplayName,
	}
	if r.ExternalID != "" {
		payload["Id"] = r.ExternalID
	}
	if r.GivenName != "" {
		payload["GivenName"] = r.GivenName
	}
	if r.FamilyName != "" {
		payload["FamilyName"] = r.FamilyName
	}
	if r.CompanyName != "" {
		payload["CompanyName"] = r.CompanyName
	}
	if r.AccountNumber != "" {
		payload["AcctNum"] = r.AccountNumber
	}
	if r.Email != "" {
		payload["PrimaryEmailAddr"] = map[string]any{"Address": r.Email}
	}
	if r.Phone != "" {
		payload["PrimaryPhone"] = map[string]any{"FreeFormNumber": r.Phone}
	}
	if addr := addressPayload(r.AddressLine1, r.City, r.Region, r.PostalCode, r.Country); addr != nil {
		payload["BillAddr"] = addr
	}
	return payload
}

func itemPayload(r *model.UnifiedItem) map[string]any {
	itemType := r.ItemType
	if itemType == "" {
		itemType = "Service"
	}
	payload := map[string]any{
		"Name": r.Name,
		"Type": itemType,
	}
	if r.ExternalID != "" {
		payload["Id"] = r.ExternalID
	}
	if r.SKU != "" {
		payload["Sku"] = r.SKU
	}
	if r.Description != "" {
		payload["Description"] = r.Description
	}
	if !r.UnitPrice.IsZero() {
		payload["UnitPrice"] = r.UnitPrice
	}
	if !r.PurchaseCost.IsZero() {
		payload["PurchaseCost"] = r.PurchaseCost
	}
	if r.IncomeAccount != "" {
		payload["IncomeAccountRef"] = map[string]any{"value": r.IncomeAccount}
	}
	if r.ExpenseAccount != "" {
		payload["ExpenseAccountRef"] = map[string]any{"value": r.ExpenseAccount}
	}
	return payload
}

func invoicePayload(r *model.UnifiedInvoice) (map[string]any, error) {
	if r.CustomerExternalID == "" {
		return nil, fmt.Errorf("invoice requires a customer reference")
	}
	lines, err := linePayload(r.LineItems, "SalesItemLineDetail")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"CustomerRef": map[string]any{"value": r.CustomerExternalID},
		"Line":        lines,
	}
	if r.ExternalID != "" {
		payload["Id"] = r.ExternalID
	}
	if r.InvoiceNumber != "" {
		payload["DocNumber"] = r.InvoiceNumber
	}
	if r.IssueDate != nil {
		payload["TxnDate"] = r.IssueDate.Format("2006-01-02")
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
	lines, err := linePayload(r.LineItems, "ItemBasedExpenseLineDetail")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"VendorRef": map[string]any{"value": r.VendorExternalID},
		"Line":      lines,
	}
	if r.ExternalID != "" {
		payload["Id"] = r.ExternalID
	}
	if r.IssueDate != nil {
		payload["TxnDate"] = r.IssueDate.Format("2006-01-02")
	}
	if r.DueDate != nil {
		payload["DueDate"] = r.DueDate.Format("2006-01-02")
	}
	return payload, nil
}

func linePayload(stored []byte, detailType string) ([]map[string]any, error) {
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
		detail := map[string]any{
			"Qty":       l.Quantity,
			"UnitPrice": l.UnitAmount,
		}
		if l.ItemExternalID != "" {
			detail["ItemRef"] = map[string]any{"value": l.ItemExternalID}
		}
		out = append(out, map[string]any{
			"DetailType":  detailType,
			"Amount":      l.Amount,
			"Description": l.Description,
			detailType:    detail,
		})
	}
	return out, nil
}

func addressPayload(line1, city, region, postalCode, country string) map[string]any {
	if line1 == "" && city == "" && region == "" && postalCode == "" && country == "" {
		return nil
	}
	addr := map[string]any{}
	if line1 != "" {
		addr["Line1"] = line1
	}
	if city != "" {
		addr["City"] = city
	}
	if region != "" {
		addr["CountrySubDivisionCode"] = region
	}
	if postalCode != "" {
		addr["PostalCode"] = postalCode
	}
	if country != "" {
		addr["Country"] = country
	}
	return addr
}
