package quickbooks_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/config"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/infrastructure/platform/quickbooks"
)

func newConnector() *quickbooks.Connector {
	return quickbooks.NewConnector(config.QuickBooksConfig{Environment: "sandbox"}, zap.NewNop())
}

func TestMapRecord_Customer(t *testing.T) {
	cn := newConnector()

	t.Run("full record", func(t *testing.T) {
		raw := json.RawMessage(`{
			"Id": "58",
			"DisplayName": "Acme Supplies",
			"GivenName": "Jane",
			"FamilyName": "Doe",
			"CompanyName": "Acme",
			"PrimaryEmailAddr": {"Address": "jane@acme.test"},
			"PrimaryPhone": {"FreeFormNumber": "555-0101"},
			"BillAddr": {"Line1": "1 Main St", "City": "Springfield", "CountrySubDivisionCode": "CA", "PostalCode": "90001", "Country": "US"},
			"Balance": 120.50,
			"CurrencyRef": {"value": "USD"},
			"Active": true
		}`)

		rec, err := cn.MapRecord(platform.EntityCustomers, raw)
		require.NoError(t, err)

		customer, ok := rec.(*model.UnifiedCustomer)
		require.True(t, ok)
		assert.Equal(t, "58", customer.ExternalID)
		assert.Equal(t, platform.PlatformQuickBooks, customer.SourceSystem)
		assert.Equal(t, "Acme Supplies", customer.DisplayName)
		assert.Equal(t, "jane@acme.test", customer.Email)
		assert.Equal(t, "555-0101", customer.Phone)
		assert.Equal(t, "CA", customer.Region)
		assert.Equal(t, "USD", customer.Currency)
		assert.True(t, customer.Balance.Equal(decimal.NewFromFloat(120.50)))
		assert.True(t, customer.Active)
	})

	t.Run("absent optional fields map to zero values", func(t *testing.T) {
		rec, err := cn.MapRecord(platform.EntityCustomers, json.RawMessage(`{"Id": "9", "DisplayName": "Bare"}`))
		require.NoError(t, err)

		customer := rec.(*model.UnifiedCustomer)
		assert.Empty(t, customer.Email)
		assert.Empty(t, customer.City)
		assert.True(t, customer.Balance.IsZero())
		// Absent Active defaults to true.
		assert.True(t, customer.Active)
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		_, err := cn.MapRecord(platform.EntityCustomers, json.RawMessage(`{"DisplayName": "NoId"}`))
		assert.Error(t, err)
	})

	t.Run("inactive flag is preserved", func(t *testing.T) {
		rec, err := cn.MapRecord(platform.EntityCustomers, json.RawMessage(`{"Id": "10", "DisplayName": "Gone", "Active": false}`))
		require.NoError(t, err)
		assert.False(t, rec.(*model.UnifiedCustomer).Active)
	})
}

func TestMapRecord_Invoice(t *testing.T) {
	cn := newConnector()

	raw := json.RawMessage(`{
		"Id": "145",
		"SyncToken": "3",
		"DocNumber": "INV-1042",
		"CustomerRef": {"value": "58", "name": "Acme Supplies"},
		"TxnDate": "2026-02-10",
		"DueDate": "2026-03-12",
		"TotalAmt": 1100.00,
		"Balance": 1100.00,
		"TxnTaxDetail": {"TotalTax": 100.00},
		"CurrencyRef": {"value": "USD"},
		"Line": [
			{"Description": "Widgets", "Amount": 1000.00, "DetailType": "SalesItemLineDetail",
			 "SalesItemLineDetail": {"ItemRef": {"value": "11"}, "Qty": 10, "UnitPrice": 100.00}}
		]
	}`)

	rec, err := cn.MapRecord(platform.EntityInvoices, raw)
	require.NoError(t, err)

	invoice, ok := rec.(*model.UnifiedInvoice)
	require.True(t, ok)
	assert.Equal(t, "145", invoice.ExternalID)
	assert.Equal(t, "INV-1042", invoice.InvoiceNumber)
	assert.Equal(t, "58", invoice.CustomerExternalID)
	assert.Equal(t, "3", invoice.SyncToken)
	require.NotNil(t, invoice.IssueDate)
	assert.Equal(t, "2026-02-10", invoice.IssueDate.Format("2006-01-02"))
	assert.True(t, invoice.Total.Equal(decimal.NewFromInt(1100)))
	assert.True(t, invoice.TaxTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, invoice.Subtotal.Equal(decimal.NewFromInt(1000)))
	// Open balance keeps the invoice open.
	assert.Equal(t, model.DocStatusOpen, invoice.Status)

	var lines []model.InvoiceLine
	require.NoError(t, json.Unmarshal(invoice.LineItems, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "11", lines[0].ItemExternalID)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestMapRecord_InvoiceStatusPaid(t *testing.T) {
	cn := newConnector()

	rec, err := cn.MapRecord(platform.EntityInvoices, json.RawMessage(`{"Id": "146", "TotalAmt": 50.00, "Balance": 0}`))
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusPaid, rec.(*model.UnifiedInvoice).Status)
}

func TestMapRecord_Account(t *testing.T) {
	cn := newConnector()

	raw := json.RawMessage(`{
		"Id": "35",
		"Name": "Sales of Product Income",
		"AcctNum": "4000",
		"AccountType": "Income",
		"AccountSubType": "SalesOfProductIncome",
		"Classification": "Revenue",
		"CurrentBalance": 0,
		"Active": true
	}`)

	rec, err := cn.MapRecord(platform.EntityAccounts, raw)
	require.NoError(t, err)

	account, ok := rec.(*model.ChartOfAccount)
	require.True(t, ok)
	assert.Equal(t, "35", account.ExternalID)
	assert.Equal(t, "4000", account.Code)
	assert.Equal(t, "Income", account.AccountType)
	assert.Equal(t, "Revenue", account.Classification)
}

func TestMapRecord_UnknownEntity(t *testing.T) {
	cn := newConnector()
	_, err := cn.MapRecord(platform.EntityType("payments"), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestAuthorizeURL(t *testing.T) {
	cn := quickbooks.NewConnector(config.QuickBooksConfig{
		ClientID:    "client-1",
		RedirectURI: "https://app.test/callback",
	}, zap.NewNop())

	authURL := cn.AuthorizeURL("state-abc")

	assert.Contains(t, authURL, "https://appcenter.intuit.com/connect/oauth2?")
	assert.Contains(t, authURL, "client_id=client-1")
	assert.Contains(t, authURL, "state=state-abc")
	assert.Contains(t, authURL, "response_type=code")
}
