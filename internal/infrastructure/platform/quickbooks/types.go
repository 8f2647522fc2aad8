package quickbooks

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Typed response structures for the QuickBooks Online v3 API. Optional
// fields are pointers so absent values map to zero values instead of
// failing the whole record.

type qbRef struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

type qbEmail struct {
	Address string `json:"Address"`
}

type qbPhone struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type qbAddress struct {
	Line1                  string `json:"Line1"`
	City                   string `json:"City"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode"`
	PostalCode             string `json:"PostalCode"`
	Country                string `json:"Country"`
}

type qbCustomer struct {
	ID               string          `json:"Id"`
	SyncToken        string          `json:"SyncToken"`
	DisplayName      string          `json:"DisplayName"`
	GivenName        string          `json:"GivenName"`
	FamilyName       string          `json:"FamilyName"`
	CompanyName      string          `json:"CompanyName"`
	PrimaryEmailAddr *qbEmail        `json:"PrimaryEmailAddr"`
	PrimaryPhone     *qbPhone        `json:"PrimaryPhone"`
	BillAddr         *qbAddress      `json:"BillAddr"`
	Balance          decimal.Decimal `json:"Balance"`
	CurrencyRef      *qbRef          `json:"CurrencyRef"`
	Active           *bool           `json:"Active"`
}

type qbVendor struct {
	ID               string          `json:"Id"`
	SyncToken        string          `json:"SyncToken"`
	DisplayName      string          `json:"DisplayName"`
	GivenName        string          `json:"GivenName"`
	FamilyName       string          `json:"FamilyName"`
	CompanyName      string          `json:"CompanyName"`
	AcctNum          string          `json:"AcctNum"`
	PrimaryEmailAddr *qbEmail        `json:"PrimaryEmailAddr"`
	PrimaryPhone     *qbPhone        `json:"PrimaryPhone"`
	BillAddr         *qbAddress      `json:"BillAddr"`
	Balance          decimal.Decimal `json:"Balance"`
	CurrencyRef      *qbRef          `json:"CurrencyRef"`
	Active           *bool           `json:"Active"`
}

type qbItem struct {
	ID                string          `json:"Id"`
	SyncToken         string          `json:"SyncToken"`
	Name              string          `json:"Name"`
	Sku               string          `json:"Sku"`
	Description       string          `json:"Description"`
	Type              string          `json:"Type"`
	UnitPrice         decimal.Decimal `json:"UnitPrice"`
	PurchaseCost      decimal.Decimal `json:"PurchaseCost"`
	QtyOnHand         decimal.Decimal `json:"QtyOnHand"`
	IncomeAccountRef  *qbRef          `json:"IncomeAccountRef"`
	ExpenseAccountRef *qbRef          `json:"ExpenseAccountRef"`
	Active            *bool           `json:"Active"`
}

type qbTaxDetail struct {
	TotalTax decimal.Decimal `json:"TotalTax"`
}

type qbSalesItemLineDetail struct {
	ItemRef   *qbRef          `json:"ItemRef"`
	Qty       decimal.Decimal `json:"Qty"`
	UnitPrice decimal.Decimal `json:"UnitPrice"`
}

type qbItemBasedExpenseLineDetail struct {
	ItemRef   *qbRef          `json:"ItemRef"`
	Qty       decimal.Decimal `json:"Qty"`
	UnitPrice decimal.Decimal `json:"UnitPrice"`
}

type qbLine struct {
	Description              string                        `json:"Description"`
	Amount                   decimal.Decimal               `json:"Amount"`
	DetailType               string                        `json:"DetailType"`
	SalesItemLineDetail      *qbSalesItemLineDetail        `json:"SalesItemLineDetail"`
	ItemBasedExpenseLineDtl  *qbItemBasedExpenseLineDetail `json:"ItemBasedExpenseLineDetail"`
}

type qbInvoice struct {
	ID           string          `json:"Id"`
	SyncToken    string          `json:"SyncToken"`
	DocNumber    string          `json:"DocNumber"`
	CustomerRef  *qbRef          `json:"CustomerRef"`
	TxnDate      string          `json:"TxnDate"`
	DueDate      string          `json:"DueDate"`
	TotalAmt     decimal.Decimal `json:"TotalAmt"`
	Balance      decimal.Decimal `json:"Balance"`
	TxnTaxDetail *qbTaxDetail    `json:"TxnTaxDetail"`
	CurrencyRef  *qbRef          `json:"CurrencyRef"`
	Line         []qbLine        `json:"Line"`
}

type qbBill struct {
	ID           string          `json:"Id"`
	SyncToken    string          `json:"SyncToken"`
	VendorRef    *qbRef          `json:"VendorRef"`
	TxnDate      string          `json:"TxnDate"`
	DueDate      string          `json:"DueDate"`
	TotalAmt     decimal.Decimal `json:"TotalAmt"`
	Balance      decimal.Decimal `json:"Balance"`
	TxnTaxDetail *qbTaxDetail    `json:"TxnTaxDetail"`
	CurrencyRef  *qbRef          `json:"CurrencyRef"`
	Line         []qbLine        `json:"Line"`
}

type qbAccount struct {
	ID             string          `json:"Id"`
	SyncToken      string          `json:"SyncToken"`
	Name           string          `json:"Name"`
	AcctNum        string          `json:"AcctNum"`
	AccountType    string          `json:"AccountType"`
	AccountSubType string          `json:"AccountSubType"`
	Classification string          `json:"Classification"`
	CurrentBalance decimal.Decimal `json:"CurrentBalance"`
	CurrencyRef    *qbRef          `json:"CurrencyRef"`
	Active         *bool           `json:"Active"`
}

// qbQueryResponse is the envelope around a query result page. Records are
// kept raw so pagination can be decided before per-record mapping.
type qbQueryResponse struct {
	QueryResponse struct {
		Customer      []json.RawMessage `json:"Customer"`
		Vendor        []json.RawMessage `json:"Vendor"`
		Item          []json.RawMessage `json:"Item"`
		Invoice       []json.RawMessage `json:"Invoice"`
		Bill          []json.RawMessage `json:"Bill"`
		Account       []json.RawMessage `json:"Account"`
		StartPosition int               `json:"startPosition"`
		MaxResults    int               `json:"maxResults"`
	} `json:"QueryResponse"`
}

type qbTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type qbCompanyInfoResponse struct {
	CompanyInfo struct {
		CompanyName string `json:"CompanyName"`
	} `json:"CompanyInfo"`
}

type qbFaultResponse struct {
	Fault struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
	} `json:"Fault"`
}
