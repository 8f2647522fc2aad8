package xero

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Typed response structures for the Xero Accounting API. Contacts carry
// both the customer and supplier roles; invoices carry ACCREC and ACCPAY
// documents.

type xTokenResponse struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"x_refresh_token_expires_in"`
	TokenType             string `json:"token_type"`
}

type xTenant struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	TenantType string `json:"tenantType"`
}

type xAddress struct {
	AddressType  string `json:"AddressType"`
	AddressLine1 string `json:"AddressLine1"`
	City         string `json:"City"`
	Region       string `json:"Region"`
	PostalCode   string `json:"PostalCode"`
	Country      string `json:"Country"`
}

type xPhone struct {
	PhoneType   string `json:"PhoneType"`
	PhoneNumber string `json:"PhoneNumber"`
}

type xBalance struct {
	Outstanding decimal.Decimal `json:"Outstanding"`
}

type xContact struct {
	ContactID     string     `json:"ContactID"`
	ContactStatus string     `json:"ContactStatus"`
	Name          string     `json:"Name"`
	FirstName     string     `json:"FirstName"`
	LastName      string     `json:"LastName"`
	EmailAddress  string     `json:"EmailAddress"`
	AccountNumber string     `json:"AccountNumber"`
	IsCustomer    bool       `json:"IsCustomer"`
	IsSupplier    bool       `json:"IsSupplier"`
	Addresses     []xAddress `json:"Addresses"`
	Phones        []xPhone   `json:"Phones"`
	Balances      *struct {
		AccountsReceivable *xBalance `json:"AccountsReceivable"`
		AccountsPayable    *xBalance `json:"AccountsPayable"`
	} `json:"Balances"`
	DefaultCurrency string `json:"DefaultCurrency"`
}

type xItemDetails struct {
	UnitPrice   decimal.Decimal `json:"UnitPrice"`
	AccountCode string          `json:"AccountCode"`
}

type xItem struct {
	ItemID         string          `json:"ItemID"`
	Code           string          `json:"Code"`
	Name           string          `json:"Name"`
	Description    string          `json:"Description"`
	IsSold         bool            `json:"IsSold"`
	IsPurchased    bool            `json:"IsPurchased"`
	IsTracked      bool            `json:"IsTrackedAsInventory"`
	QuantityOnHand decimal.Decimal `json:"QuantityOnHand"`
	SalesDetails   *xItemDetails   `json:"SalesDetails"`
	PurchaseDetail *xItemDetails   `json:"PurchaseDetails"`
}

type xLineItem struct {
	Description string          `json:"Description"`
	ItemCode    string          `json:"ItemCode"`
	Quantity    decimal.Decimal `json:"Quantity"`
	UnitAmount  decimal.Decimal `json:"UnitAmount"`
	LineAmount  decimal.Decimal `json:"LineAmount"`
}

type xInvoice struct {
	InvoiceID     string          `json:"InvoiceID"`
	Type          string          `json:"Type"`
	InvoiceNumber string          `json:"InvoiceNumber"`
	Status        string          `json:"Status"`
	Contact       *struct {
		ContactID string `json:"ContactID"`
		Name      string `json:"Name"`
	} `json:"Contact"`
	Date         string          `json:"Date"`
	DueDate      string          `json:"DueDate"`
	SubTotal     decimal.Decimal `json:"SubTotal"`
	TotalTax     decimal.Decimal `json:"TotalTax"`
	Total        decimal.Decimal `json:"Total"`
	AmountDue    decimal.Decimal `json:"AmountDue"`
	CurrencyCode string          `json:"CurrencyCode"`
	LineItems    []xLineItem     `json:"LineItems"`
}

type xAccount struct {
	AccountID string `json:"AccountID"`
	Code      string `json:"Code"`
	Name      string `json:"Name"`
	Status    string `json:"Status"`
	Type      string `json:"Type"`
	Class     string `json:"Class"`
	// CurrencyCode is only set on bank accounts.
	CurrencyCode string `json:"CurrencyCode"`
}

// xListResponse is the envelope around a collection page. Records stay raw
// so pagination can be decided before per-record mapping.
type xListResponse struct {
	Contacts []json.RawMessage `json:"Contacts"`
	Items    []json.RawMessage `json:"Items"`
	Invoices []json.RawMessage `json:"Invoices"`
	Accounts []json.RawMessage `json:"Accounts"`
}

// xWriteEnvelope decodes the id and status of the first record a write
// call returns.
type xWriteEnvelope struct {
	Contacts []xContact `json:"Contacts"`
	Items    []xItem    `json:"Items"`
	Invoices []xInvoice `json:"Invoices"`
	Accounts []xAccount `json:"Accounts"`
}

type xProblemResponse struct {
	Type    string `json:"Type"`
	Title   string `json:"Title"`
	Detail  string `json:"Detail"`
	Message string `json:"Message"`
}
