package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// endpointFor maps a unified entity type onto the Xero collection endpoint
// and the role filter that narrows it. Contacts back both customers and
// vendors; Invoices back both sales invoices and bills.
func endpointFor(entity platform.EntityType) (endpoint, filter string, err error) {
	switch entity {
	case platform.EntityCustomers:
		return "Contacts", "IsCustomer==true", nil
	case platform.EntityVendors:
		return "Contacts", "IsSupplier==true", nil
	case platform.EntityItems:
		return "Items", "", nil
	case platform.EntityInvoices:
		return "Invoices", `Type=="ACCREC"`, nil
	case platform.EntityBills:
		return "Invoices", `Type=="ACCPAY"`, nil
	case platform.EntityAccounts:
		return "Accounts", "", nil
	default:
		return "", "", fmt.Errorf("xero does not sync entity type %q", entity)
	}
}

// FetchPage runs one page of the incremental query. Pages are addressed by
// the page parameter; the caller keeps paging while full pages come back.
func (c *Connector) FetchPage(ctx context.Context, conn *model.Connection, entity platform.EntityType, since time.Time, page int) (*connector.Page, error) {
	endpoint, roleFilter, err := endpointFor(entity)
	if err != nil {
		return nil, err
	}

	where := "UpdatedDateUTC > " + xeroDateTime(since)
	if roleFilter != "" {
		where = roleFilter + " AND " + where
	}

	params := url.Values{}
	params.Set("where", where)
	params.Set("page", strconv.Itoa(page))

	c.logger.Debug("Xero query page",
		zap.String("endpoint", endpoint),
		zap.Int("page", page),
		zap.Time("since", since))

	var resp xListResponse
	queryURL := endpointURL(endpoint) + "?" + params.Encode()
	if err := c.doJSON(ctx, http.MethodGet, queryURL, conn.AccessToken, conn.RealmID, nil, &resp); err != nil {
		return nil, err
	}

	var records []json.RawMessage
	switch endpoint {
	case "Contacts":
		records = resp.Contacts
	case "Items":
		records = resp.Items
	case "Invoices":
		records = resp.Invoices
	case "Accounts":
		records = resp.Accounts
	}

	return &connector.Page{Records: records, Limit: pageSize}, nil
}
