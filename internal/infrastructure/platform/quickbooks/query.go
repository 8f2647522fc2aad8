package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// entityNames maps unified entity types to QuickBooks query entity names.
var entityNames = map[platform.EntityType]string{
	platform.EntityCustomers: "Customer",
	platform.EntityVendors:   "Vendor",
	platform.EntityItems:     "Item",
	platform.EntityInvoices:  "Invoice",
	platform.EntityBills:     "Bill",
	platform.EntityAccounts:  "Account",
}

// FetchPage runs one page of the incremental query. Pages are addressed by
// STARTPOSITION; the caller keeps paging while full pages come back.
func (c *Connector) FetchPage(ctx context.Context, conn *model.Connection, entity platform.EntityType, since time.Time, page int) (*connector.Page, error) {
	name, ok := entityNames[entity]
	if !ok {
		return nil, fmt.Errorf("quickbooks does not sync entity type %q", entity)
	}

	startPosition := (page-1)*pageSize + 1
	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE Metadata.LastUpdatedTime > '%s' STARTPOSITION %d MAXRESULTS %d",
		name, since.UTC().Format(time.RFC3339), startPosition, pageSize)

	queryURL := c.companyURL(conn.RealmID, "query") +
		"?query=" + url.QueryEscape(query) +
		"&minorversion=" + minorVersion

	c.logger.Debug("QuickBooks query page",
		zap.String("entity", name),
		zap.Int("start_position", startPosition),
		zap.Time("since", since))

	var resp qbQueryResponse
	if err := c.doJSON(ctx, http.MethodGet, queryURL, conn.AccessToken, nil, &resp); err != nil {
		return nil, err
	}

	var records []json.RawMessage
	switch entity {
	case platform.EntityCustomers:
		records = resp.QueryResponse.Customer
	case platform.EntityVendors:
		records = resp.QueryResponse.Vendor
	case platform.EntityItems:
		records = resp.QueryResponse.Item
	case platform.EntityInvoices:
		records = resp.QueryResponse.Invoice
	case platform.EntityBills:
		records = resp.QueryResponse.Bill
	case platform.EntityAccounts:
		records = resp.QueryResponse.Account
	}

	return &connector.Page{Records: records, Limit: pageSize}, nil
}
