package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/domain/repository"
)

// WriteService pushes locally initiated changes out to the owning platform
// and mirrors them into the unified store. The platform write always runs
// first; the local row is only touched once the platform accepted the
// change.
type WriteService struct {
	connections repository.ConnectionRepository
	connectors  connector.Resolver
	tokens      *TokenService
	customers   repository.CustomerRepository
	vendors     repository.VendorRepository
	items       repository.ItemRepository
	invoices    repository.InvoiceRepository
	bills       repository.BillRepository
	logger      *zap.Logger
}

// NewWriteService creates a write service.
func NewWriteService(
	connections repository.ConnectionRepository,
	connectors connector.Resolver,
	tokens *TokenService,
	customers repository.CustomerRepository,
	vendors repository.VendorRepository,
	items repository.ItemRepository,
	invoices repository.InvoiceRepository,
	bills repository.BillRepository,
	logger *zap.Logger,
) *WriteService {
	return &WriteService{
		connections: connections,
		connectors:  connectors,
		tokens:      tokens,
		customers:   customers,
		vendors:     vendors,
		items:       items,
		invoices:    invoices,
		bills:       bills,
		logger:      logger,
	}
}

// prepare resolves the connection and connector for a platform and makes
// sure the access token is usable.
func (s *WriteService) prepare(ctx context.Context, p platform.Platform) (*model.Connection, connector.Connector, error) {
	conn, err := s.connections.GetByPlatform(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	cn, err := s.connectors.Resolve(p)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.tokens.EnsureValid(ctx, conn); err != nil {
		return nil, nil, err
	}
	return conn, cn, nil
}

// AddCustomer creates the customer on the platform, then stores the row
// under the platform-assigned external id.
func (s *WriteService) AddCustomer(ctx context.Context, customer *model.UnifiedCustomer) error {
	conn, cn, err := s.prepare(ctx, customer.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.CreateRecord(ctx, conn, platform.EntityCustomers, customer)
	if err != nil {
		return err
	}
	customer.ExternalID = wr.ExternalID
	customer.Active = true
	return s.customers.Save(ctx, customer)
}

// EditCustomer pushes a full update of an existing customer.
func (s *WriteService) EditCustomer(ctx context.Context, customer *model.UnifiedCustomer) error {
	existing, err := s.customers.GetByID(ctx, customer.ID)
	if err != nil {
		return err
	}
	customer.ExternalID = existing.ExternalID
	customer.SourceSystem = existing.SourceSystem
	customer.CreatedAt = existing.CreatedAt

	conn, cn, err := s.prepare(ctx, customer.SourceSystem)
	if err != nil {
		return err
	}
	if _, err := cn.UpdateRecord(ctx, conn, platform.EntityCustomers, customer); err != nil {
		return err
	}
	return s.customers.Save(ctx, customer)
}

// SetCustomerStatus activates or deactivates a customer on both sides.
func (s *WriteService) SetCustomerStatus(ctx context.Context, id int64, active bool) (*model.UnifiedCustomer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, cn, err := s.prepare(ctx, customer.SourceSystem)
	if err != nil {
		return nil, err
	}
	if err := cn.SetRecordStatus(ctx, conn, platform.EntityCustomers, customer.ExternalID, active); err != nil {
		return nil, err
	}
	customer.Active = active
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer returns one local customer row.
func (s *WriteService) GetCustomer(ctx context.Context, id int64) (*model.UnifiedCustomer, error) {
	return s.customers.GetByID(ctx, id)
}

// AddVendor creates the vendor on the platform, then stores the row.
func (s *WriteService) AddVendor(ctx context.Context, vendor *model.UnifiedVendor) error {
	conn, cn, err := s.prepare(ctx, vendor.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.CreateRecord(ctx, conn, platform.EntityVendors, vendor)
	if err != nil {
		return err
	}
	vendor.ExternalID = wr.ExternalID
	vendor.Active = true
	return s.vendors.Save(ctx, vendor)
}

// EditVendor pushes a full update of an existing vendor.
func (s *WriteService) EditVendor(ctx context.Context, vendor *model.UnifiedVendor) error {
	existing, err := s.vendors.GetByID(ctx, vendor.ID)
	if err != nil {
		return err
	}
	vendor.ExternalID = existing.ExternalID
	vendor.SourceSystem = existing.SourceSystem
	vendor.CreatedAt = existing.CreatedAt

	conn, cn, err := s.prepare(ctx, vendor.SourceSystem)
	if err != nil {
		return err
	}
	if _, err := cn.UpdateRecord(ctx, conn, platform.EntityVendors, vendor); err != nil {
		return err
	}
	return s.vendors.Save(ctx, vendor)
}

// SetVendorStatus activates or deactivates a vendor on both sides.
func (s *WriteService) SetVendorStatus(ctx context.Context, id int64, active bool) (*model.UnifiedVendor, error) {
	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, cn, err := s.prepare(ctx, vendor.SourceSystem)
	if err != nil {
		return nil, err
	}
	if err := cn.SetRecordStatus(ctx, conn, platform.EntityVendors, vendor.ExternalID, active); err != nil {
		return nil, err
	}
	vendor.Active = active
	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetVendor returns one local vendor row.
func (s *WriteService) GetVendor(ctx context.Context, id int64) (*model.UnifiedVendor, error) {
	return s.vendors.GetByID(ctx, id)
}

// AddItem creates the item on the platform, then stores the row.
func (s *WriteService) AddItem(ctx context.Context, item *model.UnifiedItem) error {
	conn, cn, err := s.prepare(ctx, item.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.CreateRecord(ctx, conn, platform.EntityItems, item)
	if err != nil {
		return err
	}
	item.ExternalID = wr.ExternalID
	item.Active = true
	return s.items.Save(ctx, item)
}

// EditItem pushes a full update of an existing item.
func (s *WriteService) EditItem(ctx context.Context, item *model.UnifiedItem) error {
	existing, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		return err
	}
	item.ExternalID = existing.ExternalID
	item.SourceSystem = existing.SourceSystem
	item.CreatedAt = existing.CreatedAt

	conn, cn, err := s.prepare(ctx, item.SourceSystem)
	if err != nil {
		return err
	}
	if _, err := cn.UpdateRecord(ctx, conn, platform.EntityItems, item); err != nil {
		return err
	}
	return s.items.Save(ctx, item)
}

// SetItemStatus activates or deactivates an item on both sides.
func (s *WriteService) SetItemStatus(ctx context.Context, id int64, active bool) (*model.UnifiedItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn, cn, err := s.prepare(ctx, item.SourceSystem)
	if err != nil {
		return nil, err
	}
	if err := cn.SetRecordStatus(ctx, conn, platform.EntityItems, item.ExternalID, active); err != nil {
		return nil, err
	}
	item.Active = active
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns one local item row.
func (s *WriteService) GetItem(ctx context.Context, id int64) (*model.UnifiedItem, error) {
	return s.items.GetByID(ctx, id)
}

// AddInvoice creates the invoice on the platform, capturing the assigned
// external id and concurrency stamp.
func (s *WriteService) AddInvoice(ctx context.Context, invoice *model.UnifiedInvoice) error {
	conn, cn, err := s.prepare(ctx, invoice.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.CreateRecord(ctx, conn, platform.EntityInvoices, invoice)
	if err != nil {
		return err
	}
	invoice.ExternalID = wr.ExternalID
	invoice.SyncToken = wr.SyncToken
	if invoice.Status == "" {
		invoice.Status = model.DocStatusOpen
	}
	return s.invoices.Save(ctx, invoice)
}

// EditInvoice pushes a full update of an existing invoice.
func (s *WriteService) EditInvoice(ctx context.Context, invoice *model.UnifiedInvoice) error {
	existing, err := s.invoices.GetByID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	invoice.ExternalID = existing.ExternalID
	invoice.SourceSystem = existing.SourceSystem
	invoice.CreatedAt = existing.CreatedAt

	conn, cn, err := s.prepare(ctx, invoice.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.UpdateRecord(ctx, conn, platform.EntityInvoices, invoice)
	if err != nil {
		return err
	}
	invoice.SyncToken = wr.SyncToken
	return s.invoices.Save(ctx, invoice)
}

// DeleteInvoice removes an invoice. The platform-side void or delete runs
// first; the local row only goes away once that succeeded. This is the
// single hard-delete path in the store.
func (s *WriteService) DeleteInvoice(ctx context.Context, id int64, void bool) error {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	conn, cn, err := s.prepare(ctx, invoice.SourceSystem)
	if err != nil {
		return err
	}
	if err := cn.DeleteInvoice(ctx, conn, invoice.ExternalID, void); err != nil {
		return fmt.Errorf("platform delete failed: %w", err)
	}

	s.logger.Info("Invoice removed",
		zap.Int64("id", id),
		zap.String("external_id", invoice.ExternalID),
		zap.Bool("void", void))

	return s.invoices.Delete(ctx, id)
}

// GetInvoice returns one local invoice row.
func (s *WriteService) GetInvoice(ctx context.Context, id int64) (*model.UnifiedInvoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// AddBill creates the bill on the platform, then stores the row.
func (s *WriteService) AddBill(ctx context.Context, bill *model.UnifiedBill) error {
	conn, cn, err := s.prepare(ctx, bill.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.CreateRecord(ctx, conn, platform.EntityBills, bill)
	if err != nil {
		return err
	}
	bill.ExternalID = wr.ExternalID
	bill.SyncToken = wr.SyncToken
	if bill.Status == "" {
		bill.Status = model.DocStatusOpen
	}
	return s.bills.Save(ctx, bill)
}

// EditBill pushes a full update of an existing bill.
func (s *WriteService) EditBill(ctx context.Context, bill *model.UnifiedBill) error {
	existing, err := s.bills.GetByID(ctx, bill.ID)
	if err != nil {
		return err
	}
	bill.ExternalID = existing.ExternalID
	bill.SourceSystem = existing.SourceSystem
	bill.CreatedAt = existing.CreatedAt

	conn, cn, err := s.prepare(ctx, bill.SourceSystem)
	if err != nil {
		return err
	}
	wr, err := cn.UpdateRecord(ctx, conn, platform.EntityBills, bill)
	if err != nil {
		return err
	}
	bill.SyncToken = wr.SyncToken
	return s.bills.Save(ctx, bill)
}

// GetBill returns one local bill row.
func (s *WriteService) GetBill(ctx context.Context, id int64) (*model.UnifiedBill, error) {
	return s.bills.GetByID(ctx, id)
}
