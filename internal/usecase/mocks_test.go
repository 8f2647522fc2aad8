package usecase_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// MockConnectionRepository is a mock implementation of ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *model.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) GetByPlatform(ctx context.Context, p platform.Platform) (*model.Connection, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *MockConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *MockConnectionRepository) List(ctx context.Context) ([]*model.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Connection), args.Error(1)
}

func (m *MockConnectionRepository) UpdateToken(ctx context.Context, conn *model.Connection) error {
	args := m.Called(ctx, conn)
	if args.Error(0) == nil {
		conn.TokenVersion++
	}
	return args.Error(0)
}

func (m *MockConnectionRepository) UpdateWatermark(ctx context.Context, conn *model.Connection, entity platform.EntityType, mark time.Time) error {
	args := m.Called(ctx, conn, entity, mark)
	return args.Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConnector is a mock implementation of connector.Connector
type MockConnector struct {
	mock.Mock
	platform platform.Platform
}

func (m *MockConnector) Platform() platform.Platform {
	return m.platform
}

func (m *MockConnector) AuthorizeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockConnector) ExchangeCode(ctx context.Context, code string) (platform.Token, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(platform.Token), args.Error(1)
}

func (m *MockConnector) Identity(ctx context.Context, token platform.Token, realmHint string) (string, string, error) {
	args := m.Called(ctx, token, realmHint)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockConnector) Refresh(ctx context.Context, current platform.Token) (platform.Token, error) {
	args := m.Called(ctx, current)
	return args.Get(0).(platform.Token), args.Error(1)
}

func (m *MockConnector) FetchPage(ctx context.Context, conn *model.Connection, entity platform.EntityType, since time.Time, page int) (*connector.Page, error) {
	args := m.Called(ctx, conn, entity, since, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.Page), args.Error(1)
}

func (m *MockConnector) MapRecord(entity platform.EntityType, raw json.RawMessage) (any, error) {
	args := m.Called(entity, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0), args.Error(1)
}

func (m *MockConnector) CreateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	args := m.Called(ctx, conn, entity, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.WriteResult), args.Error(1)
}

func (m *MockConnector) UpdateRecord(ctx context.Context, conn *model.Connection, entity platform.EntityType, record any) (*connector.WriteResult, error) {
	args := m.Called(ctx, conn, entity, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.WriteResult), args.Error(1)
}

func (m *MockConnector) SetRecordStatus(ctx context.Context, conn *model.Connection, entity platform.EntityType, externalID string, active bool) error {
	args := m.Called(ctx, conn, entity, externalID, active)
	return args.Error(0)
}

func (m *MockConnector) DeleteInvoice(ctx context.Context, conn *model.Connection, externalID string, void bool) error {
	args := m.Called(ctx, conn, externalID, void)
	return args.Error(0)
}

// stubResolver resolves every platform to the same connector
type stubResolver struct {
	cn connector.Connector
}

func (r stubResolver) Resolve(platform.Platform) (connector.Connector, error) {
	return r.cn, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedCustomer, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UnifiedCustomer), args.Error(1)
}

func (m *MockCustomerRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedCustomer) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnifiedCustomer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *model.UnifiedCustomer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedVendor, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UnifiedVendor), args.Error(1)
}

func (m *MockVendorRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedVendor) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}

func (m *MockVendorRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedVendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnifiedVendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *model.UnifiedVendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedItem, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UnifiedItem), args.Error(1)
}

func (m *MockItemRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedItem) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnifiedItem), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *model.UnifiedItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedInvoice, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UnifiedInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedInvoice) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnifiedInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *model.UnifiedInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBillRepository is a mock implementation of BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.UnifiedBill, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UnifiedBill), args.Error(1)
}

func (m *MockBillRepository) SaveBatch(ctx context.Context, inserts, updates []*model.UnifiedBill) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, id int64) (*model.UnifiedBill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnifiedBill), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *model.UnifiedBill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) ListByExternalIDs(ctx context.Context, source platform.Platform, externalIDs []string) ([]*model.ChartOfAccount, error) {
	args := m.Called(ctx, source, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ChartOfAccount), args.Error(1)
}

func (m *MockAccountRepository) SaveBatch(ctx context.Context, inserts, updates []*model.ChartOfAccount) error {
	args := m.Called(ctx, inserts, updates)
	return args.Error(0)
}
