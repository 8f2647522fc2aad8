package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

type writeFixture struct {
	repo      *MockConnectionRepository
	conn      *MockConnector
	customers *MockCustomerRepository
	invoices  *MockInvoiceRepository
	service   *usecase.WriteService
}

func newWriteFixture(t *testing.T) *writeFixture {
	t.Helper()
	logger := zap.NewNop()

	f := &writeFixture{
		repo:      new(MockConnectionRepository),
		conn:      new(MockConnector),
		customers: new(MockCustomerRepository),
		invoices:  new(MockInvoiceRepository),
	}
	tokens := usecase.NewTokenService(f.repo, stubResolver{f.conn}, logger)
	f.service = usecase.NewWriteService(
		f.repo,
		stubResolver{f.conn},
		tokens,
		f.customers,
		new(MockVendorRepository),
		new(MockItemRepository),
		f.invoices,
		new(MockBillRepository),
		logger,
	)
	return f
}

func TestWriteService_AddCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("platform write runs first and assigns the external id", func(t *testing.T) {
		f := newWriteFixture(t)
		conn := validConnection()
		f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()

		customer := &model.UnifiedCustomer{SourceSystem: platform.PlatformQuickBooks, DisplayName: "Acme"}

		f.conn.On("CreateRecord", ctx, conn, platform.EntityCustomers, customer).
			Return(&connector.WriteResult{ExternalID: "qb-77"}, nil).Once()
		f.customers.On("Save", ctx, customer).Return(nil).Once()

		require.NoError(t, f.service.AddCustomer(ctx, customer))
		assert.Equal(t, "qb-77", customer.ExternalID)
		assert.True(t, customer.Active)
		f.conn.AssertExpectations(t)
		f.customers.AssertExpectations(t)
	})

	t.Run("rejected platform write leaves the store untouched", func(t *testing.T) {
		f := newWriteFixture(t)
		conn := validConnection()
		f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()

		customer := &model.UnifiedCustomer{SourceSystem: platform.PlatformQuickBooks, DisplayName: "Acme"}
		f.conn.On("CreateRecord", ctx, conn, platform.EntityCustomers, customer).
			Return(nil, assert.AnError).Once()

		require.Error(t, f.service.AddCustomer(ctx, customer))
		f.customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing connection fails fast", func(t *testing.T) {
		f := newWriteFixture(t)
		f.repo.On("GetByPlatform", ctx, platform.PlatformXero).
			Return(nil, domainerrors.ErrNoConnection).Once()

		customer := &model.UnifiedCustomer{SourceSystem: platform.PlatformXero}
		err := f.service.AddCustomer(ctx, customer)

		assert.ErrorIs(t, err, domainerrors.ErrNoConnection)
		f.conn.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWriteService_EditCustomer(t *testing.T) {
	ctx := context.Background()
	f := newWriteFixture(t)
	conn := validConnection()

	existing := &model.UnifiedCustomer{
		ID:           5,
		ExternalID:   "qb-5",
		SourceSystem: platform.PlatformQuickBooks,
		DisplayName:  "Old",
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	edited := &model.UnifiedCustomer{ID: 5, DisplayName: "New"}

	f.customers.On("GetByID", ctx, int64(5)).Return(existing, nil).Once()
	f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()
	f.conn.On("UpdateRecord", ctx, conn, platform.EntityCustomers, edited).
		Return(&connector.WriteResult{ExternalID: "qb-5"}, nil).Once()
	f.customers.On("Save", ctx, edited).Return(nil).Once()

	require.NoError(t, f.service.EditCustomer(ctx, edited))

	// Identity fields are pinned from the stored row, not the request.
	assert.Equal(t, "qb-5", edited.ExternalID)
	assert.Equal(t, platform.PlatformQuickBooks, edited.SourceSystem)
	assert.Equal(t, existing.CreatedAt, edited.CreatedAt)
}

func TestWriteService_SetCustomerStatus(t *testing.T) {
	ctx := context.Background()
	f := newWriteFixture(t)
	conn := validConnection()

	stored := &model.UnifiedCustomer{ID: 8, ExternalID: "qb-8", SourceSystem: platform.PlatformQuickBooks, Active: true}

	f.customers.On("GetByID", ctx, int64(8)).Return(stored, nil).Once()
	f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()
	f.conn.On("SetRecordStatus", ctx, conn, platform.EntityCustomers, "qb-8", false).Return(nil).Once()
	f.customers.On("Save", ctx, stored).Return(nil).Once()

	customer, err := f.service.SetCustomerStatus(ctx, 8, false)

	require.NoError(t, err)
	assert.False(t, customer.Active)
	f.conn.AssertExpectations(t)
}

func TestWriteService_AddInvoice(t *testing.T) {
	ctx := context.Background()
	f := newWriteFixture(t)
	conn := validConnection()
	f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()

	invoice := &model.UnifiedInvoice{SourceSystem: platform.PlatformQuickBooks, CustomerExternalID: "qb-5"}

	f.conn.On("CreateRecord", ctx, conn, platform.EntityInvoices, invoice).
		Return(&connector.WriteResult{ExternalID: "inv-1", SyncToken: "0"}, nil).Once()
	f.invoices.On("Save", ctx, invoice).Return(nil).Once()

	require.NoError(t, f.service.AddInvoice(ctx, invoice))
	assert.Equal(t, "inv-1", invoice.ExternalID)
	assert.Equal(t, "0", invoice.SyncToken)
	assert.Equal(t, model.DocStatusOpen, invoice.Status)
}

func TestWriteService_DeleteInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("platform delete precedes the local delete", func(t *testing.T) {
		f := newWriteFixture(t)
		conn := validConnection()

		stored := &model.UnifiedInvoice{ID: 3, ExternalID: "inv-3", SourceSystem: platform.PlatformQuickBooks}
		f.invoices.On("GetByID", ctx, int64(3)).Return(stored, nil).Once()
		f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()
		f.conn.On("DeleteInvoice", ctx, conn, "inv-3", true).Return(nil).Once()
		f.invoices.On("Delete", ctx, int64(3)).Return(nil).Once()

		require.NoError(t, f.service.DeleteInvoice(ctx, 3, true))
		f.invoices.AssertExpectations(t)
	})

	t.Run("failed platform delete keeps the local row", func(t *testing.T) {
		f := newWriteFixture(t)
		conn := validConnection()

		stored := &model.UnifiedInvoice{ID: 4, ExternalID: "inv-4", SourceSystem: platform.PlatformQuickBooks}
		f.invoices.On("GetByID", ctx, int64(4)).Return(stored, nil).Once()
		f.repo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil).Once()
		f.conn.On("DeleteInvoice", ctx, conn, "inv-4", false).Return(assert.AnError).Once()

		require.Error(t, f.service.DeleteInvoice(ctx, 4, false))
		f.invoices.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
