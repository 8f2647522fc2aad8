package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

func rawRecords(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(`{}`)
	}
	return out
}

func newSyncFixture(t *testing.T) (*MockConnectionRepository, *MockConnector, *MockCustomerRepository, *usecase.SyncService) {
	t.Helper()
	logger := zap.NewNop()

	mockRepo := new(MockConnectionRepository)
	mockConn := new(MockConnector)
	customers := new(MockCustomerRepository)
	vendors := new(MockVendorRepository)
	items := new(MockItemRepository)
	invoices := new(MockInvoiceRepository)
	bills := new(MockBillRepository)
	accounts := new(MockAccountRepository)

	reconciler := usecase.NewReconciler(customers, vendors, items, invoices, bills, accounts, logger)
	tokens := usecase.NewTokenService(mockRepo, stubResolver{mockConn}, logger)
	service := usecase.NewSyncService(mockRepo, stubResolver{mockConn}, tokens, reconciler, logger)

	return mockRepo, mockConn, customers, service
}

func validConnection() *model.Connection {
	return newConnection(time.Now().Add(time.Hour), time.Now().Add(24*time.Hour))
}

func TestSyncService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("pages until a short page and reconciles everything", func(t *testing.T) {
		mockRepo, mockConn, customers, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)
		mockRepo.On("UpdateWatermark", ctx, conn, platform.EntityCustomers, mock.Anything).Return(nil).Once()

		// Two full pages of two, then one record.
		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, 1).
			Return(&connector.Page{Records: rawRecords(2), Limit: 2}, nil).Once()
		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, 2).
			Return(&connector.Page{Records: rawRecords(2), Limit: 2}, nil).Once()
		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, 3).
			Return(&connector.Page{Records: rawRecords(1), Limit: 2}, nil).Once()

		mapped := 0
		mockConn.On("MapRecord", platform.EntityCustomers, mock.Anything).
			Return(&model.UnifiedCustomer{ExternalID: "c", SourceSystem: platform.PlatformQuickBooks}, nil).
			Run(func(mock.Arguments) { mapped++ })

		customers.On("ListByExternalIDs", ctx, platform.PlatformQuickBooks, mock.Anything).
			Return([]*model.UnifiedCustomer{}, nil).Once()
		customers.On("SaveBatch", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		result, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityCustomers)

		require.NoError(t, err)
		assert.Equal(t, 5, result.Fetched)
		assert.Equal(t, 5, mapped)
		assert.Equal(t, 5, result.Inserted)
		assert.False(t, result.Watermark.IsZero())
		mockRepo.AssertExpectations(t)
		mockConn.AssertExpectations(t)
	})

	t.Run("never-synced entity pulls from the epoch sentinel", func(t *testing.T) {
		mockRepo, mockConn, _, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)

		var since time.Time
		mockConn.On("FetchPage", ctx, conn, platform.EntityItems, mock.Anything, 1).
			Run(func(args mock.Arguments) { since = args.Get(3).(time.Time) }).
			Return(&connector.Page{Records: nil, Limit: 100}, nil).Once()

		_, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityItems)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), since)
	})

	t.Run("zero records leaves the watermark untouched", func(t *testing.T) {
		mockRepo, mockConn, _, service := newSyncFixture(t)
		conn := validConnection()
		mark := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		conn.SetWatermark(platform.EntityItems, mark)

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)
		mockConn.On("FetchPage", ctx, conn, platform.EntityItems, mock.Anything, 1).
			Return(&connector.Page{Records: nil, Limit: 100}, nil).Once()

		result, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityItems)

		require.NoError(t, err)
		assert.True(t, result.UpToDate)
		assert.Equal(t, mark, result.Watermark)
		mockRepo.AssertNotCalled(t, "UpdateWatermark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stored watermark bounds the pull", func(t *testing.T) {
		mockRepo, mockConn, _, service := newSyncFixture(t)
		conn := validConnection()
		mark := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		conn.SetWatermark(platform.EntityItems, mark)

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)

		var since time.Time
		mockConn.On("FetchPage", ctx, conn, platform.EntityItems, mock.Anything, 1).
			Run(func(args mock.Arguments) { since = args.Get(3).(time.Time) }).
			Return(&connector.Page{Records: nil, Limit: 100}, nil).Once()

		_, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityItems)

		require.NoError(t, err)
		assert.Equal(t, mark, since)
	})

	t.Run("unmappable records are skipped, not fatal", func(t *testing.T) {
		mockRepo, mockConn, customers, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformXero).Return(conn, nil)
		mockRepo.On("UpdateWatermark", ctx, conn, platform.EntityCustomers, mock.Anything).Return(nil).Once()

		records := []json.RawMessage{
			json.RawMessage(`{"id":"a"}`),
			json.RawMessage(`{"broken`),
			json.RawMessage(`{"id":"b"}`),
		}
		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, 1).
			Return(&connector.Page{Records: records, Limit: 100}, nil).Once()

		mockConn.On("MapRecord", platform.EntityCustomers, records[0]).
			Return(&model.UnifiedCustomer{ExternalID: "a", SourceSystem: platform.PlatformXero}, nil).Once()
		mockConn.On("MapRecord", platform.EntityCustomers, records[1]).
			Return(nil, assert.AnError).Once()
		mockConn.On("MapRecord", platform.EntityCustomers, records[2]).
			Return(&model.UnifiedCustomer{ExternalID: "b", SourceSystem: platform.PlatformXero}, nil).Once()

		customers.On("ListByExternalIDs", ctx, platform.PlatformXero, []string{"a", "b"}).
			Return([]*model.UnifiedCustomer{}, nil).Once()
		customers.On("SaveBatch", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		result, err := service.Sync(ctx, platform.PlatformXero, platform.EntityCustomers)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Fetched)
		assert.Equal(t, 2, result.Inserted)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("reconcile failure leaves the watermark untouched", func(t *testing.T) {
		mockRepo, mockConn, customers, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)

		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, 1).
			Return(&connector.Page{Records: rawRecords(1), Limit: 100}, nil).Once()
		mockConn.On("MapRecord", platform.EntityCustomers, mock.Anything).
			Return(&model.UnifiedCustomer{ExternalID: "a", SourceSystem: platform.PlatformQuickBooks}, nil).Once()

		customers.On("ListByExternalIDs", ctx, platform.PlatformQuickBooks, mock.Anything).
			Return([]*model.UnifiedCustomer{}, nil).Once()
		customers.On("SaveBatch", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityCustomers)

		require.Error(t, err)
		mockRepo.AssertNotCalled(t, "UpdateWatermark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		_, ok := conn.Watermark(platform.EntityCustomers)
		assert.False(t, ok)
	})

	t.Run("fetch failure leaves the watermark untouched", func(t *testing.T) {
		mockRepo, mockConn, _, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)
		mockConn.On("FetchPage", ctx, conn, platform.EntityBills, mock.Anything, 1).
			Return(nil, assert.AnError).Once()

		_, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityBills)

		require.Error(t, err)
		mockRepo.AssertNotCalled(t, "UpdateWatermark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a platform that never stops paging aborts with the guard", func(t *testing.T) {
		mockRepo, mockConn, _, service := newSyncFixture(t)
		conn := validConnection()

		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(conn, nil)

		// Every page comes back full, so only the iteration guard can stop
		// the loop.
		mockConn.On("FetchPage", ctx, conn, platform.EntityCustomers, mock.Anything, mock.Anything).
			Return(&connector.Page{Records: rawRecords(1), Limit: 1}, nil)
		mockConn.On("MapRecord", platform.EntityCustomers, mock.Anything).
			Return(&model.UnifiedCustomer{ExternalID: "c", SourceSystem: platform.PlatformQuickBooks}, nil)

		_, err := service.Sync(ctx, platform.PlatformQuickBooks, platform.EntityCustomers)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "pages")
		mockRepo.AssertNotCalled(t, "UpdateWatermark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		_, ok := conn.Watermark(platform.EntityCustomers)
		assert.False(t, ok)
	})
}

func TestSyncService_SyncAll(t *testing.T) {
	ctx := context.Background()
	mockRepo, mockConn, _, service := newSyncFixture(t)
	conn := validConnection()

	mockRepo.On("GetByPlatform", ctx, platform.PlatformXero).Return(conn, nil)
	mockConn.On("FetchPage", ctx, conn, mock.Anything, mock.Anything, 1).
		Return(&connector.Page{Records: nil, Limit: 100}, nil)

	results, err := service.SyncAll(ctx, platform.PlatformXero)

	require.NoError(t, err)
	assert.Len(t, results, len(platform.EntityTypes))
	for _, result := range results {
		assert.Equal(t, 0, result.Fetched)
		assert.True(t, result.UpToDate)
	}
}

// gatedConnector holds every FetchPage until all expected cycles have
// started, so overlapping syncs are guaranteed to load the connection row
// before either one persists its watermark.
type gatedConnector struct {
	connector.Connector
	gate *sync.WaitGroup
}

func (c *gatedConnector) FetchPage(_ context.Context, _ *model.Connection, _ platform.EntityType, _ time.Time, _ int) (*connector.Page, error) {
	c.gate.Done()
	c.gate.Wait()
	return &connector.Page{Records: []json.RawMessage{json.RawMessage(`{}`)}, Limit: 100}, nil
}

func (c *gatedConnector) MapRecord(entity platform.EntityType, _ json.RawMessage) (any, error) {
	switch entity {
	case platform.EntityCustomers:
		return &model.UnifiedCustomer{ExternalID: "c-1", SourceSystem: platform.PlatformQuickBooks}, nil
	case platform.EntityItems:
		return &model.UnifiedItem{ExternalID: "i-1", SourceSystem: platform.PlatformQuickBooks}, nil
	default:
		return nil, assert.AnError
	}
}

func TestSyncService_ConcurrentEntitySyncsKeepBothWatermarks(t *testing.T) {
	logger := zap.NewNop()

	store := &fakeConnectionStore{}
	store.stored = model.Connection{ID: uuid.New(), Platform: platform.PlatformQuickBooks, RealmID: "realm-1"}
	store.stored.SetToken(platform.Token{
		AccessToken:        "access",
		AccessTokenExpiry:  time.Now().Add(time.Hour),
		RefreshToken:       "refresh",
		RefreshTokenExpiry: time.Now().Add(24 * time.Hour),
	})

	var gate sync.WaitGroup
	gate.Add(2)
	cn := &gatedConnector{gate: &gate}

	customers := new(MockCustomerRepository)
	customers.On("ListByExternalIDs", mock.Anything, mock.Anything, mock.Anything).
		Return([]*model.UnifiedCustomer{}, nil)
	customers.On("SaveBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	items := new(MockItemRepository)
	items.On("ListByExternalIDs", mock.Anything, mock.Anything, mock.Anything).
		Return([]*model.UnifiedItem{}, nil)
	items.On("SaveBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	reconciler := usecase.NewReconciler(
		customers, new(MockVendorRepository), items,
		new(MockInvoiceRepository), new(MockBillRepository), new(MockAccountRepository), logger)
	tokens := usecase.NewTokenService(store, stubResolver{cn}, logger)
	service := usecase.NewSyncService(store, stubResolver{cn}, tokens, reconciler, logger)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, entity := range []platform.EntityType{platform.EntityCustomers, platform.EntityItems} {
		wg.Add(1)
		go func(entity platform.EntityType) {
			defer wg.Done()
			_, err := service.Sync(context.Background(), platform.PlatformQuickBooks, entity)
			errs <- err
		}(entity)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Each cycle persisted only its own key, so neither overwrote the other.
	_, okCustomers := store.stored.Watermark(platform.EntityCustomers)
	_, okItems := store.stored.Watermark(platform.EntityItems)
	assert.True(t, okCustomers, "customers watermark must survive the concurrent items sync")
	assert.True(t, okItems, "items watermark must survive the concurrent customers sync")
}

func TestSyncService_WatermarkMonotonic(t *testing.T) {
	conn := &model.Connection{ID: uuid.New(), Platform: platform.PlatformQuickBooks}

	later := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	conn.SetWatermark(platform.EntityInvoices, later)
	conn.SetWatermark(platform.EntityInvoices, earlier)

	got, ok := conn.Watermark(platform.EntityInvoices)
	require.True(t, ok)
	assert.Equal(t, later, got)
}
