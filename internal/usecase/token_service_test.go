package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
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

func newConnection(accessExpiry, refreshExpiry time.Time) *model.Connection {
	conn := &model.Connection{
		ID:       uuid.New(),
		Platform: platform.PlatformQuickBooks,
		RealmID:  "realm-1",
	}
	conn.SetToken(platform.Token{
		AccessToken:        "access-old",
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       "refresh-old",
		RefreshTokenExpiry: refreshExpiry,
	})
	return conn
}

func TestTokenService_EnsureValid(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("valid token is returned without any calls", func(t *testing.T) {
		conn := newConnection(time.Now().Add(time.Hour), time.Now().Add(24*time.Hour))
		mockRepo := new(MockConnectionRepository)
		mockConn := new(MockConnector)
		service := usecase.NewTokenService(mockRepo, stubResolver{mockConn}, logger)

		token, err := service.EnsureValid(ctx, conn)

		require.NoError(t, err)
		assert.Equal(t, "access-old", token.AccessToken)
		mockRepo.AssertExpectations(t)
		mockConn.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("expired access token triggers exactly one refresh and persists", func(t *testing.T) {
		conn := newConnection(time.Now().Add(-time.Minute), time.Now().Add(24*time.Hour))
		stored := *conn

		refreshed := platform.Token{
			AccessToken:        "access-new",
			AccessTokenExpiry:  time.Now().Add(time.Hour),
			RefreshToken:       "refresh-new",
			RefreshTokenExpiry: time.Now().Add(60 * 24 * time.Hour),
		}

		mockRepo := new(MockConnectionRepository)
		mockRepo.On("GetByID", ctx, conn.ID).Return(&stored, nil).Once()
		mockRepo.On("UpdateToken", ctx, conn).Return(nil).Once()

		mockConn := new(MockConnector)
		mockConn.On("Refresh", ctx, mock.Anything).Return(refreshed, nil).Once()

		service := usecase.NewTokenService(mockRepo, stubResolver{mockConn}, logger)
		token, err := service.EnsureValid(ctx, conn)

		require.NoError(t, err)
		assert.Equal(t, "access-new", token.AccessToken)
		assert.Equal(t, "refresh-new", conn.RefreshToken)
		assert.True(t, token.AccessTokenExpiry.After(time.Now()))
		assert.Equal(t, int64(1), conn.TokenVersion)
		mockRepo.AssertExpectations(t)
		mockConn.AssertExpectations(t)
	})

	t.Run("expired refresh token is terminal", func(t *testing.T) {
		conn := newConnection(time.Now().Add(-time.Hour), time.Now().Add(-time.Minute))
		stored := *conn

		mockRepo := new(MockConnectionRepository)
		mockRepo.On("GetByID", ctx, conn.ID).Return(&stored, nil).Once()

		mockConn := new(MockConnector)
		service := usecase.NewTokenService(mockRepo, stubResolver{mockConn}, logger)

		_, err := service.EnsureValid(ctx, conn)

		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)
		mockConn.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("refresh already done by a concurrent caller is adopted", func(t *testing.T) {
		conn := newConnection(time.Now().Add(-time.Minute), time.Now().Add(24*time.Hour))

		fresh := *conn
		fresh.SetToken(platform.Token{
			AccessToken:        "access-won",
			AccessTokenExpiry:  time.Now().Add(time.Hour),
			RefreshToken:       "refresh-won",
			RefreshTokenExpiry: time.Now().Add(24 * time.Hour),
		})
		fresh.TokenVersion = 3

		mockRepo := new(MockConnectionRepository)
		mockRepo.On("GetByID", ctx, conn.ID).Return(&fresh, nil).Once()

		mockConn := new(MockConnector)
		service := usecase.NewTokenService(mockRepo, stubResolver{mockConn}, logger)

		token, err := service.EnsureValid(ctx, conn)

		require.NoError(t, err)
		assert.Equal(t, "access-won", token.AccessToken)
		assert.Equal(t, int64(3), conn.TokenVersion)
		mockConn.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})
}

// fakeConnectionStore is an in-memory ConnectionRepository with real
// version-check semantics, used to exercise concurrent refreshes.
type fakeConnectionStore struct {
	mu     sync.Mutex
	stored model.Connection
}

func (f *fakeConnectionStore) Save(context.Context, *model.Connection) error { return nil }

func (f *fakeConnectionStore) GetByPlatform(context.Context, platform.Platform) (*model.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := f.stored
	return &snapshot, nil
}

func (f *fakeConnectionStore) GetByID(context.Context, uuid.UUID) (*model.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := f.stored
	return &snapshot, nil
}

func (f *fakeConnectionStore) List(context.Context) ([]*model.Connection, error) { return nil, nil }

func (f *fakeConnectionStore) UpdateToken(_ context.Context, conn *model.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conn.TokenVersion != f.stored.TokenVersion {
		return domainerrors.ErrStaleTokenVersion
	}
	f.stored = *conn
	f.stored.TokenVersion++
	conn.TokenVersion++
	return nil
}

func (f *fakeConnectionStore) UpdateWatermark(_ context.Context, _ *model.Connection, entity platform.EntityType, mark time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored.SetWatermark(entity, mark)
	return nil
}

func (f *fakeConnectionStore) Delete(context.Context, uuid.UUID) error { return nil }

// countingConnector counts Refresh calls; everything else is unused.
type countingConnector struct {
	connector.Connector
	refreshes atomic.Int32
	token     platform.Token
}

func (c *countingConnector) Refresh(context.Context, platform.Token) (platform.Token, error) {
	c.refreshes.Add(1)
	return c.token, nil
}

func TestTokenService_ConcurrentRefresh(t *testing.T) {
	expired := platform.Token{
		AccessToken:        "access-old",
		AccessTokenExpiry:  time.Now().Add(-time.Minute),
		RefreshToken:       "refresh-old",
		RefreshTokenExpiry: time.Now().Add(24 * time.Hour),
	}

	store := &fakeConnectionStore{}
	store.stored = model.Connection{ID: uuid.New(), Platform: platform.PlatformXero, RealmID: "tenant-1"}
	store.stored.SetToken(expired)

	cn := &countingConnector{token: platform.Token{
		AccessToken:        "access-new",
		AccessTokenExpiry:  time.Now().Add(time.Hour),
		RefreshToken:       "refresh-new",
		RefreshTokenExpiry: time.Now().Add(60 * 24 * time.Hour),
	}}

	service := usecase.NewTokenService(store, stubResolver{cn}, zap.NewNop())
	connID := store.stored.ID

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, _ := store.GetByID(context.Background(), connID)
			token, err := service.EnsureValid(context.Background(), conn)
			if err == nil && token.AccessToken != "access-new" {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), cn.refreshes.Load(), "concurrent callers must trigger exactly one refresh")
}
