package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// MockStateStore is a mock implementation of StateStore
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Issue(ctx context.Context, p platform.Platform) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockStateStore) Validate(ctx context.Context, state string) (platform.Platform, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(platform.Platform), args.Error(1)
}

func freshToken() platform.Token {
	return platform.Token{
		AccessToken:        "access-1",
		AccessTokenExpiry:  time.Now().Add(time.Hour),
		RefreshToken:       "refresh-1",
		RefreshTokenExpiry: time.Now().Add(60 * 24 * time.Hour),
	}
}

func TestConnectionService_AuthorizeURL(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	mockRepo := new(MockConnectionRepository)
	mockConn := new(MockConnector)
	states := new(MockStateStore)

	states.On("Issue", ctx, platform.PlatformXero).Return("state-1", nil).Once()
	mockConn.On("AuthorizeURL", "state-1").Return("https://login.xero.test/authorize?state=state-1").Once()

	service := usecase.NewConnectionService(mockRepo, stubResolver{mockConn}, states, logger)
	authURL, err := service.AuthorizeURL(ctx, platform.PlatformXero)

	require.NoError(t, err)
	assert.Contains(t, authURL, "state=state-1")
	states.AssertExpectations(t)
	mockConn.AssertExpectations(t)
}

func TestConnectionService_CompleteCallback(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("first authorization creates a connection", func(t *testing.T) {
		mockRepo := new(MockConnectionRepository)
		mockConn := new(MockConnector)
		states := new(MockStateStore)

		states.On("Validate", ctx, "state-1").Return(platform.PlatformQuickBooks, nil).Once()
		mockConn.On("ExchangeCode", ctx, "code-1").Return(freshToken(), nil).Once()
		mockConn.On("Identity", ctx, mock.Anything, "realm-1").Return("realm-1", "Acme Corp", nil).Once()
		mockRepo.On("Save", ctx, mock.Anything).Return(nil).Once()

		service := usecase.NewConnectionService(mockRepo, stubResolver{mockConn}, states, logger)
		conn, err := service.CompleteCallback(ctx, "state-1", "code-1", "realm-1")

		require.NoError(t, err)
		assert.Equal(t, platform.PlatformQuickBooks, conn.Platform)
		assert.Equal(t, "realm-1", conn.RealmID)
		assert.Equal(t, "Acme Corp", conn.DisplayName)
		assert.Equal(t, "access-1", conn.AccessToken)
		assert.NotEqual(t, uuid.Nil, conn.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown state is rejected before any exchange", func(t *testing.T) {
		mockRepo := new(MockConnectionRepository)
		mockConn := new(MockConnector)
		states := new(MockStateStore)

		states.On("Validate", ctx, "bogus").Return(platform.Platform(""), domainerrors.ErrInvalidOAuthState).Once()

		service := usecase.NewConnectionService(mockRepo, stubResolver{mockConn}, states, logger)
		_, err := service.CompleteCallback(ctx, "bogus", "code-1", "")

		assert.ErrorIs(t, err, domainerrors.ErrInvalidOAuthState)
		mockConn.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
	})

	t.Run("re-authorizing the same realm replaces the token", func(t *testing.T) {
		mockRepo := new(MockConnectionRepository)
		mockConn := new(MockConnector)
		states := new(MockStateStore)

		existing := &model.Connection{
			ID:       uuid.New(),
			Platform: platform.PlatformQuickBooks,
			RealmID:  "realm-1",
		}
		existing.SetToken(platform.Token{AccessToken: "access-old"})

		states.On("Validate", ctx, "state-2").Return(platform.PlatformQuickBooks, nil).Once()
		mockConn.On("ExchangeCode", ctx, "code-2").Return(freshToken(), nil).Once()
		mockConn.On("Identity", ctx, mock.Anything, "realm-1").Return("realm-1", "Acme Corp", nil).Once()
		mockRepo.On("Save", ctx, mock.Anything).Return(domainerrors.ErrConnectionExists).Once()
		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(existing, nil).Once()
		mockRepo.On("UpdateToken", ctx, existing).Return(nil).Once()

		service := usecase.NewConnectionService(mockRepo, stubResolver{mockConn}, states, logger)
		conn, err := service.CompleteCallback(ctx, "state-2", "code-2", "realm-1")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, conn.ID)
		assert.Equal(t, "access-1", conn.AccessToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("a different realm on a connected platform is a conflict", func(t *testing.T) {
		mockRepo := new(MockConnectionRepository)
		mockConn := new(MockConnector)
		states := new(MockStateStore)

		existing := &model.Connection{
			ID:       uuid.New(),
			Platform: platform.PlatformQuickBooks,
			RealmID:  "realm-1",
		}

		states.On("Validate", ctx, "state-3").Return(platform.PlatformQuickBooks, nil).Once()
		mockConn.On("ExchangeCode", ctx, "code-3").Return(freshToken(), nil).Once()
		mockConn.On("Identity", ctx, mock.Anything, "realm-other").Return("realm-other", "Other Co", nil).Once()
		mockRepo.On("Save", ctx, mock.Anything).Return(domainerrors.ErrConnectionExists).Once()
		mockRepo.On("GetByPlatform", ctx, platform.PlatformQuickBooks).Return(existing, nil).Once()

		service := usecase.NewConnectionService(mockRepo, stubResolver{mockConn}, states, logger)
		_, err := service.CompleteCallback(ctx, "state-3", "code-3", "realm-other")

		assert.ErrorIs(t, err, domainerrors.ErrConnectionExists)
		mockRepo.AssertNotCalled(t, "UpdateToken", mock.Anything, mock.Anything)
	})
}

func TestConnectionService_Disconnect(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	mockRepo := new(MockConnectionRepository)
	conn := &model.Connection{ID: uuid.New(), Platform: platform.PlatformXero}

	mockRepo.On("GetByID", ctx, conn.ID).Return(conn, nil).Once()
	mockRepo.On("Delete", ctx, conn.ID).Return(nil).Once()

	service := usecase.NewConnectionService(mockRepo, stubResolver{new(MockConnector)}, new(MockStateStore), logger)

	require.NoError(t, service.Disconnect(ctx, conn.ID))
	mockRepo.AssertExpectations(t)
}
