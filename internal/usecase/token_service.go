package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/domain/repository"
)

// TokenService guarantees every platform call runs with a valid access
// token. Refreshes are serialized per connection so concurrent callers
// trigger at most one token exchange; the version column on the connection
// row guards against lost updates across instances.
type TokenService struct {
	connections repository.ConnectionRepository
	connectors  connector.Resolver
	logger      *zap.Logger
	now         func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewTokenService creates a token service.
func NewTokenService(connections repository.ConnectionRepository, connectors connector.Resolver, logger *zap.Logger) *TokenService {
	return &TokenService{
		connections: connections,
		connectors:  connectors,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

// EnsureValid returns a usable access token for the connection, refreshing
// and persisting it first when the current one has expired. On success the
// connection's token fields and version are updated in place.
func (s *TokenService) EnsureValid(ctx context.Context, conn *model.Connection) (platform.Token, error) {
	now := s.now().UTC()
	if conn.Token().Valid(now) {
		return conn.Token(), nil
	}

	lock := s.lockFor(conn.ID)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while this one waited on the lock.
	// Re-read and adopt instead of refreshing again.
	fresh, err := s.connections.GetByID(ctx, conn.ID)
	if err != nil {
		return platform.Token{}, err
	}
	adopt(conn, fresh)

	now = s.now().UTC()
	if conn.Token().Valid(now) {
		return conn.Token(), nil
	}

	if !conn.Token().Refreshable(now) {
		s.logger.Warn("Refresh token expired; connection requires re-authorization",
			zap.String("connection_id", conn.ID.String()),
			zap.String("platform", string(conn.Platform)))
		return platform.Token{}, domainerrors.ErrRefreshTokenExpired
	}

	cn, err := s.connectors.Resolve(conn.Platform)
	if err != nil {
		return platform.Token{}, err
	}

	refreshed, err := cn.Refresh(ctx, conn.Token())
	if err != nil {
		return platform.Token{}, err
	}

	conn.SetToken(refreshed)
	if err := s.connections.UpdateToken(ctx, conn); err != nil {
		if errors.Is(err, domainerrors.ErrStaleTokenVersion) {
			// A concurrent refresh on another instance won the persist race.
			// Its token is the live one; use that.
			latest, getErr := s.connections.GetByID(ctx, conn.ID)
			if getErr != nil {
				return platform.Token{}, getErr
			}
			adopt(conn, latest)
			return conn.Token(), nil
		}
		return platform.Token{}, err
	}

	s.logger.Info("Access token refreshed",
		zap.String("connection_id", conn.ID.String()),
		zap.String("platform", string(conn.Platform)),
		zap.Time("access_token_expiry", refreshed.AccessTokenExpiry))

	return conn.Token(), nil
}

func (s *TokenService) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func adopt(conn, fresh *model.Connection) {
	conn.SetToken(fresh.Token())
	conn.TokenVersion = fresh.TokenVersion
	conn.Watermarks = fresh.Watermarks
}
