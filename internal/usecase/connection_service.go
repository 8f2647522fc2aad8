package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/domain/repository"
)

// StateStore issues and validates the single-use OAuth state nonces.
type StateStore interface {
	Issue(ctx context.Context, p platform.Platform) (string, error)
	Validate(ctx context.Context, state string) (platform.Platform, error)
}

// ConnectionService owns the OAuth connect/disconnect lifecycle.
type ConnectionService struct {
	connections repository.ConnectionRepository
	connectors  connector.Resolver
	states      StateStore
	logger      *zap.Logger
}

// NewConnectionService creates a connection service.
func NewConnectionService(
	connections repository.ConnectionRepository,
	connectors connector.Resolver,
	states StateStore,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		connectors:  connectors,
		states:      states,
		logger:      logger,
	}
}

// AuthorizeURL issues a state nonce and builds the platform's OAuth
// authorization URL for it.
func (s *ConnectionService) AuthorizeURL(ctx context.Context, p platform.Platform) (string, error) {
	cn, err := s.connectors.Resolve(p)
	if err != nil {
		return "", err
	}
	state, err := s.states.Issue(ctx, p)
	if err != nil {
		return "", err
	}
	return cn.AuthorizeURL(state), nil
}

// CompleteCallback finishes the OAuth flow: validates the state nonce,
// exchanges the code, resolves the realm identity and persists the
// connection. Re-authorizing an already connected realm replaces its token
// in place; a different realm on the same platform is rejected.
func (s *ConnectionService) CompleteCallback(ctx context.Context, state, code, realmHint string) (*model.Connection, error) {
	p, err := s.states.Validate(ctx, state)
	if err != nil {
		return nil, err
	}

	cn, err := s.connectors.Resolve(p)
	if err != nil {
		return nil, err
	}

	token, err := cn.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	realmID, displayName, err := cn.Identity(ctx, token, realmHint)
	if err != nil {
		return nil, err
	}

	conn := &model.Connection{
		ID:          uuid.New(),
		Platform:    p,
		RealmID:     realmID,
		DisplayName: displayName,
	}
	conn.SetToken(token)

	err = s.connections.Save(ctx, conn)
	if errors.Is(err, domainerrors.ErrConnectionExists) {
		existing, getErr := s.connections.GetByPlatform(ctx, p)
		if getErr != nil {
			return nil, getErr
		}
		if existing.RealmID != realmID {
			return nil, domainerrors.ErrConnectionExists
		}
		existing.SetToken(token)
		existing.DisplayName = displayName
		if err := s.connections.UpdateToken(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("Connection re-authorized",
			zap.String("platform", string(p)),
			zap.String("realm_id", realmID))
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Connection established",
		zap.String("platform", string(p)),
		zap.String("realm_id", realmID),
		zap.String("display_name", displayName))

	return conn, nil
}

// List returns all connections.
func (s *ConnectionService) List(ctx context.Context) ([]*model.Connection, error) {
	return s.connections.List(ctx)
}

// Get returns one connection by id.
func (s *ConnectionService) Get(ctx context.Context, id uuid.UUID) (*model.Connection, error) {
	return s.connections.GetByID(ctx, id)
}

// Disconnect removes a connection. Synced unified rows are kept; only the
// credential goes away.
func (s *ConnectionService) Disconnect(ctx context.Context, id uuid.UUID) error {
	conn, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.connections.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Connection removed",
		zap.String("connection_id", id.String()),
		zap.String("platform", string(conn.Platform)))
	return nil
}
