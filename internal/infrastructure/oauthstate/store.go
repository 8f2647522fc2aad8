package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

const (
	keyPrefix = "booksync:oauth_state:"
	stateTTL  = 10 * time.Minute
)

// Store issues and validates single-use OAuth state nonces, backed by
// Redis so callbacks can land on any instance.
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStore creates a state store on the given Redis client.
func NewStore(client *redis.Client, logger *zap.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Issue creates a nonce bound to the platform the flow was started for.
func (s *Store) Issue(ctx context.Context, p platform.Platform) (string, error) {
	state := uuid.New().String()
	if err := s.client.Set(ctx, keyPrefix+state, string(p), stateTTL).Err(); err != nil {
		s.logger.Error("Failed to store OAuth state", zap.Error(err))
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

// Validate consumes a nonce and returns the platform it was issued for.
// A nonce validates exactly once; unknown or expired states are rejected.
func (s *Store) Validate(ctx context.Context, state string) (platform.Platform, error) {
	value, err := s.client.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", domainerrors.ErrInvalidOAuthState
	}
	if err != nil {
		s.logger.Error("Failed to validate OAuth state", zap.Error(err))
		return "", fmt.Errorf("failed to validate oauth state: %w", err)
	}

	p, err := platform.Parse(value)
	if err != nil {
		return "", domainerrors.ErrInvalidOAuthState
	}
	return p, nil
}
