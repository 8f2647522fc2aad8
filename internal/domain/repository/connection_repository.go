package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// ConnectionRepository is the registry of persisted platform connections.
type ConnectionRepository interface {
	// Save inserts a new connection. It returns ErrConnectionExists when a
	// connection for the same platform and realm is already present.
	Save(ctx context.Context, conn *model.Connection) error

	// GetByPlatform returns the first connection for the platform, or
	// ErrNoConnection when none exists.
	GetByPlatform(ctx context.Context, p platform.Platform) (*model.Connection, error)

	// GetByID returns the connection with the given id, or ErrConnectionNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Connection, error)

	// List returns all persisted connections.
	List(ctx context.Context) ([]*model.Connection, error)

	// UpdateToken persists the connection's token fields guarded by the
	// token version. It returns ErrStaleTokenVersion when the stored version
	// no longer matches, and increments conn.TokenVersion on success.
	UpdateToken(ctx context.Context, conn *model.Connection) error

	// UpdateWatermark persists the watermark for one entity type without
	// touching the rest of the map, so concurrent syncs of different entity
	// types on the same connection cannot overwrite each other's progress.
	UpdateWatermark(ctx context.Context, conn *model.Connection, entity platform.EntityType, mark time.Time) error

	// Delete removes the connection row. No soft-delete.
	Delete(ctx context.Context, id uuid.UUID) error
}
