package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	domainRepo "github.com/ledgerbridge/booksync/internal/domain/repository"
)

type connectionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ConnectionRepository {
	return &connectionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *connectionRepository) Save(ctx context.Context, conn *model.Connection) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Connection{}).
		Where("platform = ? AND realm_id = ?", conn.Platform, conn.RealmID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check existing connection: %w", err)
	}
	if count > 0 {
		return domainErrors.ErrConnectionExists
	}

	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		r.logger.Error("Failed to create connection",
			zap.String("platform", string(conn.Platform)),
			zap.Error(err))
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) GetByPlatform(ctx context.Context, p platform.Platform) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("platform = ?", p).
		Order("created_at ASC").
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrNoConnection
		}
		r.logger.Error("Failed to get connection by platform",
			zap.String("platform", string(p)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return &conn, nil
}

func (r *connectionRepository) List(ctx context.Context) ([]*model.Connection, error) {
	var conns []*model.Connection
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&conns).Error
	if err != nil {
		r.logger.Error("Failed to list connections", zap.Error(err))
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// UpdateToken persists token fields only while the stored token version
// still matches the caller's. A refresh that lost the race gets
// ErrStaleTokenVersion and must re-read before deciding to retry.
func (r *connectionRepository) UpdateToken(ctx context.Context, conn *model.Connection) error {
	res := r.db.WithContext(ctx).Model(&model.Connection{}).
		Where("id = ? AND token_version = ?", conn.ID, conn.TokenVersion).
		Updates(map[string]interface{}{
			"access_token":         conn.AccessToken,
			"access_token_expiry":  conn.AccessTokenExpiry,
			"refresh_token":        conn.RefreshToken,
			"refresh_token_expiry": conn.RefreshTokenExpiry,
			"token_version":        conn.TokenVersion + 1,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		r.logger.Error("Failed to update connection token",
			zap.String("connection_id", conn.ID.String()),
			zap.Error(res.Error))
		return fmt.Errorf("failed to update token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainErrors.ErrStaleTokenVersion
	}
	conn.TokenVersion++
	return nil
}

// UpdateWatermark sets a single key inside the watermarks column. The
// jsonb_set runs against the stored row, not the caller's snapshot, so a
// sync of one entity type can never regress the watermark another entity's
// sync persisted in the meantime.
func (r *connectionRepository) UpdateWatermark(ctx context.Context, conn *model.Connection, entity platform.EntityType, mark time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Connection{}).
		Where("id = ?", conn.ID).
		Updates(map[string]interface{}{
			"watermarks": gorm.Expr(
				"jsonb_set(coalesce(watermarks, '{}'::jsonb), ?, to_jsonb(?::text), true)",
				fmt.Sprintf("{%s}", entity),
				mark.UTC().Format(time.RFC3339),
			),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		r.logger.Error("Failed to update connection watermark",
			zap.String("connection_id", conn.ID.String()),
			zap.String("entity", string(entity)),
			zap.Error(err))
		return fmt.Errorf("failed to update watermark: %w", err)
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Connection{})
	if res.Error != nil {
		r.logger.Error("Failed to delete connection",
			zap.String("connection_id", id.String()),
			zap.Error(res.Error))
		return fmt.Errorf("failed to delete connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainErrors.ErrConnectionNotFound
	}
	return nil
}
