package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// Connection is the persisted OAuth credential and sync state for one
// external platform. At most one connection exists per (platform, realm).
type Connection struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Platform    platform.Platform `gorm:"size:20;not null;uniqueIndex:idx_connections_platform_realm,priority:1" json:"platform"`
	RealmID     string            `gorm:"column:realm_id;size:100;not null;uniqueIndex:idx_connections_platform_realm,priority:2" json:"realm_id"`
	DisplayName string            `gorm:"size:255" json:"display_name"`

	AccessToken        string    `gorm:"type:text" json:"-"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshToken       string    `gorm:"type:text" json:"-"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`

	// TokenVersion guards refresh-and-persist against lost updates. Every
	// persisted token change increments it; a writer holding a stale version
	// must re-read instead of overwriting.
	TokenVersion int64 `gorm:"default:0" json:"token_version"`

	// Watermarks maps entity type to the last successfully reconciled sync
	// instant (RFC3339, UTC). A missing key means the entity type has never
	// been synced and triggers a full resync from the epoch sentinel.
	Watermarks datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"watermarks"`

	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// Token returns the connection's token pair.
func (c *Connection) Token() platform.Token {
	return platform.Token{
		AccessToken:        c.AccessToken,
		AccessTokenExpiry:  c.AccessTokenExpiry,
		RefreshToken:       c.RefreshToken,
		RefreshTokenExpiry: c.RefreshTokenExpiry,
	}
}

// SetToken overwrites the connection's token fields.
func (c *Connection) SetToken(t platform.Token) {
	c.AccessToken = t.AccessToken
	c.AccessTokenExpiry = t.AccessTokenExpiry
	c.RefreshToken = t.RefreshToken
	c.RefreshTokenExpiry = t.RefreshTokenExpiry
}

// HasToken reports whether the connection holds any token at all.
func (c *Connection) HasToken() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Watermark returns the stored watermark for the entity type, if any.
func (c *Connection) Watermark(entity platform.EntityType) (time.Time, bool) {
	marks := c.watermarkMap()
	raw, ok := marks[string(entity)]
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// SetWatermark records a new watermark for the entity type. Watermarks are
// monotonically non-decreasing; an earlier timestamp is ignored.
func (c *Connection) SetWatermark(entity platform.EntityType, ts time.Time) {
	marks := c.watermarkMap()
	if prev, ok := marks[string(entity)]; ok {
		if prevTs, err := time.Parse(time.RFC3339, prev); err == nil && ts.Before(prevTs) {
			return
		}
	}
	marks[string(entity)] = ts.UTC().Format(time.RFC3339)
	data, err := json.Marshal(marks)
	if err != nil {
		return
	}
	c.Watermarks = datatypes.JSON(data)
}

func (c *Connection) watermarkMap() map[string]string {
	marks := make(map[string]string)
	if len(c.Watermarks) > 0 {
		_ = json.Unmarshal(c.Watermarks, &marks)
	}
	return marks
}
