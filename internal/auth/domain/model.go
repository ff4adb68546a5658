// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User is a store owner account. Every user owns exactly one store; the
// store code prefixes that store's bill numbers.
type User struct {
	ID                  snowflake.ID      `gorm:"primaryKey"`
	Email               string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash        string            `gorm:"column:password_hash;type:text;not null"`
	StoreName           string            `gorm:"column:store_name;type:text;not null"`
	StoreCode           string            `gorm:"column:store_code;type:text;not null;uniqueIndex"`
	StoreAddress        *string           `gorm:"column:store_address;type:text"`
	Phone               *string           `gorm:"column:phone;type:text"`
	LastPasswordChanged *time.Time        `gorm:"column:last_password_changed"`
	Metadata            datatypes.JSONMap `gorm:"column:metadata;type:jsonb"`
	CreatedAt           time.Time         `gorm:"column:created_at;not null"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is a persisted login session. Only the SHA-256 hash of the
// opaque token is stored; the raw token exists client-side only.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
