package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindByStoreCode(ctx context.Context, db *gorm.DB, storeCode string) (*User, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	GetSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	RevokeSession(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateLastSeen(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
