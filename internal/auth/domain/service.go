package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*UserView, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error

	// Authenticate resolves a raw bearer token to its user and touches the
	// session's last-seen timestamp.
	Authenticate(ctx context.Context, rawToken string) (*User, error)

	Me(ctx context.Context) (*UserView, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, oldPassword, newPassword string) error
}

type SignupRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	StoreName    string  `json:"store_name"`
	StoreCode    string  `json:"store_code"`
	StoreAddress *string `json:"store_address"`
	Phone        *string `json:"phone"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type LoginResult struct {
	User      *UserView
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

// UserView is the API shape of a user, without credential material.
type UserView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	StoreName    string    `json:"store_name"`
	StoreCode    string    `json:"store_code"`
	StoreAddress *string   `json:"store_address,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
