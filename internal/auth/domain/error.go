package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserExists         = errors.New("user_exists")
	ErrStoreCodeExists    = errors.New("store_code_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrInvalidStoreName   = errors.New("invalid_store_name")
	ErrInvalidStoreCode   = errors.New("invalid_store_code")
)
