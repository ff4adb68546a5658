package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tillpoint/internal/auth/domain"
	"github.com/smallbiznis/tillpoint/internal/auth/repository"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Cfg:         config.Config{SessionTTLHours: 24},
		Clock:       fake,
		GenID:       node,
		Repo:        repository.Provide(),
		SessionRepo: repository.ProvideSession(),
	})
	return svc, fake
}

func signup(t *testing.T, svc domain.Service, email, storeName string) *domain.UserView {
	t.Helper()
	view, err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:     email,
		Password:  "correct-horse",
		StoreName: storeName,
	})
	require.NoError(t, err)
	return view
}

func TestSignup_DerivesStoreCode(t *testing.T) {
	svc, _ := newTestService(t)

	view := signup(t, svc, "owner@example.com", "Corner Mart")
	assert.Equal(t, "CORNER", view.StoreCode)
	assert.Equal(t, "Corner Mart", view.StoreName)

	// Same name gets a suffixed code.
	second := signup(t, svc, "other@example.com", "Corner Mart")
	assert.Equal(t, "CORNER2", second.StoreCode)
}

func TestSignup_ExplicitStoreCode(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "owner@example.com",
		Password:  "correct-horse",
		StoreName: "Corner Mart",
		StoreCode: "cm01",
	})
	require.NoError(t, err)
	assert.Equal(t, "CM01", view.StoreCode)

	_, err = svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "other@example.com",
		Password:  "correct-horse",
		StoreName: "Other",
		StoreCode: "CM01",
	})
	assert.ErrorIs(t, err, domain.ErrStoreCodeExists)

	_, err = svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "third@example.com",
		Password:  "correct-horse",
		StoreName: "Third",
		StoreCode: "bad code!",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStoreCode)
}

func TestSignup_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	signup(t, svc, "owner@example.com", "Corner Mart")

	_, err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "owner@example.com",
		Password:  "correct-horse",
		StoreName: "Again",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "short@example.com",
		Password:  "short",
		StoreName: "Shop",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Signup(context.Background(), domain.SignupRequest{
		Email:     "not-an-email",
		Password:  "correct-horse",
		StoreName: "Shop",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, fake := newTestService(t)
	signup(t, svc, "owner@example.com", "Corner Mart")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)
	assert.Equal(t, fake.Now().Add(24*time.Hour), result.ExpiresAt)

	user, err := svc.Authenticate(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)

	_, err = svc.Authenticate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	signup(t, svc, "owner@example.com", "Corner Mart")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	svc, fake := newTestService(t)
	signup(t, svc, "owner@example.com", "Corner Mart")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	fake.Advance(25 * time.Hour)
	_, err = svc.Authenticate(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	signup(t, svc, "owner@example.com", "Corner Mart")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.RawToken))

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	view := signup(t, svc, "owner@example.com", "Corner Mart")

	userID, err := snowflake.ParseString(view.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), userID, "wrong-password", "new-password-1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), userID, "correct-horse", "new-password-1"))

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "new-password-1",
	})
	require.NoError(t, err)
}
