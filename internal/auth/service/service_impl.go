package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/auth/domain"
	"github.com/smallbiznis/tillpoint/internal/auth/password"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"github.com/smallbiznis/tillpoint/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	minPasswordLength = 8
	maxStoreCodeLen   = 10
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	sessionTTL  time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("auth.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		sessionRepo: p.SessionRepo,
		sessionTTL:  time.Duration(p.Cfg.SessionTTLHours) * time.Hour,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.UserView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		return nil, domain.ErrInvalidStoreName
	}

	if _, err := s.repo.FindByEmail(ctx, s.db, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	storeCode, err := s.resolveStoreCode(ctx, req.StoreCode, storeName)
	if err != nil {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Email:               email,
		PasswordHash:        hashed,
		StoreName:           storeName,
		StoreCode:           storeCode,
		StoreAddress:        trimPtr(req.StoreAddress),
		Phone:               trimPtr(req.Phone),
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("store_code", user.StoreCode),
	)
	view := toView(user)
	return &view, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(s.sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	view := toView(user)
	return &domain.LoginResult{
		User:      &view,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}

	return s.sessionRepo.RevokeSession(ctx, s.db, session.ID, s.clock.Now())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, s.db, session.UserID)
}

func (s *Service) Me(ctx context.Context) (*domain.UserView, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidSession
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	view := toView(user)
	return &view, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, oldPassword, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if !password.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	return s.repo.UpdateFields(ctx, s.db, userID, map[string]any{
		"password_hash":         hashed,
		"last_password_changed": &now,
		"updated_at":            now,
	})
}

// resolveStoreCode validates an explicit code or derives one from the store
// name, appending a numeric suffix until it is unique.
func (s *Service) resolveStoreCode(ctx context.Context, explicit, storeName string) (string, error) {
	if code := sanitizeStoreCode(explicit); code != "" {
		if len(sanitizeStoreCode(explicit)) != len(strings.TrimSpace(explicit)) {
			return "", domain.ErrInvalidStoreCode
		}
		if _, err := s.repo.FindByStoreCode(ctx, s.db, code); err == nil {
			return "", domain.ErrStoreCodeExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		return code, nil
	}
	if strings.TrimSpace(explicit) != "" {
		return "", domain.ErrInvalidStoreCode
	}

	base := sanitizeStoreCode(storeName)
	if base == "" {
		base = "STORE"
	}
	if len(base) > 6 {
		base = base[:6]
	}

	candidate := base
	for i := 2; ; i++ {
		_, err := s.repo.FindByStoreCode(ctx, s.db, candidate)
		if errors.Is(err, domain.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func sanitizeStoreCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) > maxStoreCodeLen {
		code = code[:maxStoreCodeLen]
	}
	return code
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func toView(u *domain.User) domain.UserView {
	return domain.UserView{
		ID:           u.ID.String(),
		Email:        u.Email,
		StoreName:    u.StoreName,
		StoreCode:    u.StoreCode,
		StoreAddress: u.StoreAddress,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
