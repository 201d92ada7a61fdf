package service

import (
	"context"
	"errors"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password. Callers get the same error for both so login failures do not
// leak which part was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// StaffStore looks up staff login accounts.
type StaffStore interface {
	GetStaffByUsername(ctx context.Context, username string) (*models.StaffUser, error)
	GetStaffByID(ctx context.Context, id int64) (*models.StaffUser, error)
}

// TokenStore persists opaque bearer tokens.
type TokenStore interface {
	SetAuthToken(ctx context.Context, token string, staffID int64, ttl time.Duration) error
	GetAuthToken(ctx context.Context, token string) (int64, error)
	DeleteAuthToken(ctx context.Context, token string) error
}

// AuthService handles staff login, logout and bearer-token resolution.
// Tokens are opaque UUIDs stored in Redis with a TTL; there is nothing to
// decode client-side.
type AuthService struct {
	store    StaffStore
	tokens   TokenStore
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store StaffStore, tokens TokenStore, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   util.NamedLogger("auth"),
	}
}

// Login verifies the credentials and issues a bearer token.
func (as *AuthService) Login(ctx context.Context, username, password string) (string, *models.StaffUser, error) {
	staff, err := as.store.GetStaffByUsername(ctx, username)
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}
	if staff == nil {
		util.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		util.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		as.logger.Info("Login rejected", zap.String("username", username))
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := as.tokens.SetAuthToken(ctx, token, staff.ID, as.tokenTTL); err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	as.logger.Info("Staff logged in",
		zap.Int64("staff_id", staff.ID),
		zap.String("role", staff.Role))
	return token, staff, nil
}

// Logout revokes a bearer token. Revoking an unknown token is not an error.
func (as *AuthService) Logout(ctx context.Context, token string) error {
	return as.tokens.DeleteAuthToken(ctx, token)
}

// Authenticate resolves a bearer token to the staff account it belongs to.
func (as *AuthService) Authenticate(ctx context.Context, token string) (*models.StaffUser, error) {
	staffID, err := as.tokens.GetAuthToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if staffID == 0 {
		return nil, ErrInvalidCredentials
	}
	return as.store.GetStaffByID(ctx, staffID)
}

// HashPassword produces a bcrypt hash for seeding staff accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
