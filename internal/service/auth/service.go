// Package auth issues and checks the bearer tokens used by the HTTP API.
package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/repository/tokens"
)

const defaultTokenTTL = 24 * time.Hour

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Auth("invalid token subject")
	}
	return id, nil
}

// Users is the subset of the master catalog needed to authenticate.
type Users interface {
	User(id int64) (models.User, bool)
	UserByEmail(email string) (models.User, bool)
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Service implements login, token verification and logout.
type Service struct {
	users    Users
	denylist tokens.Denylist
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(users Users, denylist tokens.Denylist, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if denylist == nil {
		denylist = tokens.NewMemoryDenylist()
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{
		users:    users,
		denylist: denylist,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Login checks the credentials against the catalog and signs a new token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, ok := s.users.UserByEmail(email)
	if !ok || user.PasswordHash == "" {
		s.logger.Warn("login rejected", zap.String("email", email), zap.String("reason", "unknown user"))
		return nil, apperr.Auth("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", zap.String("email", email), zap.String("reason", "password mismatch"))
		return nil, apperr.Auth("invalid email or password")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Verify checks the signature, expiry and revocation state of a token.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Auth("missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Auth("token expired")
		}
		return nil, apperr.Auth("invalid token")
	}

	if claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("token denylist lookup failed", zap.Error(err))
			return nil, apperr.Unavailable(err, "token check unavailable")
		}
		if revoked {
			return nil, apperr.Auth("token revoked")
		}
	}
	return claims, nil
}

// CurrentUser resolves the catalog user a verified token belongs to.
func (s *Service) CurrentUser(claims *Claims) (models.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return models.User{}, err
	}
	user, ok := s.users.User(id)
	if !ok {
		return models.User{}, apperr.Auth("user %d no longer exists", id)
	}
	return user, nil
}

// Logout revokes the token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return apperr.Auth("token cannot be revoked")
	}
	until := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		s.logger.Error("token revoke failed", zap.Error(err))
		return apperr.Unavailable(err, "logout unavailable")
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.Subject))
	return nil
}

// HashPassword produces the bcrypt hash stored in the master data file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.Validation("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
