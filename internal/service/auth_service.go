package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/config"
	"github.com/makkenzo/license-gate/internal/domain/user"
	"github.com/makkenzo/license-gate/internal/ierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by administrator access tokens.
type Claims struct {
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the token subject.
func (c *Claims) UserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}

type AuthService struct {
	users  user.Repository
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewAuthService(users user.Repository, cfg *config.JWTConfig, logger *zap.Logger) (*AuthService, error) {
	log := logger.Named("AuthService")

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		log.Warn("jwt.secret is not set, using a random secret; tokens will not survive a restart")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &AuthService{
		users:  users,
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
		logger: log,
	}, nil
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Claims, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.logger.Info("Login attempt for unknown user", zap.String("email", email))
			return "", nil, ierr.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up user", zap.Error(err))
		return "", nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Login attempt with wrong password", zap.String("email", email))
		return "", nil, ierr.ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return "", nil, fmt.Errorf("%w: failed to sign token", ierr.ErrInternalServer)
	}

	s.logger.Info("User logged in", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return token, claims, nil
}

func (s *AuthService) ValidateToken(_ context.Context, rawToken string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("Access token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}

	if claims.UserID() == uuid.Nil {
		return nil, ierr.ErrTokenInvalidClaims
	}
	return &claims, nil
}

// EnsureAdmin creates the first ADMIN account from configuration when none
// exists yet. It is a no-op once an administrator is present.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg *config.AdminConfig) (bool, error) {
	exists, err := s.users.ExistsWithRole(ctx, user.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check for administrator: %w", err)
	}
	if exists {
		s.logger.Debug("Administrator already exists")
		return false, nil
	}
	if cfg.Email == "" || cfg.Password == "" {
		s.logger.Warn("No administrator exists and admin.email/admin.password are not configured")
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	id, err := s.users.Create(ctx, &user.User{
		Email:        cfg.Email,
		Name:         cfg.Name,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create administrator: %w", err)
	}

	s.logger.Info("Administrator created", zap.String("id", id.String()), zap.String("email", cfg.Email))
	return true, nil
}
