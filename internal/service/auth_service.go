package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/apperr"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/store"
)

const sessionKeyPrefix = "session:"

// AuthService issues and verifies login tokens. A token is only accepted
// while its session key is still in the KV store, so logout revokes
// server-side instead of waiting for the JWT to expire.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   store.KV
	secret     []byte
	expiryDays int
	logger     *zap.Logger
}

func NewAuthService(users repository.UserRepository, sessions store.KV, secret string, expiryDays int, logger *zap.Logger) AuthService {
	if expiryDays <= 0 {
		expiryDays = 30
	}
	return &authService{
		users:      users,
		sessions:   sessions,
		secret:     []byte(secret),
		expiryDays: expiryDays,
		logger:     logger,
	}
}

// LoginRequest accepts the login name in either field; clients send one of
// the two.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the profile plus the raw token for clients that do
// not use the cookie.
type LoginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if login == "" || req.Password == "" {
		return nil, apperr.BadRequest("username and password are required")
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	ttl := time.Duration(s.expiryDays) * 24 * time.Hour
	now := time.Now()
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.Hex(),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKeyPrefix+jti, user.ID.Hex(), ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("username", user.Username),
	)

	return &LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the token's session. Unparseable tokens are a no-op so the
// handler can always clear the cookie.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Del(ctx, sessionKeyPrefix+claims.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.Subject))
	return nil
}

func (s *authService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	if _, err := s.sessions.Get(ctx, sessionKeyPrefix+claims.ID); err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, apperr.Unauthorized("session revoked")
		}
		return nil, fmt.Errorf("check session: %w", err)
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *authService) parse(token string) (*jwt.RegisteredClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("empty token")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("missing token claims")
	}
	return &claims, nil
}
