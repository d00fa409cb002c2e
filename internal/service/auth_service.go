package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/watchlist/internal/dto"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
)

const sessionSubject = "watchlist"

// SessionClaims are carried by the signed session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// AuthConfig defines configuration for the password gate.
type AuthConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
	Issuer        string
}

// AuthService checks the shared password and issues session tokens.
type AuthService struct {
	passwordHash []byte
	logger       *zap.Logger
	metrics      *MetricsService
	config       AuthConfig
	now          func() time.Time
}

// NewAuthService hashes the configured password once so the plain value is not
// retained.
func NewAuthService(config AuthConfig, metrics *MetricsService, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Password == "" {
		return nil, fmt.Errorf("password must not be empty")
	}
	if config.SessionSecret == "" {
		return nil, fmt.Errorf("session secret must not be empty")
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 12 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = sessionSubject
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(config.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	config.Password = ""

	return &AuthService{
		passwordHash: hash,
		logger:       logger,
		metrics:      metrics,
		config:       config,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login verifies the password and returns a session token.
func (s *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	if !IsValidPassword(req.Password) {
		s.metrics.RecordLogin(false)
		return nil, appErrors.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		s.logger.Info("rejected login attempt")
		return nil, appErrors.ErrInvalidPassword
	}

	token, err := s.generateSessionToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.metrics.RecordLogin(true)

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.SessionTTL.Seconds()),
	}, nil
}

// SessionTTL reports how long issued tokens stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject != sessionSubject {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

func (s *AuthService) generateSessionToken() (string, error) {
	issuedAt := s.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   sessionSubject,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}
