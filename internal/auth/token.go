package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

// TokenConfig configures a TokenService. Secret is loaded once at startup.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Token is an issued bearer token.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256-signed bearer tokens whose subject
// is a user id. Verification is pure: it never touches the store.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService validates cfg and returns a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token service: secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token service: TTL must be positive, got %s", cfg.TTL)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID expiring TTL after now.
func (s *TokenService) Issue(userID string) (Token, error) {
	if userID == "" {
		return Token{}, fmt.Errorf("issue token: empty subject")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		Value:     signed,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify returns the subject of a valid token. A token whose expiry has
// passed yields ExpiredToken even when its signature does not verify; every
// other failure yields InvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", apperrors.InvalidToken(fmt.Errorf("empty token"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || s.expiredUnverified(tokenString) {
			return "", apperrors.ExpiredToken(err)
		}
		return "", apperrors.InvalidToken(err)
	}

	if claims.Subject == "" {
		return "", apperrors.InvalidToken(fmt.Errorf("token has no subject"))
	}
	return claims.Subject, nil
}

// expiredUnverified reads the expiry without checking the signature.
func (s *TokenService) expiredUnverified(tokenString string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time)
}
