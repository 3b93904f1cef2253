package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ericfitz/personnel/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature or claim checks
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims the service issues and accepts
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens
type TokenService struct {
	secret        []byte
	issuer        string
	expiration    time.Duration
	signingMethod jwt.SigningMethod
	now           func() time.Time
}

// NewTokenService creates a token service from the jwt configuration
func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("hmac secret is required for %s", cfg.SigningMethod)
	}
	var method jwt.SigningMethod
	switch cfg.SigningMethod {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	default:
		return nil, fmt.Errorf("unsupported signing method: %s", cfg.SigningMethod)
	}
	return &TokenService{
		secret:        []byte(cfg.Secret),
		issuer:        cfg.Issuer,
		expiration:    time.Duration(cfg.ExpirationSeconds) * time.Second,
		signingMethod: method,
		now:           time.Now,
	}, nil
}

// IssueToken mints a token for subject. Used by personnelctl for development tokens.
func (s *TokenService) IssueToken(subject, email, name string) (string, *Claims, error) {
	if subject == "" {
		return "", nil, errors.New("subject is required")
	}
	now := s.now()
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	signed, err := jwt.NewWithClaims(s.signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken checks the signature, expiry and issuer and returns the claims
func (s *TokenService) VerifyToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
