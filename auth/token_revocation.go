package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/slogging"
)

// TokenRevocationList records revoked tokens in Redis until they expire
type TokenRevocationList struct {
	redis *db.RedisDB
	keys  *db.RedisKeyBuilder
	now   func() time.Time
}

// NewTokenRevocationList creates a revocation list on the given Redis connection
func NewTokenRevocationList(redis *db.RedisDB, keys *db.RedisKeyBuilder) *TokenRevocationList {
	slogging.Get().Info("Initializing token revocation list")
	return &TokenRevocationList{redis: redis, keys: keys, now: time.Now}
}

// Revoke marks the token as revoked. Already expired tokens are skipped.
func (l *TokenRevocationList) Revoke(ctx context.Context, tokenString string, claims *Claims) error {
	logger := slogging.Get()
	if claims.ExpiresAt == nil {
		return fmt.Errorf("token missing expiration")
	}

	ttl := claims.ExpiresAt.Sub(l.now())
	if ttl <= 0 {
		logger.Debug("Token already expired, skipping revocation expiration_time=%v", claims.ExpiresAt.Time)
		return nil
	}

	id := tokenID(tokenString, claims)
	if err := l.redis.Set(ctx, l.keys.RevokedTokenKey(id), "revoked", ttl); err != nil {
		logger.Error("Failed to revoke token token_id=%s error=%v", shortID(id), err)
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.Info("Token revoked token_id=%s ttl_seconds=%d", shortID(id), int(ttl.Seconds()))
	return nil
}

// IsRevoked reports whether the token has been revoked
func (l *TokenRevocationList) IsRevoked(ctx context.Context, tokenString string, claims *Claims) (bool, error) {
	id := tokenID(tokenString, claims)
	exists, err := l.redis.Exists(ctx, l.keys.RevokedTokenKey(id))
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists, nil
}

// tokenID prefers the jti claim and falls back to a SHA-256 of the raw token
func tokenID(tokenString string, claims *Claims) string {
	if claims != nil && claims.ID != "" {
		return claims.ID
	}
	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "..."
	}
	return id
}
