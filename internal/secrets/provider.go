// Package secrets resolves credentials from the environment or AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfitz/personnel/internal/config"
	"github.com/ericfitz/personnel/internal/slogging"
)

// Common errors
var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrInvalidConfig  = errors.New("invalid secrets provider configuration")
)

// Provider defines the interface for secrets providers
type Provider interface {
	// GetSecret returns ErrSecretNotFound if the secret doesn't exist.
	GetSecret(ctx context.Context, key string) (string, error)
	Name() string
	Close() error
}

// ProviderType represents the type of secrets provider
type ProviderType string

const (
	ProviderTypeEnv ProviderType = "env"
	ProviderTypeAWS ProviderType = "aws"
)

// Standard secret keys
const (
	KeyJWTSecret        = "jwt_secret"
	KeyDatabasePassword = "database_password"
	KeyRedisPassword    = "redis_password"
)

// NewProvider creates a secrets provider; the environment is the default.
func NewProvider(ctx context.Context, cfg config.SecretsConfig) (Provider, error) {
	logger := slogging.Get()

	switch ProviderType(cfg.Provider) {
	case "", ProviderTypeEnv:
		return NewEnvProvider(), nil
	case ProviderTypeAWS:
		if cfg.AWSRegion == "" || cfg.AWSSecretName == "" {
			return nil, fmt.Errorf("%w: AWS secrets provider requires region and secret name", ErrInvalidConfig)
		}
		logger.Info("Initializing AWS Secrets Manager provider for %s", cfg.AWSSecretName)
		return NewAWSProvider(ctx, cfg.AWSRegion, cfg.AWSSecretName)
	default:
		return nil, fmt.Errorf("%w: unknown provider type: %s", ErrInvalidConfig, cfg.Provider)
	}
}

// Apply fills credentials in cfg that are empty from the provider. A
// missing secret leaves the field untouched.
func Apply(ctx context.Context, p Provider, cfg *config.Config) error {
	targets := []struct {
		key string
		dst *string
	}{
		{KeyJWTSecret, &cfg.Auth.JWT.Secret},
		{KeyDatabasePassword, &cfg.Database.Password},
		{KeyRedisPassword, &cfg.Redis.Password},
	}

	for _, t := range targets {
		if *t.dst != "" {
			continue
		}
		value, err := p.GetSecret(ctx, t.key)
		if errors.Is(err, ErrSecretNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve %s from %s: %w", t.key, p.Name(), err)
		}
		*t.dst = value
	}
	return nil
}
