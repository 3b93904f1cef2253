package secrets

import (
	"context"
	"strings"

	"github.com/ericfitz/personnel/internal/envutil"
)

// EnvProvider reads secrets from PERSONNEL_SECRET_<KEY> variables
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates a new environment variable secrets provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{prefix: "SECRET_"}
}

// GetSecret maps key "jwt_secret" to PERSONNEL_SECRET_JWT_SECRET
func (p *EnvProvider) GetSecret(_ context.Context, key string) (string, error) {
	value, ok := envutil.Lookup(p.prefix + strings.ToUpper(key))
	if !ok || value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Name returns the provider name
func (p *EnvProvider) Name() string {
	return string(ProviderTypeEnv)
}

// Close is a no-op
func (p *EnvProvider) Close() error {
	return nil
}
