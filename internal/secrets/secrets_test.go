package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/ericfitz/personnel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsManager struct {
	value *string
	err   error
	calls int
}

func (f *fakeSecretsManager) GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("PERSONNEL_SECRET_JWT_SECRET", "s3cret")
	p := NewEnvProvider()

	value, err := p.GetSecret(context.Background(), KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = p.GetSecret(context.Background(), "no_such_secret_key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, "env", p.Name())
}

func TestAWSProvider_LoadsOnceAndCaches(t *testing.T) {
	fake := &fakeSecretsManager{value: aws.String(`{"jwt_secret":"abc","database_password":"pw"}`)}
	p := newAWSProviderWithClient(fake, "personnel/prod")
	ctx := context.Background()

	value, err := p.GetSecret(ctx, KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	value, err = p.GetSecret(ctx, KeyDatabasePassword)
	require.NoError(t, err)
	assert.Equal(t, "pw", value)

	_, err = p.GetSecret(ctx, KeyRedisPassword)
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.Equal(t, 1, fake.calls)

	p.InvalidateCache()
	_, err = p.GetSecret(ctx, KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestAWSProvider_Errors(t *testing.T) {
	ctx := context.Background()

	missing := newAWSProviderWithClient(&fakeSecretsManager{err: &types.ResourceNotFoundException{}}, "x")
	_, err := missing.GetSecret(ctx, KeyJWTSecret)
	assert.ErrorIs(t, err, ErrSecretNotFound)

	broken := newAWSProviderWithClient(&fakeSecretsManager{err: errors.New("throttled")}, "x")
	_, err = broken.GetSecret(ctx, KeyJWTSecret)
	assert.ErrorContains(t, err, "throttled")

	notJSON := newAWSProviderWithClient(&fakeSecretsManager{value: aws.String("plain")}, "x")
	_, err = notJSON.GetSecret(ctx, KeyJWTSecret)
	assert.ErrorContains(t, err, "JSON")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), config.SecretsConfig{})
	require.NoError(t, err)
	assert.Equal(t, "env", p.Name())

	_, err = NewProvider(context.Background(), config.SecretsConfig{Provider: "aws"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewProvider(context.Background(), config.SecretsConfig{Provider: "vault"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApply(t *testing.T) {
	fake := &fakeSecretsManager{value: aws.String(`{"jwt_secret":"from-aws","database_password":"pw"}`)}
	p := newAWSProviderWithClient(fake, "x")

	cfg := &config.Config{}
	cfg.Database.Password = "explicit"

	require.NoError(t, Apply(context.Background(), p, cfg))
	assert.Equal(t, "from-aws", cfg.Auth.JWT.Secret)
	assert.Equal(t, "explicit", cfg.Database.Password, "configured values are kept")
	assert.Empty(t, cfg.Redis.Password)
}
