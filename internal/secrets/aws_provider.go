package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/ericfitz/personnel/internal/slogging"
)

// secretsManagerAPI is the subset of the Secrets Manager client we call
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads keys from a single JSON secret in AWS Secrets Manager
type AWSProvider struct {
	client     secretsManagerAPI
	secretName string

	mu     sync.Mutex
	cache  map[string]string
	loaded bool
}

// NewAWSProvider creates a new AWS Secrets Manager provider
func NewAWSProvider(ctx context.Context, region, secretName string) (*AWSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSProviderWithClient(secretsmanager.NewFromConfig(cfg), secretName), nil
}

func newAWSProviderWithClient(client secretsManagerAPI, secretName string) *AWSProvider {
	return &AWSProvider{client: client, secretName: secretName}
}

// GetSecret retrieves one key from the JSON secret, loading it on first use
func (p *AWSProvider) GetSecret(ctx context.Context, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		if err := p.load(ctx); err != nil {
			return "", err
		}
	}
	value, ok := p.cache[key]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (p *AWSProvider) load(ctx context.Context) error {
	result, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: AWS secret '%s' not found", ErrSecretNotFound, p.secretName)
		}
		return fmt.Errorf("failed to retrieve AWS secret: %w", err)
	}
	if result.SecretString == nil {
		return fmt.Errorf("AWS secret '%s' has no string value", p.secretName)
	}

	var secrets map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &secrets); err != nil {
		return fmt.Errorf("failed to parse AWS secret as JSON: %w", err)
	}

	p.cache = secrets
	p.loaded = true
	slogging.Get().Info("Loaded %d secrets from AWS Secrets Manager", len(secrets))
	return nil
}

// InvalidateCache forces a reload on next access
func (p *AWSProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = nil
	p.loaded = false
}

// Name returns the provider name
func (p *AWSProvider) Name() string {
	return string(ProviderTypeAWS)
}

// Close is a no-op
func (p *AWSProvider) Close() error {
	return nil
}
