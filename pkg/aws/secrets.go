package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValueAPI is the part of the Secrets Manager client used here.
type SecretValueAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads key/value JSON secrets such as bakery/DB_CREDENTIALS.
// Decoded secrets are cached for the process lifetime.
type SecretsClient struct {
	api SecretValueAPI

	mu    sync.Mutex
	cache map[string]map[string]string
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return newSecretsClient(secretsmanager.NewFromConfig(cfg))
}

func newSecretsClient(api SecretValueAPI) *SecretsClient {
	return &SecretsClient{api: api, cache: make(map[string]map[string]string)}
}

// GetSecretMap fetches name and decodes it as a flat JSON object of strings.
func (s *SecretsClient) GetSecretMap(ctx context.Context, name string) (map[string]string, error) {
	s.mu.Lock()
	m, ok := s.cache[name]
	s.mu.Unlock()
	if ok {
		return m, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", name)
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &m); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object of strings: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = m
	s.mu.Unlock()
	return m, nil
}
