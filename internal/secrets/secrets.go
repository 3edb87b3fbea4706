package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
)

// SecretGetter reads secret strings by name.
type SecretGetter interface {
	GetSecretString(secretName string) (string, error)
}

// Manager wraps the Secrets Manager cache client.
type Manager struct {
	cache *secretcache.Cache
}

// NewManager creates a new Secrets Manager cache.
func NewManager() (*Manager, error) {
	cache, err := secretcache.New()
	if err != nil {
		return nil, err
	}
	return &Manager{cache: cache}, nil
}

// GetSecretString retrieves a secret value from Secrets Manager.
func (m *Manager) GetSecretString(secretName string) (string, error) {
	if secretName == "" {
		return "", fmt.Errorf("secret name is required")
	}
	return m.cache.GetSecretString(secretName)
}

// Resolver loads credentials from Secrets Manager when a secret name is
// configured and from a local file otherwise. The Secrets Manager client is
// created on first use so file-only setups never need AWS credentials.
type Resolver struct {
	getter SecretGetter
	newGet func() (SecretGetter, error)
}

// NewResolver creates a resolver backed by the Secrets Manager cache.
func NewResolver() *Resolver {
	return &Resolver{newGet: func() (SecretGetter, error) { return NewManager() }}
}

// Resolve returns the secret value for name, falling back to path.
func (r *Resolver) Resolve(secretName string, filePath string) ([]byte, error) {
	if secretName == "" {
		value, err := LoadSecretFromFile(filePath)
		if err != nil {
			return nil, err
		}
		return []byte(value), nil
	}
	if r.getter == nil {
		getter, err := r.newGet()
		if err != nil {
			return nil, fmt.Errorf("creating secrets client: %w", err)
		}
		r.getter = getter
	}
	value, err := r.getter.GetSecretString(secretName)
	if err != nil {
		return nil, fmt.Errorf("reading secret %s: %w", secretName, err)
	}
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("secret %s is empty", secretName)
	}
	return []byte(value), nil
}

// LoadSecretFromFile reads a secret value from a local file.
func LoadSecretFromFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
