package auth

import (
	"os"
)

// environmentKeys maps provider names to the environment variables
// consulted for their API keys, in priority order.
var environmentKeys = map[string][]string{
	"xai": {"XAI_API_KEY", "GROK_API_KEY"},
}

// EnvironmentStore implements KeyStore by reading environment variables.
// It is a read-only fallback: Store and Delete always fail.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment variable-based store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets a credential from environment variables
func (e *EnvironmentStore) Retrieve(provider string) (*Credential, error) {
	if provider == "" {
		return nil, ErrInvalidCredential
	}

	keys, ok := environmentKeys[provider]
	if !ok {
		return nil, ErrCredentialNotFound
	}

	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return &Credential{
				Provider: provider,
				APIKey:   value,
			}, nil
		}
	}

	return nil, ErrCredentialNotFound
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(provider string) error {
	return ErrStoreUnavailable
}

// Exists checks if any mapped environment variable is set
func (e *EnvironmentStore) Exists(provider string) bool {
	cred, err := e.Retrieve(provider)
	return err == nil && cred != nil
}
