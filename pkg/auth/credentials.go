package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultProvider is the provider name used when none is given.
const DefaultProvider = "xai"

var (
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
)

// Credential is a stored API key for a search provider.
type Credential struct {
	Provider     string    `json:"provider"`
	APIKey       string    `json:"api_key"`
	LastModified time.Time `json:"last_modified"`
}

// KeyStore is the interface for storing and retrieving API keys.
type KeyStore interface {
	// Store saves a credential
	Store(cred *Credential) error

	// Retrieve gets the credential for a provider
	Retrieve(provider string) (*Credential, error)

	// Delete removes the credential for a provider
	Delete(provider string) error

	// Exists checks if a credential exists for a provider
	Exists(provider string) bool
}

// Manager handles API key storage with fallback mechanisms: system
// keyring first, then an encrypted file, then environment variables.
type Manager struct {
	stores []KeyStore
}

// NewManager creates a credential manager with the available backends.
func NewManager() (*Manager, error) {
	var stores []KeyStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores, used in
// tests.
func NewManagerWithStores(stores ...KeyStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the credential using the first store that accepts it.
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || cred.APIKey == "" {
		return ErrInvalidCredential
	}
	if cred.Provider == "" {
		cred.Provider = DefaultProvider
	}
	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(cred); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credential: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the credential from the first store that has it.
func (m *Manager) Retrieve(provider string) (*Credential, error) {
	if provider == "" {
		provider = DefaultProvider
	}
	for _, store := range m.stores {
		if cred, err := store.Retrieve(provider); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, ErrCredentialNotFound
}

// Delete removes the credential from every store that has it.
func (m *Manager) Delete(provider string) error {
	if provider == "" {
		provider = DefaultProvider
	}

	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(provider); err == nil {
			deleted = true
		}
	}

	if !deleted {
		return ErrCredentialNotFound
	}
	return nil
}

// Exists checks if any store holds a credential for the provider.
func (m *Manager) Exists(provider string) bool {
	if provider == "" {
		provider = DefaultProvider
	}
	for _, store := range m.stores {
		if store.Exists(provider) {
			return true
		}
	}
	return false
}

// getConfigDir returns the configuration directory for the current OS
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "linux":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "walletscout")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "walletscout")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "walletscout")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "walletscout")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}
