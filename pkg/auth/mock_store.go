package auth

import "sync"

// MockStore is an in-memory KeyStore used in tests.
type MockStore struct {
	mu          sync.RWMutex
	credentials map[string]*Credential
	storeErr    error
	retrieveErr error
}

// NewMockStore creates a new in-memory store
func NewMockStore() *MockStore {
	return &MockStore{credentials: make(map[string]*Credential)}
}

// SetStoreError makes subsequent Store calls fail with err
func (m *MockStore) SetStoreError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErr = err
}

// SetRetrieveError makes subsequent Retrieve calls fail with err
func (m *MockStore) SetRetrieveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrieveErr = err
}

// Store saves a credential in memory
func (m *MockStore) Store(cred *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.storeErr != nil {
		return m.storeErr
	}
	if cred == nil || cred.Provider == "" {
		return ErrInvalidCredential
	}

	copied := *cred
	m.credentials[cred.Provider] = &copied
	return nil
}

// Retrieve gets a credential from memory
func (m *MockStore) Retrieve(provider string) (*Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if provider == "" {
		return nil, ErrInvalidCredential
	}

	cred, exists := m.credentials[provider]
	if !exists {
		return nil, ErrCredentialNotFound
	}

	copied := *cred
	return &copied, nil
}

// Delete removes a credential from memory
func (m *MockStore) Delete(provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if provider == "" {
		return ErrInvalidCredential
	}
	if _, exists := m.credentials[provider]; !exists {
		return ErrCredentialNotFound
	}

	delete(m.credentials, provider)
	return nil
}

// Exists checks if a credential exists in memory
func (m *MockStore) Exists(provider string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.credentials[provider]
	return exists
}
