package auth

import (
	"errors"
	"testing"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	cred := &Credential{Provider: "xai", APIKey: "sk-test"}
	if err := manager.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if cred.LastModified.IsZero() {
		t.Error("Expected LastModified to be stamped on store")
	}

	retrieved, err := manager.Retrieve("xai")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if retrieved.APIKey != "sk-test" {
		t.Errorf("Expected sk-test, got %s", retrieved.APIKey)
	}
}

func TestManagerDefaultProvider(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	if err := manager.Store(&Credential{APIKey: "sk-test"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	retrieved, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve with empty provider failed: %v", err)
	}
	if retrieved.Provider != DefaultProvider {
		t.Errorf("Expected default provider, got %s", retrieved.Provider)
	}
}

func TestManagerRejectsInvalidCredential(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	if err := manager.Store(nil); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for nil, got %v", err)
	}
	if err := manager.Store(&Credential{Provider: "xai"}); err != ErrInvalidCredential {
		t.Errorf("Expected ErrInvalidCredential for empty key, got %v", err)
	}
}

func TestManagerFallbackOnStoreFailure(t *testing.T) {
	broken := NewMockStore()
	broken.SetStoreError(errors.New("keychain locked"))
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)

	if err := manager.Store(&Credential{Provider: "xai", APIKey: "sk-test"}); err != nil {
		t.Fatalf("Expected fallback store to succeed, got %v", err)
	}
	if !working.Exists("xai") {
		t.Error("Expected credential to land in the fallback store")
	}
}

func TestManagerRetrieveFallsThroughStores(t *testing.T) {
	empty := NewMockStore()
	holding := NewMockStore()
	holding.Store(&Credential{Provider: "xai", APIKey: "sk-deep"})

	manager := NewManagerWithStores(empty, holding)

	retrieved, err := manager.Retrieve("xai")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if retrieved.APIKey != "sk-deep" {
		t.Errorf("Expected credential from second store, got %s", retrieved.APIKey)
	}
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	if _, err := manager.Retrieve("xai"); err != ErrCredentialNotFound {
		t.Errorf("Expected ErrCredentialNotFound, got %v", err)
	}
}

func TestManagerDeleteAcrossStores(t *testing.T) {
	first := NewMockStore()
	second := NewMockStore()
	first.Store(&Credential{Provider: "xai", APIKey: "a"})
	second.Store(&Credential{Provider: "xai", APIKey: "b"})

	manager := NewManagerWithStores(first, second)

	if err := manager.Delete("xai"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if first.Exists("xai") || second.Exists("xai") {
		t.Error("Expected credential to be removed from every store")
	}

	if err := manager.Delete("xai"); err != ErrCredentialNotFound {
		t.Errorf("Expected ErrCredentialNotFound on second delete, got %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("XAI_API_KEY", "sk-from-env")

	store := NewEnvironmentStore()

	cred, err := store.Retrieve("xai")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if cred.APIKey != "sk-from-env" {
		t.Errorf("Expected env key, got %s", cred.APIKey)
	}
	if !store.Exists("xai") {
		t.Error("Expected Exists to report the env credential")
	}

	// Environment store is read-only
	if err := store.Store(&Credential{Provider: "xai", APIKey: "x"}); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable on store, got %v", err)
	}
	if err := store.Delete("xai"); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable on delete, got %v", err)
	}
}

func TestEnvironmentStoreFallbackVariable(t *testing.T) {
	t.Setenv("XAI_API_KEY", "")
	t.Setenv("GROK_API_KEY", "sk-alt")

	store := NewEnvironmentStore()
	cred, err := store.Retrieve("xai")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if cred.APIKey != "sk-alt" {
		t.Errorf("Expected fallback env variable, got %s", cred.APIKey)
	}
}

func TestEnvironmentStoreUnknownProvider(t *testing.T) {
	store := NewEnvironmentStore()
	if _, err := store.Retrieve("unknown"); err != ErrCredentialNotFound {
		t.Errorf("Expected ErrCredentialNotFound, got %v", err)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv("WALLETSCOUT_PASSPHRASE", "test-passphrase")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(dir + "/credentials.enc")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	cred := &Credential{Provider: "xai", APIKey: "sk-secret"}
	if err := store.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	retrieved, err := store.Retrieve("xai")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if retrieved.APIKey != "sk-secret" {
		t.Errorf("Expected sk-secret, got %s", retrieved.APIKey)
	}

	// A second store instance with the same passphrase can decrypt
	again, err := NewEncryptedFileStore(dir + "/credentials.enc")
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if !again.Exists("xai") {
		t.Error("Expected reopened store to find the credential")
	}

	if err := store.Delete("xai"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists("xai") {
		t.Error("Expected credential to be gone after delete")
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("WALLETSCOUT_PASSPHRASE", "correct")
	store, err := NewEncryptedFileStore(dir + "/credentials.enc")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Store(&Credential{Provider: "xai", APIKey: "sk"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	t.Setenv("WALLETSCOUT_PASSPHRASE", "wrong")
	other, err := NewEncryptedFileStore(dir + "/credentials.enc")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := other.Retrieve("xai"); err == nil {
		t.Error("Expected decryption to fail with the wrong passphrase")
	}
}
