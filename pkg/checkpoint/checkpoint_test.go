package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"walletscout/pkg/models"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	manager, err := NewManager(dir, 1)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return manager, dir
}

func record(wallet string) models.WalletRecord {
	return models.WalletRecord{
		Wallet:        wallet,
		PostExists:    true,
		TwitterHandle: "@someone",
		Confidence:    models.ConfidenceHigh,
	}
}

func TestCreate(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 10)

	if cp.Fingerprint != "abc123def456" {
		t.Errorf("Expected fingerprint abc123def456, got %s", cp.Fingerprint)
	}
	if cp.TotalAddresses != 10 {
		t.Errorf("Expected 10 total addresses, got %d", cp.TotalAddresses)
	}
	if cp.RunID == "" {
		t.Error("Expected a run ID to be assigned")
	}
	if cp.ProcessedCount != 0 {
		t.Errorf("Expected no processed addresses, got %d", cp.ProcessedCount)
	}
	if cp.Stats.Total != 10 {
		t.Errorf("Expected stats total 10, got %d", cp.Stats.Total)
	}
}

func TestSaveAndLoad(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 3)
	cp.AppendResult(record("0xAAA"))
	cp.AppendResult(record("0xBBB"))

	if err := manager.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !manager.Exists() {
		t.Fatal("Expected checkpoint file to exist after save")
	}

	loaded, err := manager.Load("abc123def456")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected checkpoint to load")
	}

	if loaded.ProcessedCount != 2 {
		t.Errorf("Expected 2 processed, got %d", loaded.ProcessedCount)
	}
	if loaded.RunID != cp.RunID {
		t.Errorf("Expected run ID %s, got %s", cp.RunID, loaded.RunID)
	}
	if !loaded.IsProcessed("0xAAA") || !loaded.IsProcessed("0xBBB") {
		t.Error("Expected processed index to be rebuilt after load")
	}
	if loaded.IsProcessed("0xCCC") {
		t.Error("Expected unprocessed address to be reported as pending")
	}
}

func TestLoadMissing(t *testing.T) {
	manager, _ := newTestManager(t)

	loaded, err := manager.Load("abc123def456")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil checkpoint when none exists")
	}
}

func TestLoadFingerprintMismatchDiscards(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("oldfingerpr1", 2)
	cp.AppendResult(record("0xAAA"))
	if err := manager.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := manager.Load("newfingerpr2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("Expected stale checkpoint to be discarded")
	}
	if manager.Exists() {
		t.Error("Expected stale checkpoint file to be deleted")
	}
}

func TestLoadCorruptFileDiscards(t *testing.T) {
	manager, dir := newTestManager(t)

	path := filepath.Join(dir, "wallet.checkpoint.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt checkpoint: %v", err)
	}

	loaded, err := manager.Load("abc123def456")
	if err != nil {
		t.Fatalf("Expected corrupt checkpoint to be discarded, got %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil checkpoint for an unreadable file")
	}
	if manager.Exists() {
		t.Error("Expected corrupt checkpoint file to be deleted")
	}
}

func TestAppendResultIgnoresDuplicates(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 2)
	cp.AppendResult(record("0xAAA"))
	cp.AppendResult(record("0xAAA"))

	if cp.ProcessedCount != 1 {
		t.Errorf("Expected duplicate append to be ignored, processed=%d", cp.ProcessedCount)
	}
	if cp.Stats.Processed != 1 {
		t.Errorf("Expected stats to count the address once, got %d", cp.Stats.Processed)
	}
}

func TestComplete(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 2)
	if cp.Complete() {
		t.Error("Expected fresh checkpoint to be incomplete")
	}

	cp.AppendResult(record("0xAAA"))
	cp.AppendResult(record("0xBBB"))
	if !cp.Complete() {
		t.Error("Expected checkpoint to be complete after all addresses")
	}
}

func TestSaveAtomicLeavesNoTempFile(t *testing.T) {
	manager, dir := newTestManager(t)

	cp := manager.Create("abc123def456", 1)
	cp.AppendResult(record("0xAAA"))
	if err := manager.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "wallet.checkpoint.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be renamed away")
	}
}

func TestSaveDegradesToMemoryOnly(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir, 1)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Make the checkpoint directory unwritable by removing it
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("Failed to remove directory: %v", err)
	}

	cp := manager.Create("abc123def456", 1)
	cp.AppendResult(record("0xAAA"))

	// Save must not return an error; it degrades instead
	if err := manager.Save(cp); err != nil {
		t.Fatalf("Expected degraded save to succeed, got %v", err)
	}
	if !manager.MemoryOnly() {
		t.Error("Expected manager to degrade to memory-only after save failures")
	}

	// Subsequent saves are no-ops
	if err := manager.Save(cp); err != nil {
		t.Errorf("Expected memory-only save to succeed, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 1)
	if err := manager.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := manager.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if manager.Exists() {
		t.Error("Expected checkpoint to be gone after delete")
	}

	// Deleting a missing checkpoint is not an error
	if err := manager.Delete(); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	manager, _ := newTestManager(t)

	cp := manager.Create("abc123def456", 5)
	cp.AppendResult(record("0xAAA"))
	if err := manager.Save(cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := manager.Info()
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info["fingerprint"] != "abc123def456" {
		t.Errorf("Expected fingerprint in info, got %v", info["fingerprint"])
	}
	if info["processed"] != 1 {
		t.Errorf("Expected 1 processed in info, got %v", info["processed"])
	}
	if info["total"] != 5 {
		t.Errorf("Expected total 5 in info, got %v", info["total"])
	}
}
