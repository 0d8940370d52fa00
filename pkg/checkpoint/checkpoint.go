package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"walletscout/pkg/logger"
	"walletscout/pkg/models"
)

// checkpointVersion is bumped when the on-disk layout changes.
const checkpointVersion = 1

// Checkpoint is the durable progress state of a batch run. It is owned
// by the Manager and mutated only through AppendResult between saves.
type Checkpoint struct {
	Fingerprint    string                `json:"fingerprint"`
	RunID          string                `json:"run_id"`
	TotalAddresses int                   `json:"total_addresses"`
	ProcessedCount int                   `json:"processed_count"`
	Results        []models.WalletRecord `json:"results"`
	Stats          models.RunStats       `json:"stats"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`

	processed map[string]struct{}
}

// IsProcessed reports whether an address already has a result in this
// checkpoint.
func (cp *Checkpoint) IsProcessed(wallet string) bool {
	_, ok := cp.processed[wallet]
	return ok
}

// AppendResult records a finalized result. Records are append-only; a
// wallet already present is ignored so an address is never counted twice.
func (cp *Checkpoint) AppendResult(record models.WalletRecord) {
	if cp.IsProcessed(record.Wallet) {
		return
	}
	cp.Results = append(cp.Results, record)
	cp.processed[record.Wallet] = struct{}{}
	cp.ProcessedCount = len(cp.Results)
	cp.Stats.Record(record)
}

// Complete reports whether every input address has been processed.
func (cp *Checkpoint) Complete() bool {
	return cp.ProcessedCount >= cp.TotalAddresses
}

// rebuildIndex restores the processed set after loading from disk.
func (cp *Checkpoint) rebuildIndex() {
	cp.processed = make(map[string]struct{}, len(cp.Results))
	for _, r := range cp.Results {
		cp.processed[r.Wallet] = struct{}{}
	}
	cp.ProcessedCount = len(cp.Results)
}

// Manager handles checkpoint persistence. Save failures are retried a
// bounded number of times and then the manager degrades to
// in-memory-only operation for the rest of the run instead of aborting.
type Manager struct {
	checkpointPath string
	saveRetries    int
	memoryOnly     bool
	logger         logger.Logger
}

// NewManager creates a checkpoint manager. An empty dir uses the
// platform data directory.
func NewManager(dir string, saveRetries int) (*Manager, error) {
	if dir == "" {
		dataDir, err := getDataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		dir = filepath.Join(dataDir, "checkpoints")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	if saveRetries < 0 {
		saveRetries = 0
	}

	return &Manager{
		checkpointPath: filepath.Join(dir, "wallet.checkpoint.json"),
		saveRetries:    saveRetries,
		logger:         logger.GetLogger(),
	}, nil
}

// Create starts a fresh checkpoint for the given input.
func (m *Manager) Create(fingerprint string, totalAddresses int) *Checkpoint {
	cp := &Checkpoint{
		Fingerprint:    fingerprint,
		RunID:          uuid.NewString(),
		TotalAddresses: totalAddresses,
		Results:        []models.WalletRecord{},
		Stats:          models.RunStats{Total: totalAddresses},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Version:        checkpointVersion,
	}
	cp.rebuildIndex()
	return cp
}

// Load reads the persisted checkpoint and validates it against the
// current input fingerprint. A missing checkpoint returns nil. A stored
// checkpoint whose fingerprint differs, or whose file cannot be decoded,
// is discarded with a logged reason so the run starts fresh instead of
// aborting or mixing in results from a different input set.
func (m *Manager) Load(fingerprint string) (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var cp Checkpoint
	if err := json.NewDecoder(file).Decode(&cp); err != nil {
		m.logger.WarnWithFields("checkpoint file unreadable, discarding stored state", map[string]interface{}{
			"path":  m.checkpointPath,
			"error": err.Error(),
		})
		if err := m.Delete(); err != nil {
			m.logger.WithError(err).Warn("failed to remove corrupt checkpoint")
		}
		return nil, nil
	}

	if cp.Fingerprint != fingerprint {
		m.logger.WarnWithFields("checkpoint fingerprint mismatch, discarding stored state", map[string]interface{}{
			"stored_fingerprint":  cp.Fingerprint,
			"current_fingerprint": fingerprint,
			"stored_processed":    cp.ProcessedCount,
		})
		if err := m.Delete(); err != nil {
			m.logger.WithError(err).Warn("failed to remove stale checkpoint")
		}
		return nil, nil
	}

	cp.rebuildIndex()

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"fingerprint": cp.Fingerprint,
		"run_id":      cp.RunID,
		"processed":   cp.ProcessedCount,
		"total":       cp.TotalAddresses,
		"updated_at":  cp.UpdatedAt,
	})

	return &cp, nil
}

// Save persists the checkpoint atomically: data is written to a
// temporary file, synced, and renamed over the previous checkpoint so a
// crash mid-save never corrupts the last valid state.
func (m *Manager) Save(cp *Checkpoint) error {
	if m.memoryOnly {
		return nil
	}

	cp.UpdatedAt = time.Now()

	var lastErr error
	for attempt := 0; attempt <= m.saveRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		if lastErr = m.writeAtomic(cp); lastErr == nil {
			logger.LogCheckpointSave(cp.Fingerprint, cp.ProcessedCount, cp.TotalAddresses)
			return nil
		}
	}

	// Degrade rather than abort: the run keeps going with in-memory
	// progress only, and loses resume capability on crash.
	m.memoryOnly = true
	m.logger.WarnWithFields("checkpoint persistence failed, continuing in memory only (progress will be lost on crash)", map[string]interface{}{
		"path":     m.checkpointPath,
		"attempts": m.saveRetries + 1,
		"error":    lastErr.Error(),
	})
	return nil
}

// writeAtomic performs one atomic write of the checkpoint file.
func (m *Manager) writeAtomic(cp *Checkpoint) error {
	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}

// Delete removes the checkpoint file.
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Exists checks if a checkpoint file exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// MemoryOnly reports whether persistence has been degraded for this run.
func (m *Manager) MemoryOnly() bool {
	return m.memoryOnly
}

// Info returns a summary of the stored checkpoint without fingerprint
// validation, for the checkpoint inspection command.
func (m *Manager) Info() (map[string]interface{}, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var cp Checkpoint
	if err := json.NewDecoder(file).Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	return map[string]interface{}{
		"fingerprint": cp.Fingerprint,
		"run_id":      cp.RunID,
		"processed":   len(cp.Results),
		"total":       cp.TotalAddresses,
		"created_at":  cp.CreatedAt,
		"updated_at":  cp.UpdatedAt,
		"age":         time.Since(cp.UpdatedAt),
	}, nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "walletscout")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "walletscout")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "walletscout")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "walletscout")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
