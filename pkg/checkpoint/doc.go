// Package checkpoint provides durable progress state for batch runs so
// interrupted jobs can resume without re-processing addresses.
//
// A checkpoint is validated against the current input's fingerprint
// before being resumed: a mismatch means the input set changed, the
// stored state is stale, and the run starts fresh. Saves are atomic
// (temp file + rename) so a crash mid-save never corrupts the previous
// valid checkpoint, and persistence failures degrade to in-memory-only
// operation with a surfaced warning instead of aborting the run.
//
// Checkpoints are stored in platform-specific data directories:
//   - Linux: ~/.local/share/walletscout/checkpoints/
//   - macOS: ~/Library/Application Support/walletscout/checkpoints/
//   - Windows: %APPDATA%/walletscout/checkpoints/
package checkpoint
