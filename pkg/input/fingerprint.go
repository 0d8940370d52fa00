package input

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint derives a short deterministic hash from an address list,
// used to validate checkpoint applicability across runs. The list is
// hashed in sorted order so the fingerprint identifies the input set:
// identical inputs always produce identical fingerprints and any
// membership change invalidates the stored checkpoint.
func Fingerprint(wallets []string) string {
	sorted := make([]string, len(wallets))
	copy(sorted, wallets)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])[:12]
}
