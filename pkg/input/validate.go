package input

import (
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"walletscout/pkg/logger"
)

// Address shape patterns. These are advisory format checks only; the
// lookup treats whatever passes as an opaque search phrase.
var (
	ethPattern     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	solanaPattern  = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	bitcoinPattern = regexp.MustCompile(`^(1|3|bc1)[a-zA-HJ-NP-Z0-9]{25,62}$`)
	genericPattern = regexp.MustCompile(`^[a-zA-Z0-9]{20,100}$`)
)

// IsValidWallet reports whether an address matches any known wallet shape.
func IsValidWallet(address string) bool {
	if len(address) < 10 {
		return false
	}

	// 0x-prefixed strings are held to the Ethereum shape rather than the
	// generic fallback, so truncated or malformed hex is rejected
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		if !ethPattern.MatchString(address) {
			return false
		}
		if !checkEIP55(address) {
			logger.GetLogger().DebugWithFields("address fails EIP-55 checksum", map[string]interface{}{
				"address": address,
			})
		}
		return true
	}

	// Solana addresses must actually decode as base58, not just match
	// the alphabet
	if solanaPattern.MatchString(address) {
		if raw, err := base58.Decode(address); err == nil && len(raw) == 32 {
			return true
		}
	}

	if bitcoinPattern.MatchString(address) {
		return true
	}

	// Generic alphanumeric fallback for other chains
	return genericPattern.MatchString(address)
}

// checkEIP55 validates the mixed-case checksum of a 0x address. Addresses
// written in a single case carry no checksum and always pass.
func checkEIP55(address string) bool {
	body := address[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(strings.ToLower(body)))
	digest := hex.EncodeToString(hasher.Sum(nil))

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= '0' && c <= '9' {
			continue
		}
		upper := digest[i] >= '8'
		if upper != (c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
