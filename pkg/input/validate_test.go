package input

import "testing"

func TestIsValidWallet(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"ethereum checksummed", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", true},
		{"ethereum lowercase", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", true},
		{"ethereum wrong length", "0x71C7656EC7ab88b098defB751B7401B5f6d89", false},
		{"ethereum bad hex", "0x71C7656EC7ab88b098defB751B7401B5f6d897ZZ", false},
		{"solana", "7EqQdEULxWcraVx3mXKFjc84LhCkMGZCkRuDpvcMwJeK", true},
		{"contains symbols", "wallet-with-dashes-is-not-an-address", false},
		{"bitcoin legacy", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"bitcoin segwit", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", true},
		{"generic alphanumeric", "abcdef1234567890abcdef1234567890", true},
		{"too short", "0x12345", false},
		{"empty", "", false},
		{"contains spaces", "0x71C7656EC7ab88b098 efB751B7401B5f6d8976F", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsValidWallet(test.address); got != test.valid {
				t.Errorf("IsValidWallet(%q) = %v, want %v", test.address, got, test.valid)
			}
		})
	}
}

func TestCheckEIP55(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		// Reference checksummed addresses
		{"valid checksum", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"valid checksum 2", "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", true},
		{"all lowercase passes", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"all uppercase passes", "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"broken checksum", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1Beaed", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := checkEIP55(test.address); got != test.valid {
				t.Errorf("checkEIP55(%q) = %v, want %v", test.address, got, test.valid)
			}
		})
	}
}
