package grok

import (
	"testing"

	"walletscout/pkg/models"
)

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			"requested format",
			"Username: @cryptotrader\nConfidence: High",
			"cryptotrader",
		},
		{
			"format without at sign",
			"Username: whale_watcher",
			"whale_watcher",
		},
		{
			"bare mention",
			"The wallet appears in posts by @satoshi_fan99 discussing airdrops.",
			"satoshi_fan99",
		},
		{
			"handle label",
			"handle: @degen_hunter",
			"degen_hunter",
		},
		{
			"twitter label",
			"Twitter: someuser",
			"someuser",
		},
		{
			"no username present",
			"No posts containing this address could be attributed to anyone.",
			"",
		},
		{
			"empty content",
			"",
			"",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := extractUsername(test.content); got != test.expected {
				t.Errorf("extractUsername() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected models.Confidence
	}{
		{"explicit high", "Username: @a\nConfidence: High", models.ConfidenceHigh},
		{"explicit medium", "Confidence: medium", models.ConfidenceMedium},
		{"explicit low", "confidence: LOW", models.ConfidenceLow},
		{"explicit none", "Confidence: None", models.ConfidenceNone},
		{"strong maps to high", "Confidence: strong", models.ConfidenceHigh},
		{"moderate maps to medium", "Confidence: moderate", models.ConfidenceMedium},
		{"weak maps to low", "Confidence: weak", models.ConfidenceLow},
		{"level label", "Level: high", models.ConfidenceHigh},
		{"keyword fallback high", "This is a clear ownership signal.", models.ConfidenceHigh},
		{"keyword fallback low", "Only a weak connection to the account.", models.ConfidenceLow},
		{"nothing stated", "The user posted about this yesterday.", ""},
		{"empty content", "", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := extractConfidence(test.content); got != test.expected {
				t.Errorf("extractConfidence() = %q, want %q", got, test.expected)
			}
		})
	}
}
