package input

import (
	"encoding/csv"
	"encoding/json"
	"strings"

	errs "walletscout/pkg/errors"
	"walletscout/pkg/logger"
)

// WalletColumn is the preferred CSV column holding addresses.
const WalletColumn = "wallet_address"

// walletKeys are the object keys probed when parsing JSON records.
var walletKeys = []string{"wallet", "wallet_address", "walletAddress", "address"}

// Sources describes the input shapes a run may combine. At least one must
// be non-empty.
type Sources struct {
	// Addresses is an explicit address list.
	Addresses []string
	// Text is free-form pasted content: one address per line, CSV, or JSON.
	Text string
	// FileURL points to a remotely hosted CSV/JSON/text file.
	FileURL string
}

// Loader parses wallet addresses from the configured sources.
type Loader struct {
	fetcher Fetcher
	logger  logger.Logger
}

// NewLoader creates an address loader. A nil fetcher falls back to the
// default HTTP fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(0)
	}
	return &Loader{
		fetcher: fetcher,
		logger:  logger.GetLogger(),
	}
}

// Load collects addresses from all supplied sources, dropping entries that
// match no known address shape, and deduplicates preserving first-seen
// order. It returns a ConfigurationError when no source is supplied and a
// FetchError when the remote file cannot be fetched or parsed.
func (l *Loader) Load(src Sources) ([]string, error) {
	if len(src.Addresses) == 0 && strings.TrimSpace(src.Text) == "" && src.FileURL == "" {
		return nil, errs.New(errs.ErrorTypeConfiguration,
			"no input source supplied: provide an address list, pasted text, or an input file URL")
	}

	var wallets []string

	for _, addr := range src.Addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if !IsValidWallet(addr) {
			l.logger.DebugWithFields("skipping address with unknown shape", map[string]interface{}{
				"address": addr,
			})
			continue
		}
		wallets = append(wallets, addr)
	}

	if text := strings.TrimSpace(src.Text); text != "" {
		wallets = append(wallets, l.parseContent(text)...)
	}

	if src.FileURL != "" {
		content, err := l.fetcher.Fetch(src.FileURL)
		if err != nil {
			return nil, errs.Newf(errs.ErrorTypeFetch, "failed to fetch input file: %v", err)
		}
		parsed := l.parseContent(content)
		if len(parsed) == 0 {
			return nil, errs.Newf(errs.ErrorTypeFetch,
				"input file %s contained no recognizable wallet addresses", src.FileURL)
		}
		wallets = append(wallets, parsed...)
	}

	return Dedupe(wallets), nil
}

// parseContent detects the content format and extracts addresses.
func (l *Loader) parseContent(content string) []string {
	switch DetectFormat(content) {
	case FormatJSON:
		return l.parseJSON(content)
	case FormatCSV:
		return l.parseCSV(content)
	default:
		return l.parseText(content)
	}
}

// Format identifies a detected input content format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// DetectFormat guesses the format of raw input content.
func DetectFormat(content string) Format {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "[") || strings.HasPrefix(content, "{") {
		if json.Valid([]byte(content)) {
			return FormatJSON
		}
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 1 {
		first := strings.ToLower(lines[0])
		if strings.Contains(first, ",") {
			for _, word := range []string{"wallet", "address", "id"} {
				if strings.Contains(first, word) {
					return FormatCSV
				}
			}
			if strings.Contains(lines[1], ",") {
				return FormatCSV
			}
		}
	}

	return FormatText
}

// parseCSV extracts addresses from CSV content. The wallet column is found
// case-insensitively, falling back to common variants and finally the
// first column.
func (l *Loader) parseCSV(content string) []string {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		l.logger.WithError(err).Debug("failed to parse CSV content")
		return nil
	}

	header := records[0]
	column := findWalletColumn(header)

	var wallets []string
	for _, row := range records[1:] {
		if column >= len(row) {
			continue
		}
		wallet := strings.TrimSpace(row[column])
		if wallet != "" && IsValidWallet(wallet) {
			wallets = append(wallets, wallet)
		}
	}
	return wallets
}

// findWalletColumn returns the index of the address column in a CSV header.
func findWalletColumn(header []string) int {
	for i, field := range header {
		if strings.EqualFold(strings.TrimSpace(field), WalletColumn) {
			return i
		}
	}
	for i, field := range header {
		lower := strings.ToLower(strings.TrimSpace(field))
		if strings.Contains(lower, "wallet") && strings.Contains(lower, "address") {
			return i
		}
		switch lower {
		case "wallet", "address", "walletaddress":
			return i
		}
	}
	return 0
}

// parseJSON extracts addresses from JSON content. Supported shapes: array
// of strings, array of objects with a wallet field, or a wrapper object
// holding one of those arrays.
func (l *Loader) parseJSON(content string) []string {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		l.logger.WithError(err).Debug("failed to parse JSON content")
		return nil
	}
	return extractFromJSON(raw)
}

func extractFromJSON(raw interface{}) []string {
	var wallets []string

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				wallet := strings.TrimSpace(entry)
				if IsValidWallet(wallet) {
					wallets = append(wallets, wallet)
				}
			case map[string]interface{}:
				for _, key := range walletKeys {
					if val, ok := entry[key]; ok {
						wallet := strings.TrimSpace(toString(val))
						if IsValidWallet(wallet) {
							wallets = append(wallets, wallet)
						}
						break
					}
				}
			}
		}
	case map[string]interface{}:
		for _, key := range []string{"wallets", "wallet_addresses", "walletAddresses", "addresses", "data"} {
			if arr, ok := v[key].([]interface{}); ok {
				return extractFromJSON(arr)
			}
		}
	}

	return wallets
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// parseText extracts addresses from plain text separated by newlines,
// commas, or semicolons.
func (l *Loader) parseText(content string) []string {
	fields := strings.FieldsFunc(strings.TrimSpace(content), func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})

	var wallets []string
	for _, field := range fields {
		wallet := strings.TrimSpace(field)
		if wallet != "" && IsValidWallet(wallet) {
			wallets = append(wallets, wallet)
		}
	}
	return wallets
}

// Dedupe removes duplicates while preserving first-seen order.
func Dedupe(wallets []string) []string {
	seen := make(map[string]struct{}, len(wallets))
	unique := make([]string, 0, len(wallets))
	for _, wallet := range wallets {
		if _, ok := seen[wallet]; ok {
			continue
		}
		seen[wallet] = struct{}{}
		unique = append(unique, wallet)
	}
	return unique
}
