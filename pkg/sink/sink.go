package sink

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"walletscout/pkg/logger"
	"walletscout/pkg/models"
)

// Sink appends finalized wallet records to a line-delimited JSON dataset.
// Records are written and flushed as they are produced, independent of
// checkpoint save timing, so partial results survive an interrupted run.
type Sink struct {
	path   string
	file   *os.File
	logger logger.Logger
}

// New opens (or creates) the dataset file under dir for appending.
func New(dir, filename string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	return &Sink{
		path:   path,
		file:   file,
		logger: logger.GetLogger(),
	}, nil
}

// Path returns the dataset file location.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record to the dataset and flushes it to disk.
func (s *Sink) Append(record models.WalletRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	data = append(data, '\n')

	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}

	return nil
}

// Close closes the underlying dataset file.
func (s *Sink) Close() error {
	return s.file.Close()
}

// ReadAll loads every record from a dataset file. Used by the export
// command and by resume inspection.
func ReadAll(path string) ([]models.WalletRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []models.WalletRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record models.WalletRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record on line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	return records, nil
}

// ExportCSV writes records as CSV with a fixed column layout.
func ExportCSV(w io.Writer, records []models.WalletRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"wallet", "post_exists", "twitter_handle", "confidence", "error"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Wallet,
			strconv.FormatBool(record.PostExists),
			record.TwitterHandle,
			string(record.Confidence),
			record.Error,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
