package models

// Confidence is the ownership confidence level reported by the lookup
// service. The classification rubric lives entirely inside the external
// model; this package only carries the four values it may return.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
	ConfidenceNone   Confidence = "None"
)

// ParseConfidence normalizes a raw level string to one of the four known
// values, defaulting to None for anything unrecognized.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s)
	default:
		return ConfidenceNone
	}
}

// WalletRecord is the finalized outcome for a single wallet address.
// Records are immutable once emitted. Error carries the lookup failure
// diagnostic for degraded results and is empty for genuine lookups,
// so "searched, nothing found" and "lookup failed" stay distinguishable
// even though both surface postExists=false.
type WalletRecord struct {
	Wallet        string     `json:"wallet"`
	PostExists    bool       `json:"postExists"`
	TwitterHandle string     `json:"twitterHandle,omitempty"`
	Confidence    Confidence `json:"confidence"`
	RawResponse   string     `json:"rawResponse,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Degraded reports whether this record was emitted because lookups
// failed rather than because the search found nothing.
func (r WalletRecord) Degraded() bool {
	return r.Error != ""
}

// RunStats tracks aggregate progress across a run, persisted in the
// checkpoint so resumed runs keep accurate totals.
type RunStats struct {
	Total             int `json:"total"`
	Processed         int `json:"processed"`
	PostsFound        int `json:"posts_found"`
	HandlesIdentified int `json:"handles_identified"`
	Errors            int `json:"errors"`
	Skipped           int `json:"skipped"`
}

// Record folds a single result into the stats.
func (s *RunStats) Record(r WalletRecord) {
	s.Processed++
	if r.PostExists {
		s.PostsFound++
	}
	if r.TwitterHandle != "" {
		s.HandlesIdentified++
	}
	if r.Error != "" {
		s.Errors++
	}
}

// HitRate returns the percentage of processed wallets with a post found.
func (s *RunStats) HitRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.PostsFound) / float64(s.Processed) * 100
}
