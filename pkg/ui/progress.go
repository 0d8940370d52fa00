package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of batch lookup progress
type StatusTracker struct {
	mu           sync.Mutex
	total        int
	processed    int
	postsFound   int
	handlesFound int
	errors       int
	startTime    time.Time
}

// NewStatusTracker creates a tracker for a batch of the given size
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// RecordResult folds one lookup outcome into the tracker
func (st *StatusTracker) RecordResult(postExists bool, handleFound bool, failed bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.processed++
	if postExists {
		st.postsFound++
	}
	if handleFound {
		st.handlesFound++
	}
	if failed {
		st.errors++
	}
}

// GetProgress returns a formatted progress bar for the batch
func (st *StatusTracker) GetProgress() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.progressLocked()
}

func (st *StatusTracker) progressLocked() string {
	const width = 20
	var progress float64
	if st.total > 0 {
		progress = float64(st.processed) / float64(st.total)
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.processed, st.total)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.startTime)
}

// GetLookupRate returns the average lookup rate (wallets per minute)
func (st *StatusTracker) GetLookupRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := time.Since(st.startTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.processed) / elapsed
}

// PrintProgress prints the current progress status on one line
func (st *StatusTracker) PrintProgress() {
	if quietMode.Load() {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	fmt.Printf("\r%s %s | Posts: %d | Handles: %d | Errors: %d",
		Green("[LOOKUP]"),
		st.progressLocked(),
		st.postsFound,
		st.handlesFound,
		st.errors)
}

// PrintSummary prints the final batch summary
func (st *StatusTracker) PrintSummary() {
	if quietMode.Load() {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	rate := 0.0
	if elapsed := time.Since(st.startTime).Minutes(); elapsed > 0 {
		rate = float64(st.processed) / elapsed
	}

	fmt.Printf("\n%s %d wallets in %s (%.1f/min)\n",
		Magenta("[DONE]"),
		st.processed,
		time.Since(st.startTime).Round(time.Second),
		rate)
}
