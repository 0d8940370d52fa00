package logger

// LogLookup logs the outcome of a single wallet lookup
func LogLookup(wallet string, postExists bool, handle string, err error) {
	fields := map[string]interface{}{
		"wallet":      truncateWallet(wallet),
		"post_exists": postExists,
	}
	if handle != "" {
		fields["twitter_handle"] = handle
	}

	log := GetLogger().WithFields(fields)

	if err != nil {
		log.WithError(err).Warn("Lookup degraded")
	} else {
		log.Info("Lookup completed")
	}
}

// LogRateLimit logs rate limiting events
func LogRateLimit(endpoint string, retryAfterSeconds int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":    endpoint,
		"retry_after": retryAfterSeconds,
		"action":      "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogCheckpointSave logs a checkpoint persistence event
func LogCheckpointSave(fingerprint string, processed, total int) {
	GetLogger().WithFields(map[string]interface{}{
		"fingerprint": fingerprint,
		"processed":   processed,
		"total":       total,
	}).Debug("Checkpoint saved")
}

// LogBatchProgress logs run progress across the full input set
func LogBatchProgress(processed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(processed) / float64(total) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"processed":  processed,
		"total":      total,
		"percentage": percentage,
	}).Info("Batch progress")
}

// truncateWallet shortens an address for log output
func truncateWallet(wallet string) string {
	if len(wallet) <= 20 {
		return wallet
	}
	return wallet[:20] + "..."
}
