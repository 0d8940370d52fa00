package grok

import (
	"regexp"
	"strings"

	"walletscout/pkg/models"
)

// Patterns for pulling a handle out of the model's free-text answer. The
// model is asked for "Username: @handle" but does not always comply.
var usernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)username[:\s]+@?([A-Za-z0-9_]{1,15})`),
	regexp.MustCompile(`@([A-Za-z0-9_]{1,15})`),
	regexp.MustCompile(`(?i)handle[:\s]+@?([A-Za-z0-9_]{1,15})`),
	regexp.MustCompile(`(?i)twitter[:\s]+@?([A-Za-z0-9_]{1,15})`),
}

var confidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)confidence[:\s]+(high|medium|low|none|strong|moderate|weak)`),
	regexp.MustCompile(`(?i)level[:\s]+(high|medium|low|none)`),
}

var (
	highWords   = regexp.MustCompile(`(?i)\b(high|strong|clear|definite|certain)\b`)
	mediumWords = regexp.MustCompile(`(?i)\b(medium|moderate|somewhat|partial)\b`)
	lowWords    = regexp.MustCompile(`(?i)\b(low|weak|minimal|uncertain)\b`)
	noneWords   = regexp.MustCompile(`(?i)\b(none|no|false|not found)\b`)
)

// extractUsername pulls an X handle from the response content.
func extractUsername(content string) string {
	for _, pattern := range usernamePatterns {
		match := pattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		username := match[1]
		if len(username) >= 1 && len(username) <= 15 {
			return username
		}
	}
	return ""
}

// extractConfidence pulls a confidence level from the response content.
// Returns empty when no level is stated.
func extractConfidence(content string) models.Confidence {
	// Explicit "Confidence: X" format wins
	for _, pattern := range confidencePatterns {
		match := pattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		switch strings.ToLower(match[1]) {
		case "high", "strong":
			return models.ConfidenceHigh
		case "medium", "moderate":
			return models.ConfidenceMedium
		case "low", "weak":
			return models.ConfidenceLow
		case "none":
			return models.ConfidenceNone
		}
	}

	// Keyword scan fallback
	switch {
	case highWords.MatchString(content):
		return models.ConfidenceHigh
	case mediumWords.MatchString(content):
		return models.ConfidenceMedium
	case lowWords.MatchString(content):
		return models.ConfidenceLow
	case noneWords.MatchString(content):
		return models.ConfidenceNone
	}

	return ""
}
