package grok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"walletscout/pkg/logger"
	"walletscout/pkg/models"
	"walletscout/pkg/ratelimit"
)

// Completer is the API surface the searcher needs from the client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Searcher runs the two-agent ownership lookup workflow for wallet
// addresses. A sliding window in front of the client keeps the request
// rate inside the per-minute API budget; retries on failure are the
// batch runner's responsibility.
type Searcher struct {
	client  Completer
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewSearcher creates a wallet searcher. requestsPerMinute bounds the
// request rate against the API.
func NewSearcher(client Completer, requestsPerMinute int, log logger.Logger) *Searcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 50
	}
	return &Searcher{
		client:  client,
		limiter: ratelimit.NewSlidingWindow(requestsPerMinute, time.Minute),
		logger:  log,
	}
}

// SearchWallet looks up a single wallet address. It returns an error for
// transport/rate-limit failures (so the caller can retry); a nil error
// always carries a finalized record, including the "searched, nothing
// found" case.
func (s *Searcher) SearchWallet(ctx context.Context, wallet string) (models.WalletRecord, error) {
	s.logger.DebugWithFields("searching wallet", map[string]interface{}{
		"wallet": wallet,
	})

	exists, probeResponse, err := s.checkPostExists(ctx, wallet)
	if err != nil {
		return models.WalletRecord{}, err
	}

	if !exists {
		return models.WalletRecord{
			Wallet:      wallet,
			PostExists:  false,
			Confidence:  models.ConfidenceNone,
			RawResponse: probeResponse,
		}, nil
	}

	s.logger.DebugWithFields("post found, analyzing ownership", map[string]interface{}{
		"wallet": wallet,
	})

	return s.analyzeOwnership(ctx, wallet)
}

// checkPostExists is the first agent: a cheap probe asking whether any
// post mentions the address at all.
func (s *Searcher) checkPostExists(ctx context.Context, wallet string) (bool, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, "", err
	}

	prompt := fmt.Sprintf(
		`Search X for any posts containing the exact phrase "%s". `+
			`Respond with only "true" if any post exists, or "false" if no posts are found. `+
			`Do not provide any other information.`, wallet)

	content, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return false, "", err
	}

	answer := strings.ToLower(strings.TrimSpace(content))
	switch {
	case strings.Contains(answer, "true") && !strings.Contains(answer, "false"):
		return true, content, nil
	case strings.Contains(answer, "false"):
		return false, content, nil
	default:
		s.logger.WarnWithFields("ambiguous existence probe response, assuming no posts", map[string]interface{}{
			"wallet": wallet,
		})
		return false, content, nil
	}
}

// analyzeOwnership is the second agent: it asks the model to attribute
// the posts to a handle with a confidence level.
func (s *Searcher) analyzeOwnership(ctx context.Context, wallet string) (models.WalletRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.WalletRecord{}, err
	}

	prompt := fmt.Sprintf(`Search X for all posts containing the exact phrase "%s".

Analyze the context of each post to determine:
1. Who posted it (username/handle)
2. Whether this wallet address belongs to that user (confidence level: high, medium, low, or none)

Confidence level guidelines:
- "High": Clear ownership (user's own post in airdrop thread, wallet sharing, profile bio, explicit ownership statements)
- "Medium": Strong indication (user sharing their wallet for donations, trading, or in context of their activity)
- "Low": Weak indication (user just mentioned or quoted it, minimal context)
- "None": Very weak or no indication of ownership

Return the username and confidence level in this format:
Username: @handle
Confidence: [High|Medium|Low|None]

If multiple posts exist, analyze all of them and provide the highest confidence level with the associated username.`, wallet)

	content, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return models.WalletRecord{}, err
	}

	record := models.WalletRecord{
		Wallet:      wallet,
		PostExists:  true,
		RawResponse: content,
	}

	username := extractUsername(content)
	confidence := extractConfidence(content)

	if username != "" {
		record.TwitterHandle = "@" + username
		if confidence == "" {
			// A named handle without a stated level reads as a
			// middle-of-the-road attribution, matching the service's
			// own convention.
			confidence = models.ConfidenceMedium
		}
		record.Confidence = confidence
		return record, nil
	}

	s.logger.WarnWithFields("post exists but no handle could be parsed", map[string]interface{}{
		"wallet": wallet,
	})
	if confidence == "" {
		confidence = models.ConfidenceMedium
	}
	record.Confidence = confidence
	record.Error = "could not parse username from response"
	return record, nil
}
