package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "walletscout/pkg/errors"
	"walletscout/pkg/logger"
)

// Client is a minimal xAI chat completions client with Live Search.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	model      string
	logger     logger.Logger
}

// NewClient creates a new xAI API client.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Complete sends a single-turn prompt with X search enabled and returns
// the model's text response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		SearchParameters: &searchParameters{
			Mode:    "on",
			Sources: []searchSource{{Type: "x"}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending completion request", map[string]interface{}{
		"model": c.model,
		"url":   req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.ErrorWithFields("completion request failed", map[string]interface{}{
			"error":    err.Error(),
			"duration": duration,
		})
		return "", &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("completion request completed", map[string]interface{}{
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp.StatusCode, raw); err != nil {
		return "", err
	}

	var decoded completionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		preview := string(raw)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse completion response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return "", &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if len(decoded.Choices) == 0 {
		return "", &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "response contained no choices",
			Code:    resp.StatusCode,
		}
	}

	return decoded.Choices[0].Message.Content, nil
}

// checkResponseStatus maps HTTP status codes to typed errors. Rate-limit
// responses must stay distinguishable from lookup failures so the runner
// can apply the longer backoff curve.
func (c *Client) checkResponseStatus(statusCode int, body []byte) error {
	if statusCode == http.StatusOK {
		return nil
	}

	msg := apiErrorMessage(body)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: msg,
			Code:    statusCode,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: msg,
			Code:    statusCode,
		}
	case statusCode >= 500:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: msg,
			Code:    statusCode,
		}
	default:
		// The API reports quota exhaustion with a 403-adjacent code in
		// some deployments; fall back to string detection.
		if isRateLimitMessage(msg) {
			return &errs.Error{
				Type:    errs.ErrorTypeRateLimit,
				Message: msg,
				Code:    statusCode,
			}
		}
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: msg,
			Code:    statusCode,
		}
	}
}

// apiErrorMessage extracts the error message from an error response body.
func apiErrorMessage(body []byte) string {
	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = "request failed"
	}
	return msg
}

// isRateLimitMessage detects rate-limit signals by message content.
func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, indicator := range []string{"rate limit", "too many requests", "resource_exhausted"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
