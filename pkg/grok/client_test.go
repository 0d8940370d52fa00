package grok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "walletscout/pkg/errors"
)

func completionBody(content string) string {
	body, _ := json.Marshal(completionResponse{
		Choices: []choice{
			{Message: message{Role: "assistant", Content: content}},
		},
	})
	return string(body)
}

func newTestClient(serverURL string) *Client {
	return NewClient("test-key", serverURL, "grok-4-fast", 5*time.Second, nil)
}

func TestCompleteSuccess(t *testing.T) {
	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(completionBody("true")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	content, err := client.Complete(context.Background(), "probe prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if content != "true" {
		t.Errorf("Expected content 'true', got %q", content)
	}

	if captured.Model != "grok-4-fast" {
		t.Errorf("Expected model grok-4-fast, got %s", captured.Model)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Content != "probe prompt" {
		t.Errorf("Unexpected messages: %+v", captured.Messages)
	}
	if captured.SearchParameters == nil || captured.SearchParameters.Mode != "on" {
		t.Error("Expected live search to be enabled")
	}
	if len(captured.SearchParameters.Sources) != 1 || captured.SearchParameters.Sources[0].Type != "x" {
		t.Errorf("Expected X as the only search source, got %+v", captured.SearchParameters.Sources)
	}
}

func TestCompleteStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected errs.ErrorType
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error": {"message": "rate limit exceeded"}}`, errs.ErrorTypeRateLimit},
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "invalid api key"}}`, errs.ErrorTypeAuth},
		{"forbidden", http.StatusForbidden, `{"error": {"message": "forbidden"}}`, errs.ErrorTypeAuth},
		{"server error", http.StatusInternalServerError, "internal error", errs.ErrorTypeServerError},
		{"bad gateway", http.StatusBadGateway, "bad gateway", errs.ErrorTypeServerError},
		{"quota message on 400", http.StatusBadRequest, `{"error": {"message": "RESOURCE_EXHAUSTED: credits"}}`, errs.ErrorTypeRateLimit},
		{"other client error", http.StatusBadRequest, `{"error": {"message": "bad request"}}`, errs.ErrorTypeUnknown},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.Complete(context.Background(), "prompt")
			if err == nil {
				t.Fatal("Expected error")
			}

			var typed *errs.Error
			if !errors.As(err, &typed) {
				t.Fatalf("Expected typed error, got %v", err)
			}
			if typed.Type != test.expected {
				t.Errorf("Expected error type %s, got %s", test.expected, typed.Type)
			}
			if typed.Code != test.status {
				t.Errorf("Expected code %d, got %d", test.status, typed.Code)
			}
		})
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected parsing error")
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeParsing {
		t.Errorf("Expected parsing error, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error for response without choices")
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeParsing {
		t.Errorf("Expected parsing error, got %v", err)
	}
}

func TestCompleteNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Close immediately to force a connection error

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected network error")
	}

	var typed *errs.Error
	if !errors.As(err, &typed) || typed.Type != errs.ErrorTypeNetwork {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestCompleteCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL)
	_, err := client.Complete(ctx, "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestIsRateLimitMessage(t *testing.T) {
	tests := []struct {
		msg      string
		expected bool
	}{
		{"Rate limit exceeded", true},
		{"Too Many Requests", true},
		{"RESOURCE_EXHAUSTED", true},
		{"invalid api key", false},
		{"", false},
	}

	for _, test := range tests {
		if got := isRateLimitMessage(test.msg); got != test.expected {
			t.Errorf("isRateLimitMessage(%q) = %v, want %v", test.msg, got, test.expected)
		}
	}
}
