// Package retry implements bounded retry with pluggable backoff policies.
//
// A BackoffStrategy maps an attempt number to a delay; the Do/DoWithResult
// helpers drive the retry loop with context-aware waits. Rate-limit
// failures from the lookup service use the longer RateLimitBackoff curve,
// everything else the default exponential curve with jitter.
package retry
