// Package ratelimit provides rate limiting primitives for the lookup
// pipeline: a token bucket for worker dispatch pacing and a sliding
// window that enforces the per-minute request budget against the
// external search API.
package ratelimit
