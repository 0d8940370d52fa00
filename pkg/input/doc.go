// Package input loads wallet addresses from the supported input sources:
// an explicit address list, free-form pasted text, or a remotely hosted
// file. Content is format-detected (JSON, CSV, plain text), normalized,
// shape-checked, and deduplicated preserving first-seen order. The
// resulting ordered list is fingerprinted for checkpoint validation.
package input
