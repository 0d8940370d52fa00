// Package searcher orchestrates batch wallet lookups: input loading and
// fingerprinting, checkpoint resume, bounded-concurrency dispatch,
// periodic progress persistence, and result sinking.
package searcher
