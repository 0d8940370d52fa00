// Package sink persists finalized wallet records to an appendable
// line-delimited JSON dataset, with CSV export support.
package sink
