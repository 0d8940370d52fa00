// Package logger provides structured logging for the wallet search tool.
//
// It wraps zerolog behind a small interface with support for multiple log
// levels, structured fields, pretty console output, optional file output,
// and a global instance for convenience.
//
// Basic usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	if err := logger.Initialize(cfg); err != nil { ... }
//
//	logger.Info("run started")
//	logger.WithField("wallet", addr).Info("lookup queued")
//	logger.WithError(err).Error("checkpoint save failed")
package logger
