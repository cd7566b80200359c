// Package logging provides structured logging for pgen.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used by the session, discovery, connector and bridge
// packages.
//
// # Silent By Default
//
// The CLI prints its own user-facing output, so zap is a no-op unless a level
// is requested, either with --log-level or the PGEN_LOG_LEVEL environment
// variable:
//
//	PGEN_LOG_LEVEL=debug pgen-cfg info --device 10.10.10.1
//
// Log lines go to stderr so they never mix with command output.
//
// # Log Levels
//
//   - Debug: wire traffic (commands, replies, datagrams, hex dumps)
//   - Info: connection lifecycle, discovery results
//   - Warn: liveness failures, decode fallbacks
//   - Error: bridge and startup failures
//
// # Specialized Logging
//
//	logging.LogConnection("10.10.10.1:85", "connected")
//	logging.LogCommand("10.10.10.1:85", "sent", "CMD:GET_HOSTNAME")
//	logging.LogDatagram("10.10.10.1:1977", "received", payload)
//	logging.LogRawBytes("Reply buffer", buf)
//
// # Thread Safety
//
// Logging functions are safe for concurrent use. Initialize and SetLogger
// must be called before goroutines start logging.
package logging
