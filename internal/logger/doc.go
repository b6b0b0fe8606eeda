// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Packaging steps accept a context and extract the logger from it, so every
// line of one run carries the run name and package format.
package logger
