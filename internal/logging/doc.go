// Package logging provides concrete implementations of the simplepg.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: prefixed plain-text lines on stderr (or any io.Writer)
//   - ZapLogger: structured output through a *zap.Logger
//   - NullLogger: discards all messages
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
