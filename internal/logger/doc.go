// Package logger provides a shared zap-based console logger with helpers
// for carrying a named logger through a context.Context.
package logger
