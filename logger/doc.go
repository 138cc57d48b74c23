// Package logger wraps zerolog with a small structured-logging surface for
// the hookhttp client. The client defaults to Nop(); callers opt in with
// hookhttp.WithLogger.
package logger
