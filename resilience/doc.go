// Package resilience provides explicit opt-in retry with exponential
// backoff. The hookhttp client applies it only when a RetryConfig is
// configured; nothing is ever retried automatically.
package resilience
