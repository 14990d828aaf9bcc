// Package resilience retries transient failures with capped exponential
// backoff.
//
//	db, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    RetryIf:     database.IsConnectionError,
//	}, open)
//
// Context cancellation stops the loop between attempts and during backoff.
package resilience
