// Package resilience retries operations that fail for transient reasons.
//
// The ingest node uses it when reloading pipeline definitions: an editor
// that saves by rename leaves the file briefly missing, so reads are retried
// while build errors fail at once.
//
//	err := resilience.Retry(ctx, resilience.Config{
//	    MaxAttempts: 5,
//	    RetryIf:     resilience.IsPathError,
//	}, func(ctx context.Context) error {
//	    return load(path)
//	})
package resilience
