// Package errors provides the typed error model used by the ingest engine.
// System-level failures (missing pipelines, rejected executions, invalid
// definitions) are reported as *AppError values carrying a machine-readable
// code, a retryable flag and the HTTP status the server surface should use.
//
// Processor failures are never converted: they travel unchanged from the
// failing step to the item failure handler.
package errors
