// Package component defines lifecycle-managed parts of the ingest daemon
// (worker pool, HTTP server) and a registry that starts them in order and
// stops them in reverse.
package component
