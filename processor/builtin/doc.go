// Package builtin provides the reference leaf processors a pipeline
// definition can name: set, remove, rename, lowercase, uppercase, fail and
// script. Every processor accepts an optional "if" expression; when it
// evaluates to false the processor leaves the document untouched.
//
// Expressions use github.com/expr-lang/expr and see the document's top-level
// fields plus the read-only _ingest map.
package builtin
