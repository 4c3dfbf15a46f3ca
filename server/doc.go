// Package server hosts the ingest HTTP API on Gin behind an h2c handler.
//
// The middleware stack (server/middleware) wraps the root handler so every
// route gets panic recovery, request ids, CORS, body size limits and request
// logging. Route handlers live in server/endpoint.
package server
