// Package logger provides structured logging for the ingest engine using
// zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("executor")
//	log.WithPipeline("p1").Info("batch completed", logger.Fields(logger.FieldItems, 3))
package logger
